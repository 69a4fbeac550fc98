package services_test

import (
	"context"
	"errors"
	"testing"

	"reelcast/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("connection reset")
	err := services.Wrap(services.ErrTransient, "tts", "synthesize", "request failed", cause)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped, got %v", err)
	}
}

func TestRetryableClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"transient", services.Wrap(services.ErrTransient, "tts", "synthesize", "", nil), true},
		{"timeout", services.Wrap(services.ErrTimeout, "render", "poll", "", nil), true},
		{"validation", services.Wrap(services.ErrValidation, "ideas", "generate", "", nil), false},
		{"configuration", services.Wrap(services.ErrConfiguration, "youtube", "auth", "", nil), false},
		{"not found", services.Wrap(services.ErrNotFound, "videos", "get", "", nil), false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"unclassified", errors.New("mystery"), true},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := services.Retryable(tc.err); got != tc.want {
			t.Fatalf("%s: Retryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassifyHTTPStatus(t *testing.T) {
	cases := []struct {
		status int
		marker error
	}{
		{200, nil},
		{429, services.ErrTransient},
		{500, services.ErrTransient},
		{503, services.ErrTransient},
		{401, services.ErrConfiguration},
		{404, services.ErrNotFound},
		{422, services.ErrValidation},
	}
	for _, tc := range cases {
		got := services.ClassifyHTTPStatus(tc.status)
		if tc.marker == nil {
			if got != nil {
				t.Fatalf("status %d: expected nil marker, got %v", tc.status, got)
			}
			continue
		}
		if !errors.Is(got, tc.marker) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.marker, got)
		}
	}
}
