package render

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelcast/internal/config"
	"reelcast/internal/services"
)

func TestRenderReturnsFinalVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/renders" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var request Request
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if request.TemplateID != "shorts-v2" {
			t.Errorf("template id = %q", request.TemplateID)
		}
		_ = json.NewEncoder(w).Encode(Result{
			VideoURL:        "https://cdn.example.com/final.mp4",
			DurationSeconds: 51,
		})
	}))
	defer server.Close()

	client := NewClient(config.Render{APIKey: "test", BaseURL: server.URL, TemplateID: "shorts-v2"})
	result, err := client.Render(context.Background(), Request{
		VideoURL: "https://cdn.example.com/bg.mp4",
		AudioURL: "https://cdn.example.com/a.mp3",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.VideoURL != "https://cdn.example.com/final.mp4" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRenderRequiresInputs(t *testing.T) {
	client := NewClient(config.Render{APIKey: "test", BaseURL: "http://localhost:1"})

	_, err := client.Render(context.Background(), Request{AudioURL: "a"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing video url, got %v", err)
	}
	_, err = client.Render(context.Background(), Request{VideoURL: "v"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing audio url, got %v", err)
	}
}

func TestRenderClassifiesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "render farm down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(config.Render{APIKey: "test", BaseURL: server.URL})
	_, err := client.Render(context.Background(), Request{VideoURL: "v", AudioURL: "a"})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
