package scripts

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

func scriptServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": payload}},
			},
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
}

func TestWriteReturnsDraft(t *testing.T) {
	server := scriptServer(t, `{"title":"Two-minute rule","script":"Start small. Do two minutes.","estimated_seconds":40}`)
	defer server.Close()

	writer := NewWriter(config.Adapter{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	draft, err := writer.Write(context.Background(), Input{Title: "Two-minute rule", TargetSeconds: 45})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if draft.Body == "" || draft.EstimatedSeconds != 40 {
		t.Fatalf("unexpected draft: %+v", draft)
	}
}

func TestWriteEstimatesDurationFromWordCount(t *testing.T) {
	server := scriptServer(t, `{"title":"t","script":"one two three four five","estimated_seconds":0}`)
	defer server.Close()

	writer := NewWriter(config.Adapter{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	draft, err := writer.Write(context.Background(), Input{Title: "t"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if draft.EstimatedSeconds != 2 {
		t.Fatalf("expected 2s for 5 words, got %v", draft.EstimatedSeconds)
	}
}

func TestWriteRequiresTitle(t *testing.T) {
	writer := NewWriter(config.Adapter{APIKey: "test", BaseURL: "http://localhost:1", Model: "demo"})
	_, err := writer.Write(context.Background(), Input{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWriteEmptyScriptIsTransient(t *testing.T) {
	server := scriptServer(t, `{"title":"t","script":"  "}`)
	defer server.Close()

	writer := NewWriter(config.Adapter{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	_, err := writer.Write(context.Background(), Input{Title: "t"})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
