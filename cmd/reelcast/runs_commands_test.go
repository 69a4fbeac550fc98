package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newFakeDaemon(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			if _, err := w.Write([]byte(`{"error":"not found"}`)); err != nil {
				t.Errorf("write response: %v", err)
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunsListRendersTable(t *testing.T) {
	server := newFakeDaemon(t, map[string]string{
		"/api/runs": `{"runs":[{
			"id":"run-1","run_date":"2026-08-29","status":"completed",
			"started_at":"2026-08-29T10:00:00.000Z",
			"topics_generated":3,"scripts_generated":3,"videos_created":2,"videos_uploaded":2,
			"errors":["render failed"]}]}`,
	})

	output, err := runCommand(t, "--api", server.URL, "--token", "x", "runs", "list")
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	for _, want := range []string{"run-1", "2026-08-29", "completed"} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}
}

func TestRunsListEmpty(t *testing.T) {
	server := newFakeDaemon(t, map[string]string{"/api/runs": `{"runs":[]}`})

	output, err := runCommand(t, "--api", server.URL, "--token", "x", "runs", "list")
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	if !strings.Contains(output, "No runs found.") {
		t.Fatalf("unexpected output:\n%s", output)
	}
}

func TestRunsShowSurfacesDaemonError(t *testing.T) {
	server := newFakeDaemon(t, map[string]string{})

	_, err := runCommand(t, "--api", server.URL, "--token", "x", "runs", "show", "missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSweepReportsCount(t *testing.T) {
	server := newFakeDaemon(t, map[string]string{"/api/runs/sweep": `{"reaped":2}`})

	output, err := runCommand(t, "--api", server.URL, "--token", "x", "sweep")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if !strings.Contains(output, "2 stuck run(s)") {
		t.Fatalf("unexpected output:\n%s", output)
	}
}
