package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"reelcast/internal/services"
)

func TestConsoleHandlerWritesAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("stage started", String(FieldStage, "scripting"), Int("count", 3))

	out := buf.String()
	if !strings.Contains(out, "stage started") {
		t.Fatalf("missing message in output: %q", out)
	}
	if !strings.Contains(out, "stage=scripting") {
		t.Fatalf("missing stage attr in output: %q", out)
	}
	if !strings.Contains(out, "count=3") {
		t.Fatalf("missing count attr in output: %q", out)
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("ignored")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "ignored") {
		t.Fatalf("info record should have been suppressed: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithStepID(ctx, "generate-ideas")

	WithContext(ctx, logger).Info("step replayed")

	out := buf.String()
	if !strings.Contains(out, "run_id=run-1") {
		t.Fatalf("missing run_id field: %q", out)
	}
	if !strings.Contains(out, "step_id=generate-ideas") {
		t.Fatalf("missing step_id field: %q", out)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("bogus"); got != slog.LevelInfo {
		t.Fatalf("expected info fallback, got %v", got)
	}
	if got := parseLevel("debug"); got != slog.LevelDebug {
		t.Fatalf("expected debug, got %v", got)
	}
}
