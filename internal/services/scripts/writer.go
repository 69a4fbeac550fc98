package scripts

import (
	"context"
	"fmt"
	"strings"

	"reelcast/internal/config"
	"reelcast/internal/services"
	"reelcast/internal/services/llm"
)

const (
	stage = "scripts"

	// Narration pace used when the model omits a duration estimate.
	wordsPerSecond = 2.5
)

// Input is the idea a script should be written for.
type Input struct {
	Title         string
	Hook          string
	MainPoint     string
	CTA           string
	Language      string
	TargetSeconds int
}

// Draft is a generated narration script before persistence.
type Draft struct {
	Title            string  `json:"title"`
	Body             string  `json:"script"`
	EstimatedSeconds float64 `json:"estimated_seconds"`
}

// Writer turns ideas into narration scripts via a chat completions model.
type Writer struct {
	client *llm.Client
}

// NewWriter builds a Writer from the scripts adapter config.
func NewWriter(cfg config.Adapter, opts ...llm.Option) *Writer {
	return &Writer{
		client: llm.NewClient(stage, llm.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			TimeoutSeconds: cfg.TimeoutSeconds,
		}, opts...),
	}
}

// Write produces a narration script for one idea.
func (w *Writer) Write(ctx context.Context, input Input) (Draft, error) {
	var empty Draft
	if strings.TrimSpace(input.Title) == "" {
		return empty, services.Wrap(services.ErrValidation, stage, "write", "idea title required", nil)
	}

	target := input.TargetSeconds
	if target <= 0 {
		target = 45
	}
	language := strings.TrimSpace(input.Language)
	if language == "" {
		language = "en"
	}

	user := fmt.Sprintf(
		`Write a %d-second short-video narration script in language %q for this idea.
Title: %s
Hook: %s
Main point: %s
Call to action: %s
Respond with JSON: {"title":"","script":"","estimated_seconds":0}`,
		target, language, input.Title, input.Hook, input.MainPoint, input.CTA)

	content, err := w.client.CompleteJSON(ctx,
		"You are a short-form video scriptwriter. Respond with JSON only.",
		user)
	if err != nil {
		return empty, err
	}

	var draft Draft
	if err := llm.DecodeJSON(content, &draft); err != nil {
		return empty, services.Wrap(services.ErrTransient, stage, "write", "parse payload", err)
	}

	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" {
		draft.Title = input.Title
	}
	draft.Body = strings.TrimSpace(draft.Body)
	if draft.Body == "" {
		return empty, services.Wrap(services.ErrTransient, stage, "write", "model returned empty script", nil)
	}
	if draft.EstimatedSeconds <= 0 {
		draft.EstimatedSeconds = float64(len(strings.Fields(draft.Body))) / wordsPerSecond
	}
	return draft, nil
}

// HealthCheck verifies the model endpoint is reachable.
func (w *Writer) HealthCheck(ctx context.Context) error {
	return w.client.HealthCheck(ctx)
}
