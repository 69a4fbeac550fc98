package ideas

import (
	"context"
	"fmt"
	"strings"

	"reelcast/internal/config"
	"reelcast/internal/services"
	"reelcast/internal/services/llm"
)

const stage = "ideas"

// Draft is one generated content idea before persistence.
type Draft struct {
	Category  string `json:"category"`
	Title     string `json:"title"`
	Hook      string `json:"hook"`
	MainPoint string `json:"main_point"`
	CTA       string `json:"cta"`
}

// Request describes one ideation call.
type Request struct {
	Count    int
	Language string
	Topic    string
}

// Generator produces content ideas from a chat completions model.
type Generator struct {
	client *llm.Client
}

// NewGenerator builds a Generator from the ideas adapter config.
func NewGenerator(cfg config.Adapter, opts ...llm.Option) *Generator {
	return &Generator{
		client: llm.NewClient(stage, llm.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			TimeoutSeconds: cfg.TimeoutSeconds,
		}, opts...),
	}
}

// Generate asks the model for req.Count short-video ideas.
func (g *Generator) Generate(ctx context.Context, req Request) ([]Draft, error) {
	if req.Count < 1 {
		return nil, services.Wrap(services.ErrValidation, stage, "generate", "count must be positive", nil)
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = "en"
	}

	user := fmt.Sprintf(
		`Generate %d short-form video ideas in language %q. Respond with JSON: {"ideas":[{"category":"","title":"","hook":"","main_point":"","cta":""}]}`,
		req.Count, language)
	if topic := strings.TrimSpace(req.Topic); topic != "" {
		user += fmt.Sprintf(" All ideas must be about: %s.", topic)
	}

	content, err := g.client.CompleteJSON(ctx,
		"You are a short-form video content strategist. Respond with JSON only.",
		user)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Ideas []Draft `json:"ideas"`
	}
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return nil, services.Wrap(services.ErrTransient, stage, "generate", "parse payload", err)
	}

	drafts := make([]Draft, 0, len(parsed.Ideas))
	for _, draft := range parsed.Ideas {
		draft.Title = strings.TrimSpace(draft.Title)
		if draft.Title == "" {
			continue
		}
		draft.Category = strings.ToLower(strings.TrimSpace(draft.Category))
		drafts = append(drafts, draft)
	}
	if len(drafts) == 0 {
		return nil, services.Wrap(services.ErrTransient, stage, "generate", "model returned no usable ideas", nil)
	}
	if len(drafts) > req.Count {
		drafts = drafts[:req.Count]
	}
	return drafts, nil
}

// HealthCheck verifies the model endpoint is reachable.
func (g *Generator) HealthCheck(ctx context.Context) error {
	return g.client.HealthCheck(ctx)
}
