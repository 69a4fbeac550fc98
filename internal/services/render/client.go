package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelcast/internal/config"
	"reelcast/internal/services"
)

const (
	stage              = "render"
	defaultHTTPTimeout = 300 * time.Second
)

// Request asks the render service to merge background video and narration
// audio into the final captioned short.
type Request struct {
	Title      string `json:"title"`
	VideoURL   string `json:"video_url"`
	AudioURL   string `json:"audio_url"`
	Script     string `json:"script"`
	TemplateID string `json:"template_id,omitempty"`
}

// Result is the final rendered asset.
type Result struct {
	VideoURL        string  `json:"video_url"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Client talks to the final-render service.
type Client struct {
	cfg        config.Render
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a render client.
func NewClient(cfg config.Render, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Render produces the final video from background footage and narration.
func (c *Client) Render(ctx context.Context, request Request) (Result, error) {
	var empty Result
	if strings.TrimSpace(request.VideoURL) == "" {
		return empty, services.Wrap(services.ErrValidation, stage, "render", "video url required", nil)
	}
	if strings.TrimSpace(request.AudioURL) == "" {
		return empty, services.Wrap(services.ErrValidation, stage, "render", "audio url required", nil)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return empty, services.Wrap(services.ErrConfiguration, stage, "render", "api key required", nil)
	}
	if request.TemplateID == "" {
		request.TemplateID = c.cfg.TemplateID
	}

	encoded, err := json.Marshal(request)
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, stage, "render", "encode request", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/renders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, stage, "render", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrTransient, stage, "render", "send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return empty, services.Wrap(services.ErrTransient, stage, "render", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		marker := services.ClassifyHTTPStatus(resp.StatusCode)
		return empty, services.Wrap(marker, stage, "render", fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return empty, services.Wrap(services.ErrTransient, stage, "render", "decode response", err)
	}
	if result.VideoURL == "" {
		return empty, services.Wrap(services.ErrTransient, stage, "render", "response missing video url", nil)
	}
	return result, nil
}
