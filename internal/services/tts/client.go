package tts

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
	stage              = "tts"
	defaultHTTPTimeout = 120 * time.Second
)

// Result is the hosted audio produced for a script.
type Result struct {
	AudioURL        string  `json:"audio_url"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Client talks to the speech synthesis service.
type Client struct {
	cfg        config.TTS
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

// NewClient constructs a speech synthesis client.
func NewClient(cfg config.TTS, opts ...Option) *Client {
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

// Synthesize turns narration text into hosted audio.
func (c *Client) Synthesize(ctx context.Context, text string) (Result, error) {
	var empty Result
	text = strings.TrimSpace(text)
	if text == "" {
		return empty, services.Wrap(services.ErrValidation, stage, "synthesize", "text required", nil)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return empty, services.Wrap(services.ErrConfiguration, stage, "synthesize", "api key required", nil)
	}

	payload := map[string]string{
		"text":     text,
		"voice_id": c.cfg.VoiceID,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, stage, "synthesize", "encode request", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/synthesize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, stage, "synthesize", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrTransient, stage, "synthesize", "send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return empty, services.Wrap(services.ErrTransient, stage, "synthesize", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		marker := services.ClassifyHTTPStatus(resp.StatusCode)
		return empty, services.Wrap(marker, stage, "synthesize",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return empty, services.Wrap(services.ErrTransient, stage, "synthesize", "decode response", err)
	}
	if result.AudioURL == "" {
		return empty, services.Wrap(services.ErrTransient, stage, "synthesize", "response missing audio url", nil)
	}
	return result, nil
}
