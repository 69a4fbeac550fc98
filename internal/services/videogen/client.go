package videogen

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
	stage               = "videogen"
	defaultHTTPTimeout  = 60 * time.Second
	defaultPollInterval = 5 * time.Second
)

// Request describes one video synthesis job.
type Request struct {
	Title          string  `json:"title"`
	Script         string  `json:"script"`
	AudioURL       string  `json:"audio_url"`
	TargetDuration float64 `json:"target_duration_seconds"`
}

// Result is the hosted background video produced by the service.
type Result struct {
	VideoURL        string  `json:"video_url"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Client talks to the asynchronous video synthesis service. A job is
// submitted, then polled until the service reports it done.
type Client struct {
	cfg          config.Adapter
	httpClient   *http.Client
	pollInterval time.Duration
	sleep        func(context.Context, time.Duration) error
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

// WithPollInterval overrides the status poll interval (useful for tests).
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// NewClient constructs a video synthesis client.
func NewClient(cfg config.Adapter, opts ...Option) *Client {
	client := &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		pollInterval: defaultPollInterval,
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Generate submits a synthesis job and waits for completion. The deadline on
// ctx bounds the whole submit-and-poll cycle.
func (c *Client) Generate(ctx context.Context, req Request) (Result, error) {
	var empty Result
	if strings.TrimSpace(req.Script) == "" {
		return empty, services.Wrap(services.ErrValidation, stage, "generate", "script required", nil)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return empty, services.Wrap(services.ErrConfiguration, stage, "generate", "api key required", nil)
	}

	jobID, err := c.submit(ctx, req)
	if err != nil {
		return empty, err
	}
	return c.await(ctx, jobID)
}

func (c *Client) submit(ctx context.Context, request Request) (string, error) {
	encoded, err := json.Marshal(request)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, stage, "submit", "encode request", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, stage, "submit", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, stage, "submit", "send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, stage, "submit", "read response", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		marker := services.ClassifyHTTPStatus(resp.StatusCode)
		return "", services.Wrap(marker, stage, "submit", fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrTransient, stage, "submit", "decode response", err)
	}
	if parsed.ID == "" {
		return "", services.Wrap(services.ErrTransient, stage, "submit", "response missing job id", nil)
	}
	return parsed.ID, nil
}

func (c *Client) await(ctx context.Context, jobID string) (Result, error) {
	var empty Result

	for {
		status, result, err := c.poll(ctx, jobID)
		if err != nil {
			return empty, err
		}
		switch status {
		case "done":
			if result.VideoURL == "" {
				return empty, services.Wrap(services.ErrTransient, stage, "await", "job done without video url", nil)
			}
			return result, nil
		case "failed":
			return empty, services.Wrap(services.ErrTransient, stage, "await",
				fmt.Sprintf("job %s failed", jobID), nil)
		}

		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return empty, services.Wrap(services.ErrTimeout, stage, "await",
				fmt.Sprintf("job %s did not finish", jobID), err)
		}
	}
}

func (c *Client) poll(ctx context.Context, jobID string) (string, Result, error) {
	var empty Result

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/generations/" + jobID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", empty, services.Wrap(services.ErrValidation, stage, "poll", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", empty, services.Wrap(services.ErrTransient, stage, "poll", "send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", empty, services.Wrap(services.ErrTransient, stage, "poll", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		marker := services.ClassifyHTTPStatus(resp.StatusCode)
		return "", empty, services.Wrap(marker, stage, "poll", fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	var parsed struct {
		Status string `json:"status"`
		Result
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", empty, services.Wrap(services.ErrTransient, stage, "poll", "decode response", err)
	}
	return parsed.Status, parsed.Result, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
