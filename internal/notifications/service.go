package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelcast/internal/config"
	"reelcast/internal/store"
)

const userAgent = "Reelcast/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyRunStarted(ctx context.Context, runID string, count int) error
	NotifyRunCompleted(ctx context.Context, run *store.PipelineRun) error
	NotifyRunFailed(ctx context.Context, runID, reason string) error
	NotifyVideoPublished(ctx context.Context, title, platformURL string) error
	NotifyRunsReaped(ctx context.Context, count int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, runID string, count int) error {
	data := payload{
		title:   "Reelcast - Run Started",
		message: fmt.Sprintf("Started pipeline run %s targeting %d short(s)", runID, count),
		tags:    []string{"reelcast", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, run *store.PipelineRun) error {
	if run == nil {
		return nil
	}

	var title string
	var message string
	if len(run.Errors) == 0 {
		title = "Reelcast - Run Complete"
		message = fmt.Sprintf("Run %s complete: %d ideas, %d scripts, %d videos, %d uploaded",
			run.ID, run.IdeasGenerated, run.ScriptsGenerated, run.VideosCreated, run.VideosPublished)
	} else {
		title = "Reelcast - Run Complete (with errors)"
		message = fmt.Sprintf("Run %s complete with %d error(s): %d videos created, %d uploaded",
			run.ID, len(run.Errors), run.VideosCreated, run.VideosPublished)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"reelcast", "run", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, runID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Reelcast - Run Failed",
		message:  fmt.Sprintf("Run %s failed: %s", runID, reason),
		tags:     []string{"reelcast", "run", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyVideoPublished(ctx context.Context, title, platformURL string) error {
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("Published: %s", title)
	if platformURL = strings.TrimSpace(platformURL); platformURL != "" {
		message = fmt.Sprintf("%s\n%s", message, platformURL)
	}
	data := payload{
		title:   "Reelcast - Video Published",
		message: message,
		tags:    []string{"reelcast", "publish", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunsReaped(ctx context.Context, count int) error {
	data := payload{
		title:    "Reelcast - Stuck Runs Reaped",
		message:  fmt.Sprintf("Marked %d stuck run(s) as failed", count),
		tags:     []string{"reelcast", "reaper", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Reelcast - Test",
		message:  "Notification system test",
		tags:     []string{"reelcast", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string, int) error             { return nil }
func (noopService) NotifyRunCompleted(context.Context, *store.PipelineRun) error    { return nil }
func (noopService) NotifyRunFailed(context.Context, string, string) error           { return nil }
func (noopService) NotifyVideoPublished(context.Context, string, string) error      { return nil }
func (noopService) NotifyRunsReaped(context.Context, int) error                     { return nil }
func (noopService) TestNotification(context.Context) error                          { return nil }
