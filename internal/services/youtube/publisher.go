package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"reelcast/internal/config"
	"reelcast/internal/services"
)

const stage = "youtube"

// Input describes one upload.
type Input struct {
	Title       string
	Description string
	Tags        []string
	VideoURL    string

	// PrivacyStatus overrides the configured default when set.
	PrivacyStatus string
	// PublishAt schedules a public release; the video uploads as private
	// until YouTube flips it at the given time.
	PublishAt *time.Time
}

// Result identifies the published video on the platform.
type Result struct {
	PlatformID  string
	PlatformURL string
}

// Publisher uploads rendered videos through the YouTube Data API v3.
type Publisher struct {
	cfg        config.YouTube
	httpClient *http.Client

	newService func(ctx context.Context, client *http.Client) (*ytapi.Service, error)
}

// Option customizes the publisher.
type Option func(*Publisher)

// WithHTTPClient overrides the client used to download rendered assets.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Publisher) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewPublisher builds a Publisher from the YouTube config section.
func NewPublisher(cfg config.YouTube, opts ...Option) *Publisher {
	publisher := &Publisher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		newService: func(ctx context.Context, client *http.Client) (*ytapi.Service, error) {
			return ytapi.NewService(ctx, option.WithHTTPClient(client))
		},
	}
	for _, opt := range opts {
		opt(publisher)
	}
	return publisher
}

// Publish streams the rendered video from its URL into a YouTube upload.
func (p *Publisher) Publish(ctx context.Context, input Input) (Result, error) {
	var empty Result
	if strings.TrimSpace(input.Title) == "" {
		return empty, services.Wrap(services.ErrValidation, stage, "publish", "title required", nil)
	}
	if strings.TrimSpace(input.VideoURL) == "" {
		return empty, services.Wrap(services.ErrValidation, stage, "publish", "video url required", nil)
	}

	oauthClient, err := p.oauthClient(ctx)
	if err != nil {
		return empty, err
	}
	svc, err := p.newService(ctx, oauthClient)
	if err != nil {
		return empty, services.Wrap(services.ErrConfiguration, stage, "publish", "build service", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.VideoURL, nil)
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, stage, "publish", "build download request", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrTransient, stage, "publish", "download rendered video", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		marker := services.ClassifyHTTPStatus(resp.StatusCode)
		return empty, services.Wrap(marker, stage, "publish",
			fmt.Sprintf("download rendered video: http %d", resp.StatusCode), nil)
	}

	video := &ytapi.Video{
		Snippet: p.buildSnippet(input),
		Status:  p.buildStatus(input),
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(resp.Body)
	call.NotifySubscribers(p.cfg.NotifySubscribers)

	uploaded, err := call.Context(ctx).Do()
	if err != nil {
		return empty, classifyAPIError("publish", err)
	}

	return Result{
		PlatformID:  uploaded.Id,
		PlatformURL: "https://www.youtube.com/shorts/" + uploaded.Id,
	}, nil
}

func (p *Publisher) buildSnippet(input Input) *ytapi.VideoSnippet {
	return &ytapi.VideoSnippet{
		Title:                NormalizeTitle(input.Title, p.cfg.DefaultLanguage),
		Description:          input.Description,
		Tags:                 input.Tags,
		CategoryId:           p.cfg.CategoryID,
		DefaultLanguage:      p.cfg.DefaultLanguage,
		DefaultAudioLanguage: p.cfg.DefaultLanguage,
	}
}

func (p *Publisher) buildStatus(input Input) *ytapi.VideoStatus {
	privacy := strings.TrimSpace(input.PrivacyStatus)
	if privacy == "" {
		privacy = p.cfg.PrivacyStatus
	}

	status := &ytapi.VideoStatus{
		PrivacyStatus:           privacy,
		SelfDeclaredMadeForKids: p.cfg.MadeForKids,
	}
	if input.PublishAt != nil && privacy == "public" {
		// Scheduled videos must upload as private.
		status.PrivacyStatus = "private"
		status.PublishAt = input.PublishAt.UTC().Format(time.RFC3339)
	}
	return status
}

func (p *Publisher) oauthClient(ctx context.Context) (*http.Client, error) {
	secrets, err := os.ReadFile(p.cfg.ClientSecretsFile)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stage, "auth", "read client secrets", err)
	}
	oauthCfg, err := google.ConfigFromJSON(secrets, ytapi.YoutubeUploadScope, ytapi.YoutubeScope)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stage, "auth", "parse client secrets", err)
	}

	tokenData, err := os.ReadFile(p.cfg.TokenFile)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stage, "auth", "read token file", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stage, "auth", "parse token file", err)
	}
	if token.RefreshToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, stage, "auth", "token file missing refresh token", nil)
	}

	return oauth2.NewClient(ctx, oauthCfg.TokenSource(ctx, &token)), nil
}

// NormalizeTitle title-cases video titles that arrive fully lowercased from
// the generation model, leaving mixed-case titles untouched.
func NormalizeTitle(title, lang string) string {
	title = strings.TrimSpace(title)
	if title == "" || title != strings.ToLower(title) {
		return title
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return cases.Title(tag).String(title)
}

func classifyAPIError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		marker := services.ClassifyHTTPStatus(apiErr.Code)
		return services.Wrap(marker, stage, op, fmt.Sprintf("http %d", apiErr.Code), err)
	}
	return services.Wrap(services.ErrTransient, stage, op, "api call", err)
}
