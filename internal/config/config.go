package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Pipeline contains knobs for the daily content pipeline.
type Pipeline struct {
	ShortsPerDay          int    `toml:"shorts_per_day"`
	Language              string `toml:"language"`
	TargetDurationSeconds int    `toml:"target_duration_seconds"`
	Cron                  string `toml:"cron"`
	UploadAfter           bool   `toml:"upload_after"`

	StepRetries          int `toml:"step_retries"`
	StepTimeoutSeconds   int `toml:"step_timeout_seconds"`
	RetryBackoffSeconds  int `toml:"retry_backoff_seconds"`
	StuckThresholdMin    int `toml:"stuck_threshold_minutes"`
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`
	SettleWaitSeconds    int `toml:"settle_wait_seconds"`
}

// Adapter holds connection settings shared by the generation service clients.
type Adapter struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TTS contains settings for the speech synthesis service.
type TTS struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	VoiceID        string `toml:"voice_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Render contains settings for the final-render service.
type Render struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TemplateID     string `toml:"template_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// YouTube contains publish settings for the YouTube Data API.
type YouTube struct {
	ClientSecretsFile string `toml:"client_secrets_file"`
	TokenFile         string `toml:"token_file"`
	CategoryID        string `toml:"category_id"`
	PrivacyStatus     string `toml:"privacy_status"`
	DefaultLanguage   string `toml:"default_language"`
	MadeForKids       bool   `toml:"made_for_kids"`
	NotifySubscribers bool   `toml:"notify_subscribers"`
}

// Events contains tuning for the in-process event router.
type Events struct {
	BufferSize        int `toml:"buffer_size"`
	DeliveryRetries   int `toml:"delivery_retries"`
	RedeliveryDelayMS int `toml:"redelivery_delay_ms"`
}

// Notifications contains settings for ntfy push notifications.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelcast.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - Pipeline: schedule, per-day volume, retry and timeout policy
//   - Ideas/Scripts: LLM-backed generation services
//   - TTS: speech synthesis service
//   - VideoGen: background video synthesis service
//   - Render: final render service
//   - YouTube: upload credentials and publish defaults
//   - Events: in-process event router tuning
//   - Notifications: optional ntfy push notifications
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Ideas         Adapter       `toml:"ideas"`
	Scripts       Adapter       `toml:"scripts"`
	TTS           TTS           `toml:"tts"`
	VideoGen      Adapter       `toml:"videogen"`
	Render        Render        `toml:"render"`
	YouTube       YouTube       `toml:"youtube"`
	Events        Events        `toml:"events"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelcast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelcast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to the provided path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "reelcast.db")
}

// StepTimeout returns the per-attempt deadline applied to each step invocation.
func (c *Config) StepTimeout() time.Duration {
	return time.Duration(c.Pipeline.StepTimeoutSeconds) * time.Second
}

// RetryBackoff returns the base delay between step retry attempts.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.Pipeline.RetryBackoffSeconds) * time.Second
}

// StuckThreshold returns the elapsed time after which a running run is reaped.
func (c *Config) StuckThreshold() time.Duration {
	return time.Duration(c.Pipeline.StuckThresholdMin) * time.Minute
}

// SweepInterval returns the cadence of the background reaper loop.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Pipeline.SweepIntervalSeconds) * time.Second
}

// SettleWait returns how long the top-level pipeline waits for dispatched
// downstream work before finishing a run.
func (c *Config) SettleWait() time.Duration {
	return time.Duration(c.Pipeline.SettleWaitSeconds) * time.Second
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.YouTube.ClientSecretsFile, err = expandPath(c.YouTube.ClientSecretsFile); err != nil {
		return err
	}
	if c.YouTube.TokenFile, err = expandPath(c.YouTube.TokenFile); err != nil {
		return err
	}

	applyEnvOverrides(c)

	c.Pipeline.Language = strings.ToLower(strings.TrimSpace(c.Pipeline.Language))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// applyEnvOverrides lets API keys come from the environment so they can stay
// out of the config file.
func applyEnvOverrides(c *Config) {
	overlay := func(target *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*target = v
		}
	}
	overlay(&c.Ideas.APIKey, "REELCAST_IDEAS_API_KEY")
	overlay(&c.Scripts.APIKey, "REELCAST_SCRIPTS_API_KEY")
	overlay(&c.TTS.APIKey, "REELCAST_TTS_API_KEY")
	overlay(&c.VideoGen.APIKey, "REELCAST_VIDEOGEN_API_KEY")
	overlay(&c.Render.APIKey, "REELCAST_RENDER_API_KEY")
	overlay(&c.Paths.APIToken, "REELCAST_API_TOKEN")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
