package testsupport

import (
	"path/filepath"
	"testing"

	"reelcast/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Ideas.APIKey = "test"
	cfg.Scripts.APIKey = "test"
	cfg.TTS.APIKey = "test"
	cfg.VideoGen.APIKey = "test"
	cfg.Render.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithShortsPerDay overrides the per-day volume on the test config.
func WithShortsPerDay(count int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.ShortsPerDay = count
	}
}

// WithAPIToken sets the operator API token on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.APIToken = token
	}
}
