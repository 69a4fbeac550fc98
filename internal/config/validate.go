package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.ShortsPerDay <= 0 {
		return errors.New("pipeline.shorts_per_day must be positive")
	}
	if c.Pipeline.TargetDurationSeconds <= 0 {
		return errors.New("pipeline.target_duration_seconds must be positive")
	}
	if strings.TrimSpace(c.Pipeline.Cron) == "" {
		return errors.New("pipeline.cron must be set")
	}
	if c.Pipeline.StepRetries < 0 {
		return errors.New("pipeline.step_retries must not be negative")
	}
	if c.Pipeline.StepTimeoutSeconds <= 0 {
		return errors.New("pipeline.step_timeout_seconds must be positive")
	}
	if c.Pipeline.StuckThresholdMin <= 0 {
		return errors.New("pipeline.stuck_threshold_minutes must be positive")
	}
	if c.Pipeline.SweepIntervalSeconds <= 0 {
		return errors.New("pipeline.sweep_interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.BufferSize <= 0 {
		return errors.New("events.buffer_size must be positive")
	}
	if c.Events.DeliveryRetries < 0 {
		return errors.New("events.delivery_retries must not be negative")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	switch c.YouTube.PrivacyStatus {
	case "public", "private", "unlisted":
	default:
		return fmt.Errorf("youtube.privacy_status: unsupported value %q", c.YouTube.PrivacyStatus)
	}
	if strings.TrimSpace(c.YouTube.CategoryID) == "" {
		return errors.New("youtube.category_id must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
