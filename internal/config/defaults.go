package config

const (
	defaultDataDir           = "~/.local/share/reelcast"
	defaultLogDir            = "~/.local/share/reelcast/logs"
	defaultAPIBind           = "127.0.0.1:7823"
	defaultShortsPerDay      = 3
	defaultLanguage          = "en"
	defaultTargetDuration    = 45
	defaultCron              = "0 10 * * *"
	defaultStepRetries       = 2
	defaultStepTimeout       = 120
	defaultRetryBackoff      = 2
	defaultStuckThresholdMin = 10
	defaultSweepInterval     = 60
	defaultSettleWait        = 300
	defaultAdapterTimeout    = 60
	defaultTTSTimeout        = 120
	defaultVideoGenTimeout   = 300
	defaultRenderTimeout     = 300
	defaultIdeasBaseURL      = "https://api.openai.com/v1/chat/completions"
	defaultTTSBaseURL        = "https://api.elevenlabs.io/v1"
	defaultVideoGenBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultRenderBaseURL     = "https://api.creatomate.com/v1/renders"
	defaultClientSecrets     = "~/.config/reelcast/client_secrets.json"
	defaultTokenFile         = "~/.config/reelcast/youtube_token.json"
	defaultCategoryID        = "27"
	defaultPrivacyStatus     = "public"
	defaultEventBuffer       = 64
	defaultDeliveryRetries   = 3
	defaultRedeliveryDelayMS = 250
	defaultNtfyTimeout       = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Pipeline: Pipeline{
			ShortsPerDay:          defaultShortsPerDay,
			Language:              defaultLanguage,
			TargetDurationSeconds: defaultTargetDuration,
			Cron:                  defaultCron,
			UploadAfter:           true,
			StepRetries:           defaultStepRetries,
			StepTimeoutSeconds:    defaultStepTimeout,
			RetryBackoffSeconds:   defaultRetryBackoff,
			StuckThresholdMin:     defaultStuckThresholdMin,
			SweepIntervalSeconds:  defaultSweepInterval,
			SettleWaitSeconds:     defaultSettleWait,
		},
		Ideas: Adapter{
			BaseURL:        defaultIdeasBaseURL,
			TimeoutSeconds: defaultAdapterTimeout,
		},
		Scripts: Adapter{
			BaseURL:        defaultIdeasBaseURL,
			TimeoutSeconds: defaultAdapterTimeout,
		},
		TTS: TTS{
			BaseURL:        defaultTTSBaseURL,
			TimeoutSeconds: defaultTTSTimeout,
		},
		VideoGen: Adapter{
			BaseURL:        defaultVideoGenBaseURL,
			TimeoutSeconds: defaultVideoGenTimeout,
		},
		Render: Render{
			BaseURL:        defaultRenderBaseURL,
			TimeoutSeconds: defaultRenderTimeout,
		},
		YouTube: YouTube{
			ClientSecretsFile: defaultClientSecrets,
			TokenFile:         defaultTokenFile,
			CategoryID:        defaultCategoryID,
			PrivacyStatus:     defaultPrivacyStatus,
			DefaultLanguage:   defaultLanguage,
			NotifySubscribers: true,
		},
		Events: Events{
			BufferSize:        defaultEventBuffer,
			DeliveryRetries:   defaultDeliveryRetries,
			RedeliveryDelayMS: defaultRedeliveryDelayMS,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
