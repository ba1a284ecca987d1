package config

const (
	defaultLogDir     = "~/.local/share/tutorsync/logs"
	defaultJournalDir = "~/.local/share/tutorsync/journal"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultVerifyPollCount      = 10
	defaultVerifyPollIntervalMS = 20

	defaultQueueMaxAttempts          = 3
	defaultQueueRetryBaseDelayMS     = 100
	defaultQueueRetryMaxDelayMS      = 2000
	defaultQueueStabilizationDelayMS = 50

	defaultAgentProvider       = "template"
	defaultAgentBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultAgentModel          = "google/gemini-3-flash-preview"
	defaultAgentReferer        = "https://github.com/tutorsync/tutorsync"
	defaultAgentTitle          = "Tutorsync Agent"
	defaultAgentTimeoutSeconds = 60

	defaultNotifyRequestTimeout = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:     defaultLogDir,
			JournalDir: defaultJournalDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Actuation: Actuation{
			VerifyPollCount:      defaultVerifyPollCount,
			VerifyPollIntervalMS: defaultVerifyPollIntervalMS,
			MediaFallback:        true,
			SyntheticInput:       true,
		},
		Queue: Queue{
			MaxAttempts:          defaultQueueMaxAttempts,
			RetryBaseDelayMS:     defaultQueueRetryBaseDelayMS,
			RetryMaxDelayMS:      defaultQueueRetryMaxDelayMS,
			StabilizationDelayMS: defaultQueueStabilizationDelayMS,
		},
		Agent: Agent{
			Provider:       defaultAgentProvider,
			BaseURL:        defaultAgentBaseURL,
			Model:          defaultAgentModel,
			Referer:        defaultAgentReferer,
			Title:          defaultAgentTitle,
			TimeoutSeconds: defaultAgentTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Sessions:       true,
			DeadLetters:    true,
			Errors:         true,
		},
		Journal: Journal{
			Enabled: true,
		},
	}
}
