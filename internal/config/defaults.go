package config

const (
	defaultVaultDir       = "~/vault"
	defaultInboxSubdir    = "Inbox"
	defaultErrorSubdir    = "Inbox/Errors"
	defaultBypassSubdir   = "Inbox/Bypassed"
	defaultAttachmentsSub = "Attachments"
	defaultLogDir         = "~/.local/share/shelver/logs"

	defaultWorkers           = 2
	defaultQueueSize         = 64
	defaultWatchSettleMs     = 500
	defaultPersistDebounceMs = 1000
	defaultStageTimeout      = 60

	defaultMaxFileSizeMiB = 50

	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-2.5-flash"
	defaultLLMTimeoutSeconds = 30

	defaultTranscriptionBaseURL = "http://127.0.0.1:8080"
	defaultTranscriptionModel   = "whisper-1"
	defaultTranscriptionTimeout = 120

	defaultYouTubeBaseURL = "https://www.youtube.com"
	defaultYouTubeTimeout = 20

	defaultNotifyRequestTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

var defaultAllowedExtensions = []string{
	".md", ".txt", ".csv", ".json",
	".png", ".jpg", ".jpeg", ".gif", ".webp",
	".mp3", ".wav", ".m4a", ".ogg", ".webm",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VaultDir: defaultVaultDir,
			LogDir:   defaultLogDir,
		},
		Workflow: Workflow{
			Workers:           defaultWorkers,
			QueueSize:         defaultQueueSize,
			WatchSettleMs:     defaultWatchSettleMs,
			PersistDebounceMs: defaultPersistDebounceMs,
			StageTimeout:      defaultStageTimeout,
		},
		Validation: Validation{
			MaxFileSizeMiB:    defaultMaxFileSizeMiB,
			AllowedExtensions: append([]string(nil), defaultAllowedExtensions...),
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Transcription: Transcription{
			BaseURL:        defaultTranscriptionBaseURL,
			Model:          defaultTranscriptionModel,
			TimeoutSeconds: defaultTranscriptionTimeout,
		},
		YouTube: YouTube{
			Enabled:        true,
			BaseURL:        defaultYouTubeBaseURL,
			TimeoutSeconds: defaultYouTubeTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Completed:      true,
			Bypassed:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
