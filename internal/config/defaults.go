package config

const (
	defaultDataDir              = "~/.local/share/liftlog"
	defaultLogDir               = "~/.local/share/liftlog/logs"
	defaultUploadDir            = "~/.local/share/liftlog/uploads"
	defaultAPIBind              = "127.0.0.1:8460"
	defaultAliasesPath          = "~/.local/share/liftlog/database/alias_index.json"
	defaultExercisesPath        = "~/.local/share/liftlog/database/exercises.json"
	defaultLLMBaseURL           = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel             = "gpt-4o-mini"
	defaultLLMTimeoutSeconds    = 30
	defaultCandidateCount       = 7
	defaultTranscriptionBaseURL = "https://api.openai.com/v1/audio/transcriptions"
	defaultTranscriptionModel   = "whisper-1"
	defaultTranscriptionTimeout = 120
	defaultUploadMaxBytes       = 25 * 1024 * 1024
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

func defaultAllowedExtensions() []string {
	return []string{".mp3", ".wav", ".m4a", ".webm"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			UploadDir: defaultUploadDir,
			APIBind:   defaultAPIBind,
		},
		Catalog: Catalog{
			AliasesPath:   defaultAliasesPath,
			ExercisesPath: defaultExercisesPath,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Resolver: Resolver{
			DefaultCandidateCount: defaultCandidateCount,
		},
		Transcription: Transcription{
			BaseURL:        defaultTranscriptionBaseURL,
			Model:          defaultTranscriptionModel,
			TimeoutSeconds: defaultTranscriptionTimeout,
		},
		Uploads: Uploads{
			MaxBytes:          defaultUploadMaxBytes,
			AllowedExtensions: defaultAllowedExtensions(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
