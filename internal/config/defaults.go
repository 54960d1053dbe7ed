package config

const (
	defaultWorkDir                  = "~/.cache/bilingual/work"
	defaultLogDir                   = "~/.local/share/bilingual/logs"
	defaultStateDir                 = "~/.local/share/bilingual"
	defaultChunkLengthSeconds       = 600
	defaultSourceLanguage           = "ja"
	defaultTargetLanguage           = "ko"
	defaultOutputPath               = "translated.txt"
	defaultStaleScratchHours        = 24
	defaultAcquisitionFormat        = "bestaudio/best"
	defaultAcquisitionTimeout       = 1800
	defaultTranscriptionService     = ServiceWhisperX
	defaultTranscriptionModel       = "small"
	defaultVADMethod                = "silero"
	defaultTranscriptionConcurrency = 1
	defaultTranscriptionTimeout     = 1800
	defaultOpenAIBaseURL            = "https://api.openai.com/v1"
	defaultOpenAIModel              = "whisper-1"
	defaultTranscriptionRetries     = 2
	defaultTranslationBackend       = BackendGoogle
	defaultPapagoURL                = "https://openapi.naver.com/v1/papago/n2mt"
	defaultGoogleURL                = "https://translate.googleapis.com/translate_a/single"
	defaultTranslationConcurrency   = 4
	defaultTranslationTimeout       = 30
	defaultTranslationRetries       = 2
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
)

// Transcription service identifiers.
const (
	ServiceWhisperX = "whisperx"
	ServiceOpenAI   = "openai"
)

// Translation backend identifiers.
const (
	BackendPapago = "papago"
	BackendGoogle = "google"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Pipeline: Pipeline{
			ChunkLengthSeconds: defaultChunkLengthSeconds,
			SourceLanguage:     defaultSourceLanguage,
			TargetLanguage:     defaultTargetLanguage,
			OutputPath:         defaultOutputPath,
			StaleScratchHours:  defaultStaleScratchHours,
		},
		Acquisition: Acquisition{
			Format:         defaultAcquisitionFormat,
			TimeoutSeconds: defaultAcquisitionTimeout,
		},
		Transcription: Transcription{
			Service:        defaultTranscriptionService,
			Model:          defaultTranscriptionModel,
			VADMethod:      defaultVADMethod,
			Concurrency:    defaultTranscriptionConcurrency,
			TimeoutSeconds: defaultTranscriptionTimeout,
			BaseURL:        defaultOpenAIBaseURL,
			APIModel:       defaultOpenAIModel,
			RetryAttempts:  defaultTranscriptionRetries,
		},
		Translation: Translation{
			Backend:        defaultTranslationBackend,
			PapagoURL:      defaultPapagoURL,
			GoogleURL:      defaultGoogleURL,
			Concurrency:    defaultTranslationConcurrency,
			TimeoutSeconds: defaultTranslationTimeout,
			RetryAttempts:  defaultTranslationRetries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
