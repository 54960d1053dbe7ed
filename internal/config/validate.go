package config

import (
	"fmt"
	"math"

	"bilingual/internal/language"
	"bilingual/internal/services"
)

var whisperModels = map[string]struct{}{
	"tiny": {}, "tiny.en": {},
	"base": {}, "base.en": {},
	"small": {}, "small.en": {},
	"medium": {}, "medium.en": {},
	"large": {}, "large-v1": {}, "large-v2": {}, "large-v3": {}, "large-v3-turbo": {},
	"turbo": {},
}

// Validate ensures the configuration is usable. Every failure is marked
// services.ErrConfiguration so callers can classify it before any work starts.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", services.ErrConfiguration, fmt.Sprintf(format, args...))
}

func (c *Config) validatePipeline() error {
	length := c.Pipeline.ChunkLengthSeconds
	if math.IsNaN(length) || math.IsInf(length, 0) || length <= 0 {
		return invalid("pipeline.chunk_length_seconds must be positive, got %v", length)
	}
	if _, err := language.Normalize(c.Pipeline.SourceLanguage); err != nil {
		return invalid("pipeline.source_language: %v", err)
	}
	if _, err := language.Normalize(c.Pipeline.TargetLanguage); err != nil {
		return invalid("pipeline.target_language: %v", err)
	}
	if c.Pipeline.OutputPath == "" {
		return invalid("pipeline.output_path must be set")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Service {
	case ServiceWhisperX:
		if _, ok := whisperModels[c.Transcription.Model]; !ok {
			return invalid("transcription.model %q is not a recognized whisper model", c.Transcription.Model)
		}
		switch c.Transcription.VADMethod {
		case "silero", "pyannote":
		default:
			return invalid("transcription.vad_method must be silero or pyannote")
		}
		if c.Transcription.VADMethod == "pyannote" && c.Transcription.HFToken == "" {
			return invalid("transcription.hf_token is required for pyannote VAD. Set HF_TOKEN env var or edit %s", c.configHint())
		}
	case ServiceOpenAI:
		if c.Transcription.APIKey == "" {
			return invalid("transcription.api_key is required when transcription.service is openai. Set OPENAI_API_KEY env var or edit %s", c.configHint())
		}
	default:
		return invalid("transcription.service must be %s or %s", ServiceWhisperX, ServiceOpenAI)
	}
	return nil
}

func (c *Config) validateTranslation() error {
	switch c.Translation.Backend {
	case BackendGoogle:
	case BackendPapago:
		if c.Translation.PapagoClientID == "" || c.Translation.PapagoClientSecret == "" {
			return invalid("translation.papago_client_id and translation.papago_client_secret are required for the papago backend. Set PAPAGO_CLIENT_ID/PAPAGO_CLIENT_SECRET env vars or edit %s (create with 'bilingual config init')", c.configHint())
		}
	default:
		return invalid("translation.backend must be %s or %s", BackendPapago, BackendGoogle)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid("logging.format must be console or json")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("logging.level must be debug, info, warn, or error")
	}
	return nil
}

func (c *Config) configHint() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return "~/.config/bilingual/config.toml"
	}
	return path
}
