package config

import (
	"fmt"
	"os"
	"strings"

	"bilingual/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.normalizeAcquisition()
	c.normalizeTranscription()
	c.normalizeTranslation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePipeline() {
	// Unknown codes are left as typed so Validate can report them.
	c.Pipeline.SourceLanguage = strings.TrimSpace(c.Pipeline.SourceLanguage)
	if normalized, err := language.Normalize(c.Pipeline.SourceLanguage); err == nil {
		c.Pipeline.SourceLanguage = normalized
	}
	c.Pipeline.TargetLanguage = strings.TrimSpace(c.Pipeline.TargetLanguage)
	if normalized, err := language.Normalize(c.Pipeline.TargetLanguage); err == nil {
		c.Pipeline.TargetLanguage = normalized
	}
	c.Pipeline.OutputPath = strings.TrimSpace(c.Pipeline.OutputPath)
	if c.Pipeline.OutputPath == "" {
		c.Pipeline.OutputPath = defaultOutputPath
	}
	c.Pipeline.SourceLabel = strings.TrimSpace(c.Pipeline.SourceLabel)
	c.Pipeline.TargetLabel = strings.TrimSpace(c.Pipeline.TargetLabel)
	if c.Pipeline.StaleScratchHours <= 0 {
		c.Pipeline.StaleScratchHours = defaultStaleScratchHours
	}
}

func (c *Config) normalizeAcquisition() {
	c.Acquisition.Format = strings.TrimSpace(c.Acquisition.Format)
	if c.Acquisition.Format == "" {
		c.Acquisition.Format = defaultAcquisitionFormat
	}
	if c.Acquisition.TimeoutSeconds <= 0 {
		c.Acquisition.TimeoutSeconds = defaultAcquisitionTimeout
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Service = strings.ToLower(strings.TrimSpace(c.Transcription.Service))
	if c.Transcription.Service == "" {
		c.Transcription.Service = defaultTranscriptionService
	}
	c.Transcription.Model = strings.ToLower(strings.TrimSpace(c.Transcription.Model))
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultTranscriptionModel
	}
	c.Transcription.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod))
	if c.Transcription.VADMethod == "" {
		c.Transcription.VADMethod = defaultVADMethod
	}
	c.Transcription.HFToken = strings.TrimSpace(c.Transcription.HFToken)
	if c.Transcription.HFToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.Transcription.HFToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Transcription.HFToken = strings.TrimSpace(value)
		}
	}
	if c.Transcription.Concurrency <= 0 {
		c.Transcription.Concurrency = defaultTranscriptionConcurrency
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		c.Transcription.TimeoutSeconds = defaultTranscriptionTimeout
	}
	c.Transcription.APIKey = strings.TrimSpace(c.Transcription.APIKey)
	if c.Transcription.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Transcription.APIKey = strings.TrimSpace(value)
		}
	}
	c.Transcription.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcription.BaseURL), "/")
	if c.Transcription.BaseURL == "" {
		c.Transcription.BaseURL = defaultOpenAIBaseURL
	}
	c.Transcription.APIModel = strings.TrimSpace(c.Transcription.APIModel)
	if c.Transcription.APIModel == "" {
		c.Transcription.APIModel = defaultOpenAIModel
	}
	if c.Transcription.RetryAttempts < 0 {
		c.Transcription.RetryAttempts = 0
	}
}

func (c *Config) normalizeTranslation() {
	c.Translation.Backend = strings.ToLower(strings.TrimSpace(c.Translation.Backend))
	if c.Translation.Backend == "" {
		c.Translation.Backend = defaultTranslationBackend
	}
	c.Translation.PapagoClientID = strings.TrimSpace(c.Translation.PapagoClientID)
	if c.Translation.PapagoClientID == "" {
		c.Translation.PapagoClientID = lookupFirstEnv("PAPAGO_CLIENT_ID", "NAVER_CLIENT_ID")
	}
	c.Translation.PapagoClientSecret = strings.TrimSpace(c.Translation.PapagoClientSecret)
	if c.Translation.PapagoClientSecret == "" {
		c.Translation.PapagoClientSecret = lookupFirstEnv("PAPAGO_CLIENT_SECRET", "NAVER_CLIENT_SECRET")
	}
	c.Translation.PapagoURL = strings.TrimSpace(c.Translation.PapagoURL)
	if c.Translation.PapagoURL == "" {
		c.Translation.PapagoURL = defaultPapagoURL
	}
	c.Translation.GoogleURL = strings.TrimSpace(c.Translation.GoogleURL)
	if c.Translation.GoogleURL == "" {
		c.Translation.GoogleURL = defaultGoogleURL
	}
	if c.Translation.Concurrency <= 0 {
		c.Translation.Concurrency = defaultTranslationConcurrency
	}
	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = defaultTranslationTimeout
	}
	if c.Translation.RetryAttempts < 0 {
		c.Translation.RetryAttempts = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func lookupFirstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
