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

// Paths contains directory configuration.
type Paths struct {
	WorkDir  string `toml:"work_dir"`
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Pipeline contains the segment-sync pipeline settings.
type Pipeline struct {
	ChunkLengthSeconds    float64 `toml:"chunk_length_seconds"`
	SourceLanguage        string  `toml:"source_language"`
	TargetLanguage        string  `toml:"target_language"`
	OutputPath            string  `toml:"output_path"`
	SourceLabel           string  `toml:"source_label"`
	TargetLabel           string  `toml:"target_label"`
	EscalateChunkFailures bool    `toml:"escalate_chunk_failures"`
	StaleScratchHours     int     `toml:"stale_scratch_hours"`
}

// Acquisition contains settings for fetching remote sources.
type Acquisition struct {
	Format         string `toml:"format"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transcription contains settings for the speech-to-text service.
type Transcription struct {
	Service        string `toml:"service"`
	Model          string `toml:"model"`
	CUDAEnabled    bool   `toml:"cuda_enabled"`
	VADMethod      string `toml:"vad_method"`
	HFToken        string `toml:"hf_token"`
	Concurrency    int    `toml:"concurrency"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// Remote service settings, used when Service is "openai".
	APIKey        string `toml:"api_key"`
	BaseURL       string `toml:"base_url"`
	APIModel      string `toml:"api_model"`
	RetryAttempts int    `toml:"retry_attempts"`
}

// Translation contains settings for the translation backends.
type Translation struct {
	Backend            string `toml:"backend"`
	PapagoClientID     string `toml:"papago_client_id"`
	PapagoClientSecret string `toml:"papago_client_secret"`
	PapagoURL          string `toml:"papago_url"`
	GoogleURL          string `toml:"google_url"`
	Concurrency        int    `toml:"concurrency"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	RetryAttempts      int    `toml:"retry_attempts"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for bilingual.
//
// Configuration sections by subsystem:
//   - Paths: scratch, log, and state directories
//   - Pipeline: chunk length, languages, output artifact
//   - Acquisition: yt-dlp format selection and timeout
//   - Transcription: WhisperX or remote speech-to-text settings
//   - Translation: Papago/Google backend selection and limits
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Acquisition   Acquisition   `toml:"acquisition"`
	Transcription Transcription `toml:"transcription"`
	Translation   Translation   `toml:"translation"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bilingual/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg, resolvedPath, exists, err := LoadUnvalidated(path)
	if err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return cfg, resolvedPath, exists, nil
}

// LoadUnvalidated parses and normalizes a configuration file without running
// Validate, so callers can apply flag overrides before validating.
func LoadUnvalidated(path string) (*Config, string, bool, error) {
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

	defaultPath, err := expandPath("~/.config/bilingual/config.toml")
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("bilingual.toml")
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

// Revalidate normalizes and validates again after fields were changed in
// place, for example by command-line overrides.
func (c *Config) Revalidate() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

// EnsureDirectories creates the scratch, log, and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for chunking and normalization.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// YTDLPBinary returns the yt-dlp executable name used for source acquisition.
func (c *Config) YTDLPBinary() string {
	return "yt-dlp"
}

// TranscriptionTimeout returns the per-chunk transcription call timeout.
func (c *Config) TranscriptionTimeout() time.Duration {
	return time.Duration(c.Transcription.TimeoutSeconds) * time.Second
}

// TranslationTimeout returns the per-segment translation call timeout.
func (c *Config) TranslationTimeout() time.Duration {
	return time.Duration(c.Translation.TimeoutSeconds) * time.Second
}

// AcquisitionTimeout returns the timeout applied to source downloads.
func (c *Config) AcquisitionTimeout() time.Duration {
	return time.Duration(c.Acquisition.TimeoutSeconds) * time.Second
}

// StaleScratchAge returns the age after which abandoned run arenas are removed.
func (c *Config) StaleScratchAge() time.Duration {
	return time.Duration(c.Pipeline.StaleScratchHours) * time.Hour
}

// HistoryPath returns the SQLite database path for run history.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LogFilePath returns the log file the CLI appends to.
func (c *Config) LogFilePath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "bilingual.log")
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

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
