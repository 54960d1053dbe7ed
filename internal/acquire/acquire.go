package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"bilingual/internal/logging"
	"bilingual/internal/services"
)

// CommandRunner executes an external tool. Tests replace it to avoid
// shelling out.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// AudioResource is a decodable audio file with a known duration in seconds.
// It is read-only once created.
type AudioResource struct {
	Path     string
	Duration float64
	Codec    string
}

// AcquisitionError reports that a source locator could not be retrieved.
type AcquisitionError struct {
	Locator string
	Err     error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.Locator, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// Acquirer retrieves a source locator into a local file.
type Acquirer struct {
	binary string
	format string
	run    CommandRunner
	logger *slog.Logger
}

// NewAcquirer builds an Acquirer that shells out to yt-dlp.
func NewAcquirer(binary, format string, logger *slog.Logger) *Acquirer {
	if strings.TrimSpace(binary) == "" {
		binary = "yt-dlp"
	}
	if strings.TrimSpace(format) == "" {
		format = "bestaudio/best"
	}
	return &Acquirer{
		binary: binary,
		format: format,
		run:    runCommand,
		logger: logging.NewComponentLogger(logger, "acquire"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (a *Acquirer) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		a.run = runner
	}
}

// Fetch returns a local path for locator. Existing local files are used in
// place; http(s) URLs are downloaded with yt-dlp into dir as mp3.
func (a *Acquirer) Fetch(ctx context.Context, locator, dir string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", &AcquisitionError{Locator: locator, Err: services.Wrap(services.ErrValidation, "acquire", "fetch", "source locator required", nil)}
	}

	if info, err := os.Stat(locator); err == nil && !info.IsDir() {
		abs, err := filepath.Abs(locator)
		if err != nil {
			return "", &AcquisitionError{Locator: locator, Err: err}
		}
		a.logger.Info("using local source", logging.String("source", abs))
		return abs, nil
	}

	parsed, err := url.Parse(locator)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", &AcquisitionError{Locator: locator, Err: services.Wrap(services.ErrNotFound, "acquire", "fetch", "not a local file or http(s) URL", nil)}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &AcquisitionError{Locator: locator, Err: fmt.Errorf("ensure download dir: %w", err)}
	}
	template := filepath.Join(dir, "source.%(ext)s")
	args := []string{
		"--no-playlist",
		"--no-progress",
		"-f", a.format,
		"-x",
		"--audio-format", "mp3",
		"-o", template,
		locator,
	}
	a.logger.Info("downloading source audio", logging.String("source", locator))
	if err := a.run(ctx, a.binary, args...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &AcquisitionError{Locator: locator, Err: services.Wrap(services.ErrExternalTool, "acquire", "yt-dlp", "download failed", err)}
	}

	path, err := findDownloaded(dir)
	if err != nil {
		return "", &AcquisitionError{Locator: locator, Err: err}
	}
	return path, nil
}

func findDownloaded(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "source.*"))
	if err != nil {
		return "", err
	}
	for _, match := range matches {
		if strings.HasSuffix(match, ".part") || strings.HasSuffix(match, ".ytdl") {
			continue
		}
		if info, err := os.Stat(match); err == nil && info.Size() > 0 {
			return match, nil
		}
	}
	return "", services.Wrap(services.ErrNotFound, "acquire", "yt-dlp", "download produced no audio file", nil)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, lastLines(string(output), 5))
	}
	return nil
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
