package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"bilingual/internal/config"
	"bilingual/internal/services"
	"bilingual/internal/services/httpretry"
	"bilingual/internal/translate"
)

const (
	translationCheckTimeout = 15 * time.Second
	apiCheckTimeout         = 5 * time.Second
	probeText               = "test"
)

// CheckTranslation sends one short request through the configured backend.
// It uses a single attempt so a dead provider fails fast.
func CheckTranslation(ctx context.Context, cfg *config.Config) Result {
	name := "Translation"
	if cfg == nil {
		return Result{Name: name, Detail: "missing config"}
	}
	name = fmt.Sprintf("Translation (%s)", cfg.Translation.Backend)

	backend, err := translate.NewBackend(cfg, httpretry.WithPolicy(httpretry.Policy{}))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, translationCheckTimeout)
	defer cancel()

	if _, err := backend.Translate(checkCtx, probeText); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckTranscriptionAPI verifies the OpenAI-compatible endpoint accepts the key.
func CheckTranscriptionAPI(ctx context.Context, baseURL, apiKey string) Result {
	const name = "Transcription API"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, apiCheckTimeout)
	defer cancel()

	client := &http.Client{Timeout: apiCheckTimeout}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/models", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(apiKey))

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%d)", resp.StatusCode)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeError produces a human-readable summary for backend check failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, services.ErrTimeout) {
		return "check timed out (backend unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (backend unreachable)"
	}
	if errors.Is(err, services.ErrConfiguration) {
		return "credentials rejected: " + err.Error()
	}
	return err.Error()
}
