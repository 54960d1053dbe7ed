package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bilingual/internal/config"
	"bilingual/internal/services"
	"bilingual/internal/services/httpretry"
)

// Backend translates a single piece of text between the configured languages.
type Backend interface {
	Name() string
	Translate(ctx context.Context, text string) (string, error)
}

// NewBackend selects the backend named by cfg.Translation.Backend. Options
// are forwarded to the backend's retrying HTTP client.
func NewBackend(cfg *config.Config, opts ...httpretry.Option) (Backend, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "backend", "config is required", nil)
	}
	policy := httpretry.DefaultPolicy()
	if cfg.Translation.RetryAttempts >= 0 {
		policy.Retries = cfg.Translation.RetryAttempts
	}
	opts = append([]httpretry.Option{httpretry.WithPolicy(policy)}, opts...)
	client := httpretry.New(cfg.TranslationTimeout(), opts...)

	source := cfg.Pipeline.SourceLanguage
	target := cfg.Pipeline.TargetLanguage
	switch strings.ToLower(strings.TrimSpace(cfg.Translation.Backend)) {
	case config.BackendPapago:
		return NewPapago(PapagoConfig{
			ClientID:     cfg.Translation.PapagoClientID,
			ClientSecret: cfg.Translation.PapagoClientSecret,
			URL:          cfg.Translation.PapagoURL,
			Source:       source,
			Target:       target,
		}, client)
	case config.BackendGoogle, "":
		return NewGoogle(GoogleConfig{
			URL:    cfg.Translation.GoogleURL,
			Source: source,
			Target: target,
		}, client), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "translate", "backend", fmt.Sprintf("unsupported backend %q", cfg.Translation.Backend), nil)
	}
}

// Translate sends text to the backend exactly once. Blank text is never sent.
func Translate(ctx context.Context, backend Backend, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return backend.Translate(ctx, text)
}

// requestError converts a transport failure into a marked error.
func requestError(ctx context.Context, backend string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	marker := services.ErrExternalTool
	var statusErr *httpretry.StatusError
	switch {
	case httpretry.IsTimeout(err):
		marker = services.ErrTimeout
	case errors.As(err, &statusErr) && (statusErr.StatusCode == 401 || statusErr.StatusCode == 403):
		marker = services.ErrConfiguration
	case errors.As(err, &statusErr) && statusErr.Retryable():
		marker = services.ErrTransient
	}
	return services.Wrap(marker, "translate", backend, "translation request", err)
}

// apiLanguage maps a base language code to the form both APIs expect for
// Chinese; other codes pass through.
func apiLanguage(code string) string {
	switch strings.ToLower(code) {
	case "zh", "zh-hans", "zh-cn":
		return "zh-CN"
	case "zh-hant", "zh-tw":
		return "zh-TW"
	default:
		return code
	}
}
