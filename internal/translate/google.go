package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"bilingual/internal/services"
	"bilingual/internal/services/httpretry"
)

const defaultGoogleURL = "https://translate.googleapis.com/translate_a/single"

// GoogleConfig configures the keyless gtx endpoint.
type GoogleConfig struct {
	URL    string
	Source string
	Target string
}

// Google calls the public translate_a/single endpoint with client=gtx.
type Google struct {
	cfg  GoogleConfig
	http *httpretry.Client
}

// NewGoogle returns a Google backend.
func NewGoogle(cfg GoogleConfig, client *httpretry.Client) *Google {
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = defaultGoogleURL
	}
	if client == nil {
		client = httpretry.New(0)
	}
	return &Google{cfg: cfg, http: client}
}

func (g *Google) Name() string { return "google" }

// Translate returns the concatenation of every sentence piece in element
// [0] of the response array.
func (g *Google) Translate(ctx context.Context, text string) (string, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", apiLanguage(g.cfg.Source))
	query.Set("tl", apiLanguage(g.cfg.Target))
	query.Set("dt", "t")
	query.Set("q", text)
	endpoint := g.cfg.URL + "?" + query.Encode()

	payload, err := g.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return "", requestError(ctx, g.Name(), err)
	}
	translated, err := parseGoogle(payload)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "translate", g.Name(), "decode response", err)
	}
	return translated, nil
}

func parseGoogle(payload []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return "", err
	}
	if len(top) == 0 {
		return "", fmt.Errorf("empty response array")
	}
	var sentences []json.RawMessage
	if err := json.Unmarshal(top[0], &sentences); err != nil {
		return "", fmt.Errorf("element [0]: %w", err)
	}
	var builder strings.Builder
	for i, raw := range sentences {
		var piece []json.RawMessage
		if err := json.Unmarshal(raw, &piece); err != nil {
			return "", fmt.Errorf("element [0][%d]: %w", i, err)
		}
		if len(piece) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(piece[0], &part); err != nil {
			// Trailing transliteration entries carry null here.
			continue
		}
		builder.WriteString(part)
	}
	if builder.Len() == 0 {
		return "", fmt.Errorf("no translated text in [0]")
	}
	return builder.String(), nil
}
