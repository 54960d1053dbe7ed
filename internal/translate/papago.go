package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"bilingual/internal/services"
	"bilingual/internal/services/httpretry"
)

const defaultPapagoURL = "https://openapi.naver.com/v1/papago/n2mt"

// PapagoConfig holds the keyed Naver Papago credentials.
type PapagoConfig struct {
	ClientID     string
	ClientSecret string
	URL          string
	Source       string
	Target       string
}

// Papago calls the Naver Papago NMT endpoint.
type Papago struct {
	cfg  PapagoConfig
	http *httpretry.Client
}

// NewPapago validates credentials and returns a Papago backend.
func NewPapago(cfg PapagoConfig, client *httpretry.Client) (*Papago, error) {
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "papago", "client id and secret are required", nil)
	}
	if strings.TrimSpace(cfg.URL) == "" {
		cfg.URL = defaultPapagoURL
	}
	if client == nil {
		client = httpretry.New(0)
	}
	return &Papago{cfg: cfg, http: client}, nil
}

func (p *Papago) Name() string { return "papago" }

type papagoResponse struct {
	Message struct {
		Result struct {
			SourceLanguage string `json:"srcLangType"`
			TargetLanguage string `json:"tarLangType"`
			TranslatedText string `json:"translatedText"`
		} `json:"result"`
	} `json:"message"`
}

// Translate posts the text as a form and returns message.result.translatedText.
func (p *Papago) Translate(ctx context.Context, text string) (string, error) {
	form := url.Values{}
	form.Set("source", apiLanguage(p.cfg.Source))
	form.Set("target", apiLanguage(p.cfg.Target))
	form.Set("text", text)
	encoded := form.Encode()

	payload, err := p.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
		req.Header.Set("X-Naver-Client-Id", p.cfg.ClientID)
		req.Header.Set("X-Naver-Client-Secret", p.cfg.ClientSecret)
		return req, nil
	})
	if err != nil {
		return "", requestError(ctx, p.Name(), err)
	}

	var response papagoResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "translate", p.Name(), "decode response", err)
	}
	translated := response.Message.Result.TranslatedText
	if translated == "" {
		return "", services.Wrap(services.ErrExternalTool, "translate", p.Name(), "response missing message.result.translatedText", nil)
	}
	return translated, nil
}
