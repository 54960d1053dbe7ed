package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bilingual/internal/services"
	"bilingual/internal/services/httpretry"
	"bilingual/internal/transcribe"
)

// Config captures the settings needed to call an OpenAI-compatible
// transcription endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Retries int
}

// Client transcribes audio through /audio/transcriptions.
type Client struct {
	cfg  Config
	http *httpretry.Client
}

// NewClient constructs a transcription client. Options are forwarded to the
// underlying retrying HTTP client.
func NewClient(cfg Config, opts ...httpretry.Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	policy := httpretry.DefaultPolicy()
	if cfg.Retries >= 0 {
		policy.Retries = cfg.Retries
	}
	opts = append([]httpretry.Option{httpretry.WithPolicy(policy)}, opts...)
	return &Client{cfg: cfg, http: httpretry.New(cfg.Timeout, opts...)}
}

// Name identifies the service in logs and reports.
func (c *Client) Name() string {
	return "openai:" + c.cfg.Model
}

type transcriptionResponse struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language,omitempty"`
	Duration float64                `json:"duration,omitempty"`
	Segments []transcriptionSegment `json:"segments,omitempty"`
}

type transcriptionSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcribe uploads audioPath and returns verbose_json segments with
// file-relative timestamps.
func (c *Client) Transcribe(ctx context.Context, audioPath, language string) ([]transcribe.Segment, error) {
	if c.cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "openai", "api key required", nil)
	}
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "openai", "read audio", err)
	}
	if len(audio) == 0 {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "openai", "audio file is empty", nil)
	}

	body, contentType, err := buildForm(c.cfg.Model, language, filepath.Base(audioPath), audio)
	if err != nil {
		return nil, err
	}
	endpoint := c.cfg.BaseURL + "/audio/transcriptions"
	payload, err := c.http.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", contentType)
		return req, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		marker := services.ErrExternalTool
		if httpretry.IsTimeout(err) {
			marker = services.ErrTimeout
		}
		return nil, services.Wrap(marker, "transcribe", "openai", "transcription request", err)
	}

	var response transcriptionResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "openai", "decode response", err)
	}
	segments := make([]transcribe.Segment, 0, len(response.Segments))
	for _, seg := range response.Segments {
		segments = append(segments, transcribe.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return segments, nil
}

func buildForm(model, language, filename string, audio []byte) ([]byte, string, error) {
	if filename == "" {
		return nil, "", errors.New("openai: transcription filename is required")
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"model", model},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "segment"},
	}
	if lang := strings.TrimSpace(language); lang != "" {
		fields = append(fields, [2]string{"language", lang})
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("openai: write %s field: %w", field[0], err)
		}
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("openai: create file form field: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return nil, "", fmt.Errorf("openai: write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("openai: close multipart writer: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
