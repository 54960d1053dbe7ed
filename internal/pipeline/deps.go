package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"bilingual/internal/acquire"
	"bilingual/internal/chunker"
	"bilingual/internal/config"
	"bilingual/internal/history"
	"bilingual/internal/services"
	"bilingual/internal/services/openai"
	"bilingual/internal/services/whisperx"
	"bilingual/internal/transcribe"
	"bilingual/internal/translate"
)

// Fetcher downloads (or locates) the source media.
type Fetcher interface {
	Fetch(ctx context.Context, locator, dir string) (string, error)
}

// Normalizer turns fetched media into a decodable audio resource.
type Normalizer interface {
	Normalize(ctx context.Context, path, dir string) (acquire.AudioResource, error)
}

// Splitter cuts an audio resource into chunks.
type Splitter interface {
	Split(ctx context.Context, resource acquire.AudioResource, chunkLength float64) ([]chunker.Chunk, error)
}

// Transcriber turns chunks into rebased segments.
type Transcriber interface {
	Transcribe(ctx context.Context, chunks []chunker.Chunk, language string) (transcribe.Result, error)
}

// Translator translates segment texts index for index.
type Translator interface {
	TranslateAll(ctx context.Context, texts []string) ([]string, []translate.SegmentFailure)
}

// Recorder persists a run summary.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Deps are the stage implementations a Runner drives.
type Deps struct {
	Fetcher    Fetcher
	Normalizer Normalizer
	// NewSplitter builds a splitter writing chunk files into dir.
	NewSplitter func(dir string) Splitter
	Transcriber Transcriber
	Translator  Translator
	// History is optional.
	History Recorder

	ServiceName string
	BackendName string
}

func (d Deps) validate() error {
	missing := ""
	switch {
	case d.Fetcher == nil:
		missing = "fetcher"
	case d.Normalizer == nil:
		missing = "normalizer"
	case d.NewSplitter == nil:
		missing = "splitter"
	case d.Transcriber == nil:
		missing = "transcriber"
	case d.Translator == nil:
		missing = "translator"
	}
	if missing != "" {
		return services.Wrap(services.ErrConfiguration, "pipeline", "deps", missing+" not configured", nil)
	}
	return nil
}

// NewDefaultDeps wires the production stages from cfg. History is left
// unset; callers attach a store when they have one.
func NewDefaultDeps(cfg *config.Config, logger *slog.Logger) (Deps, error) {
	service, err := NewTranscriptionService(cfg)
	if err != nil {
		return Deps{}, err
	}
	backend, err := translate.NewBackend(cfg)
	if err != nil {
		return Deps{}, err
	}

	ffmpeg := cfg.FFmpegBinary()
	return Deps{
		Fetcher:    acquire.NewAcquirer(cfg.YTDLPBinary(), cfg.Acquisition.Format, logger),
		Normalizer: acquire.NewNormalizer(ffmpeg, cfg.FFprobeBinary(), logger),
		NewSplitter: func(dir string) Splitter {
			return chunker.New(ffmpeg, dir, logger)
		},
		Transcriber: transcribe.New(service, transcribe.Options{
			Timeout:          cfg.TranscriptionTimeout(),
			Concurrency:      cfg.Transcription.Concurrency,
			EscalateFailures: cfg.Pipeline.EscalateChunkFailures,
		}, logger),
		Translator: translate.NewPool(backend, translate.PoolOptions{
			Concurrency: cfg.Translation.Concurrency,
			Timeout:     cfg.TranslationTimeout(),
		}, logger),
		ServiceName: service.Name(),
		BackendName: backend.Name(),
	}, nil
}

// NewTranscriptionService returns the configured transcription service.
func NewTranscriptionService(cfg *config.Config) (transcribe.Service, error) {
	switch cfg.Transcription.Service {
	case config.ServiceWhisperX, "":
		return whisperx.NewService(whisperx.Config{
			Model:       cfg.Transcription.Model,
			CUDAEnabled: cfg.Transcription.CUDAEnabled,
			VADMethod:   cfg.Transcription.VADMethod,
			HFToken:     cfg.Transcription.HFToken,
		}), nil
	case config.ServiceOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:  cfg.Transcription.APIKey,
			BaseURL: cfg.Transcription.BaseURL,
			Model:   cfg.Transcription.APIModel,
			Timeout: cfg.TranscriptionTimeout(),
			Retries: cfg.Transcription.RetryAttempts,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "transcription", fmt.Sprintf("unsupported service %q", cfg.Transcription.Service), nil)
	}
}
