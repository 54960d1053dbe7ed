package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"bilingual/internal/logging"
	"bilingual/internal/media/ffprobe"
	"bilingual/internal/services"
)

// DecodeError reports that a source could not be probed or transcoded into
// decodable audio. Like a chunking failure it stops the run.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ProbeFunc inspects a media file.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Normalizer turns a downloaded source into an AudioResource the chunker
// can cut with sample accuracy.
type Normalizer struct {
	ffmpeg string
	probe  ProbeFunc
	run    CommandRunner
	logger *slog.Logger
}

// NewNormalizer builds a Normalizer that uses ffprobe and ffmpeg.
func NewNormalizer(ffmpegBinary, ffprobeBinary string, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		ffmpeg: ffmpegBinary,
		probe: func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, ffprobeBinary, path)
		},
		run:    runCommand,
		logger: logging.NewComponentLogger(logger, "normalize"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (n *Normalizer) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		n.run = runner
	}
}

// WithProbe sets a custom probe (for testing).
func (n *Normalizer) WithProbe(probe ProbeFunc) {
	if probe != nil {
		n.probe = probe
	}
}

// Normalize probes path and, when the audio is Opus/Vorbis or the container
// is WebM, transcodes it to MP3 in dir. The returned resource carries the
// measured duration.
func (n *Normalizer) Normalize(ctx context.Context, path, dir string) (AudioResource, error) {
	result, err := n.probe(ctx, path)
	if err != nil {
		return AudioResource{}, n.fail(ctx, path, services.Wrap(services.ErrExternalTool, "normalize", "ffprobe", "probe source", err))
	}
	codec := result.AudioCodec()
	if codec == "" {
		return AudioResource{}, &DecodeError{Path: path, Err: services.Wrap(services.ErrValidation, "normalize", "ffprobe", "no audio stream", nil)}
	}
	n.logger.Debug("probed source",
		logging.String("codec", codec),
		logging.String("container", result.Format.FormatName),
		logging.Int("audio_streams", result.AudioStreamCount()),
		logging.String("size", humanize.Bytes(uint64(result.SizeBytes()))),
	)

	if needsTranscode(codec, result.Format.FormatName) {
		target := filepath.Join(dir, "normalized.mp3")
		n.logger.Info("transcoding source to mp3",
			logging.String("codec", codec),
			logging.String("container", result.Format.FormatName),
		)
		args := []string{
			"-y", "-hide_banner", "-loglevel", "error",
			"-i", path,
			"-vn",
			"-c:a", "libmp3lame",
			"-ar", "44100",
			"-ac", "2",
			"-b:a", "192k",
			target,
		}
		if err := n.run(ctx, n.ffmpeg, args...); err != nil {
			return AudioResource{}, n.fail(ctx, path, services.Wrap(services.ErrExternalTool, "normalize", "ffmpeg", "transcode to mp3", err))
		}
		path = target
		if result, err = n.probe(ctx, path); err != nil {
			return AudioResource{}, n.fail(ctx, path, services.Wrap(services.ErrExternalTool, "normalize", "ffprobe", "probe transcoded audio", err))
		}
		codec = result.AudioCodec()
	}

	duration := result.DurationSeconds()
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return AudioResource{}, &DecodeError{Path: path, Err: services.Wrap(services.ErrValidation, "normalize", "ffprobe", fmt.Sprintf("unusable duration %v", duration), nil)}
	}
	return AudioResource{Path: path, Duration: duration, Codec: codec}, nil
}

func (n *Normalizer) fail(ctx context.Context, path string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &DecodeError{Path: path, Err: err}
}

func needsTranscode(codec, container string) bool {
	switch strings.ToLower(codec) {
	case "opus", "vorbis":
		return true
	}
	for _, name := range strings.Split(strings.ToLower(container), ",") {
		if strings.TrimSpace(name) == "webm" {
			return true
		}
	}
	return false
}
