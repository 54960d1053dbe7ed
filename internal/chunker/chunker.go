package chunker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"bilingual/internal/acquire"
	"bilingual/internal/logging"
	"bilingual/internal/services"
)

// Interval is one planned slice of the source timeline.
type Interval struct {
	Index  int
	Offset float64
	Length float64
}

// End returns the exclusive end of the interval in seconds.
func (i Interval) End() float64 {
	return i.Offset + i.Length
}

// Chunk is a contiguous slice of the source audio. Offset is the chunk's
// start on the source timeline, always chunk_length * Index.
type Chunk struct {
	Index    int
	Offset   float64
	Length   float64
	Resource acquire.AudioResource
}

// ChunkingError reports that the source could not be split. Index is the
// chunk being materialized, or -1 when planning failed.
type ChunkingError struct {
	Index int
	Err   error
}

func (e *ChunkingError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("chunking: %v", e.Err)
	}
	return fmt.Sprintf("chunking: chunk %d: %v", e.Index, e.Err)
}

func (e *ChunkingError) Unwrap() error { return e.Err }

// boundaryEpsilon absorbs float noise in probed durations so an exact
// multiple of the chunk length does not produce an empty trailing chunk.
const boundaryEpsilon = 1e-6

// Plan tiles [0, duration) into ceil(duration/chunkLength) contiguous
// intervals. Every interval has length chunkLength except the last, which
// ends exactly at duration.
func Plan(duration, chunkLength float64) ([]Interval, error) {
	if math.IsNaN(chunkLength) || math.IsInf(chunkLength, 0) || chunkLength <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "chunk", "plan", fmt.Sprintf("chunk length must be positive, got %v", chunkLength), nil)
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return nil, &ChunkingError{Index: -1, Err: services.Wrap(services.ErrValidation, "chunk", "plan", fmt.Sprintf("unusable duration %v", duration), nil)}
	}

	count := int(math.Ceil(duration/chunkLength - boundaryEpsilon))
	if count < 1 {
		count = 1
	}
	intervals := make([]Interval, count)
	for i := range intervals {
		offset := chunkLength * float64(i)
		length := chunkLength
		if i == count-1 {
			length = duration - offset
		}
		intervals[i] = Interval{Index: i, Offset: offset, Length: length}
	}
	return intervals, nil
}

// CommandRunner executes an external tool.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Chunker materializes planned intervals as audio files in a scratch dir.
type Chunker struct {
	ffmpeg string
	dir    string
	run    CommandRunner
	logger *slog.Logger
}

// New returns a Chunker writing chunk files into dir.
func New(ffmpegBinary, dir string, logger *slog.Logger) *Chunker {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Chunker{
		ffmpeg: ffmpegBinary,
		dir:    dir,
		run:    runFFmpeg,
		logger: logging.NewComponentLogger(logger, "chunker"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *Chunker) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		c.run = runner
	}
}

// Split plans the resource and cuts each interval with ffmpeg. A resource
// that fits in one chunk is not re-encoded; its chunk is a symlink inside
// the chunk dir, so files derived from chunk paths stay in scratch. On
// failure all chunk files written so far are removed and no chunks are
// returned.
func (c *Chunker) Split(ctx context.Context, resource acquire.AudioResource, chunkLength float64) ([]Chunk, error) {
	intervals, err := Plan(resource.Duration, chunkLength)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, &ChunkingError{Index: 0, Err: fmt.Errorf("ensure chunk dir: %w", err)}
	}
	if len(intervals) == 1 {
		path, err := c.linkSource(resource.Path)
		if err != nil {
			return nil, &ChunkingError{Index: 0, Err: err}
		}
		single := resource
		single.Path = path
		return []Chunk{{Index: 0, Offset: 0, Length: resource.Duration, Resource: single}}, nil
	}

	chunks := make([]Chunk, 0, len(intervals))
	cleanup := func() {
		for _, chunk := range chunks {
			_ = os.Remove(chunk.Resource.Path)
		}
	}
	for _, interval := range intervals {
		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, err
		}
		path := filepath.Join(c.dir, fmt.Sprintf("chunk_%04d.mp3", interval.Index))
		if err := c.cut(ctx, resource.Path, interval, path); err != nil {
			_ = os.Remove(path)
			cleanup()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, &ChunkingError{Index: interval.Index, Err: services.Wrap(services.ErrExternalTool, "chunk", "ffmpeg", "cut chunk", err)}
		}
		chunks = append(chunks, Chunk{
			Index:    interval.Index,
			Offset:   interval.Offset,
			Length:   interval.Length,
			Resource: acquire.AudioResource{Path: path, Duration: interval.Length, Codec: "mp3"},
		})
		c.logger.Debug("chunk materialized",
			logging.Int(logging.FieldChunkIndex, interval.Index),
			logging.Seconds("offset_seconds", interval.Offset),
			logging.Seconds("length_seconds", interval.Length),
		)
	}
	c.logger.Info("source split into chunks",
		logging.Int("chunk_count", len(chunks)),
		logging.Seconds("duration_seconds", resource.Duration),
		logging.Seconds("chunk_length_seconds", chunkLength),
	)
	return chunks, nil
}

func (c *Chunker) linkSource(source string) (string, error) {
	target, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("resolve source path: %w", err)
	}
	ext := filepath.Ext(source)
	if ext == "" {
		ext = ".mp3"
	}
	link := filepath.Join(c.dir, "chunk_0000"+ext)
	_ = os.Remove(link)
	if err := os.Symlink(target, link); err != nil {
		return "", fmt.Errorf("link source into chunk dir: %w", err)
	}
	return link, nil
}

// cut re-encodes the interval so the chunk starts exactly at its offset;
// stream copy would snap to packet boundaries and shift every timestamp.
func (c *Chunker) cut(ctx context.Context, source string, interval Interval, dest string) error {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(interval.Offset),
		"-t", formatSeconds(interval.Length),
		"-i", source,
		"-vn",
		"-c:a", "libmp3lame",
		"-ar", "44100",
		"-ac", "2",
		"-b:a", "192k",
		dest,
	}
	return c.run(ctx, c.ffmpeg, args...)
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}

func runFFmpeg(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
