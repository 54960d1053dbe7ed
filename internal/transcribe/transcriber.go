package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bilingual/internal/chunker"
	"bilingual/internal/logging"
	"bilingual/internal/services"
)

// Service converts one audio file into chunk-relative segments.
type Service interface {
	Name() string
	Transcribe(ctx context.Context, audioPath, language string) ([]Segment, error)
}

// ChunkFailure records a chunk whose transcription produced nothing usable.
type ChunkFailure struct {
	Index  int
	Offset float64
	Err    error
}

func (f ChunkFailure) Error() string {
	return fmt.Sprintf("chunk %d at %.2fs: %v", f.Index, f.Offset, f.Err)
}

func (f ChunkFailure) Unwrap() error { return f.Err }

// Result is the ordered output of a transcription pass.
type Result struct {
	Segments []AbsoluteSegment
	Failures []ChunkFailure
	// Dropped counts segments discarded for invalid timing.
	Dropped int
	// Completed counts chunks that yielded at least one segment.
	Completed int
}

// Options tunes a Transcriber.
type Options struct {
	Timeout          time.Duration
	Concurrency      int
	EscalateFailures bool
}

// Transcriber runs a Service across chunks and rebases the results.
type Transcriber struct {
	service Service
	opts    Options
	logger  *slog.Logger
}

// New returns a Transcriber. Concurrency below 1 means sequential.
func New(service Service, opts Options, logger *slog.Logger) *Transcriber {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Transcriber{
		service: service,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "transcriber"),
	}
}

type chunkOutcome struct {
	done     bool
	segments []AbsoluteSegment
	failure  *ChunkFailure
	dropped  int
}

// Transcribe processes chunks in index order, one service call per chunk.
// Chunk failures are recorded and skipped unless EscalateFailures is set.
// On cancellation the partial result is returned alongside ctx.Err().
func (t *Transcriber) Transcribe(ctx context.Context, chunks []chunker.Chunk, language string) (Result, error) {
	outcomes := make([]chunkOutcome, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Concurrency)
	for i := range chunks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			outcomes[i] = t.transcribeChunk(gctx, chunks[i], language)
			if t.opts.EscalateFailures && outcomes[i].failure != nil {
				return *outcomes[i].failure
			}
			return nil
		})
	}
	waitErr := g.Wait()

	result := collect(outcomes)
	if waitErr != nil {
		return result, waitErr
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	t.logger.Info("transcription finished",
		logging.String("service", t.service.Name()),
		logging.Int("chunk_count", len(chunks)),
		logging.Int("failed_chunks", len(result.Failures)),
		logging.Int("segment_count", len(result.Segments)),
		logging.Int("dropped_segments", result.Dropped),
	)
	return result, nil
}

func collect(outcomes []chunkOutcome) Result {
	var result Result
	for _, outcome := range outcomes {
		if !outcome.done {
			continue
		}
		result.Dropped += outcome.dropped
		if outcome.failure != nil {
			result.Failures = append(result.Failures, *outcome.failure)
			continue
		}
		result.Completed++
		result.Segments = append(result.Segments, outcome.segments...)
	}
	return result
}

func (t *Transcriber) transcribeChunk(ctx context.Context, chunk chunker.Chunk, language string) chunkOutcome {
	ctx = services.WithStage(services.WithChunkIndex(ctx, chunk.Index), "transcribe")
	logger := logging.WithContext(ctx, t.logger)

	callCtx := ctx
	if t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
		defer cancel()
	}

	started := time.Now()
	raw, err := t.service.Transcribe(callCtx, chunk.Resource.Path, language)
	if err != nil && ctx.Err() != nil {
		// Interrupted by the caller, not a chunk failure. A call that
		// finished before noticing the cancellation still counts.
		return chunkOutcome{}
	}
	if err == nil && len(raw) == 0 {
		err = services.Wrap(services.ErrValidation, "transcribe", t.service.Name(), "service returned no segments", nil)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = services.Wrap(services.ErrTimeout, "transcribe", t.service.Name(), fmt.Sprintf("no result after %s", t.opts.Timeout), err)
		}
		failure := ChunkFailure{Index: chunk.Index, Offset: chunk.Offset, Err: err}
		logging.WarnWithContext(logger, "chunk transcription failed", "chunk_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the transcription service logs or raise transcription.timeout_seconds"),
			logging.Seconds("offset_seconds", chunk.Offset),
		)
		return chunkOutcome{done: true, failure: &failure}
	}

	segments := make([]AbsoluteSegment, 0, len(raw))
	dropped := 0
	for _, seg := range raw {
		if !seg.Valid() {
			dropped++
			continue
		}
		segments = append(segments, Rebase(chunk, seg))
	}
	if dropped > 0 {
		logging.WarnWithContext(logger, "dropped segments with invalid timing", "segments_dropped",
			logging.Int("dropped", dropped),
			logging.Int("kept", len(segments)),
			logging.String(logging.FieldErrorHint, "the service emitted start >= end or negative timestamps"),
			logging.String(logging.FieldImpact, "those utterances are missing from the transcript"),
		)
	}
	if len(segments) == 0 {
		failure := ChunkFailure{
			Index:  chunk.Index,
			Offset: chunk.Offset,
			Err:    services.Wrap(services.ErrValidation, "transcribe", t.service.Name(), "no segment with valid timing", nil),
		}
		return chunkOutcome{done: true, failure: &failure, dropped: dropped}
	}

	logger.Info("chunk transcribed",
		logging.Int("segment_count", len(segments)),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return chunkOutcome{done: true, segments: segments, dropped: dropped}
}
