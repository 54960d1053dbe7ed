package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bilingual/internal/logging"
	"bilingual/internal/services"
)

const defaultConcurrency = 4

// SegmentFailure records a segment whose translation is left empty.
type SegmentFailure struct {
	Index int
	Err   error
}

func (f SegmentFailure) Error() string {
	return fmt.Sprintf("segment %d: %v", f.Index, f.Err)
}

func (f SegmentFailure) Unwrap() error { return f.Err }

// Canceled reports whether the segment was never translated because the
// run was interrupted.
func (f SegmentFailure) Canceled() bool {
	return errors.Is(f.Err, context.Canceled)
}

// PoolOptions bounds the worker pool.
type PoolOptions struct {
	Concurrency int
	Timeout     time.Duration
}

// Pool translates many texts with bounded concurrency.
type Pool struct {
	backend Backend
	opts    PoolOptions
	logger  *slog.Logger
}

// NewPool returns a pool over backend.
func NewPool(backend Backend, opts PoolOptions, logger *slog.Logger) *Pool {
	if opts.Concurrency < 1 {
		opts.Concurrency = defaultConcurrency
	}
	return &Pool{
		backend: backend,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "translator"),
	}
}

// Backend returns the backend the pool sends requests to.
func (p *Pool) Backend() Backend { return p.backend }

// TranslateAll returns one translation per input, index for index. Failed
// or unstarted items are "" in the output and listed in the failures,
// ordered by index.
func (p *Pool) TranslateAll(ctx context.Context, texts []string) ([]string, []SegmentFailure) {
	out := make([]string, len(texts))
	errs := make([]error, len(texts))

	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i := range texts {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(texts); j++ {
				errs[j] = err
			}
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			out[i], errs[i] = p.translateOne(ctx, i, texts[i])
			return nil
		})
	}
	_ = g.Wait()

	var failures []SegmentFailure
	for i, err := range errs {
		if err != nil {
			failures = append(failures, SegmentFailure{Index: i, Err: err})
		}
	}
	p.logger.Info("translation finished",
		logging.String("backend", p.backend.Name()),
		logging.Int("segment_count", len(texts)),
		logging.Int("failed_segments", len(failures)),
	)
	return out, failures
}

func (p *Pool) translateOne(ctx context.Context, index int, text string) (string, error) {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	callCtx := ctx
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}
	translated, err := Translate(callCtx, p.backend, text)
	if err == nil {
		return translated, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = services.Wrap(services.ErrTimeout, "translate", p.backend.Name(), fmt.Sprintf("no answer after %s", p.opts.Timeout), err)
	}
	logging.WarnWithContext(logging.WithContext(ctx, p.logger), "segment translation failed", "segment_failed",
		logging.SegmentIndex(index),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hintFor(err)),
		logging.String(logging.FieldImpact, "segment is written with an empty translation"),
	)
	return "", err
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return "check the translation backend credentials"
	case errors.Is(err, services.ErrTimeout):
		return "raise translation.timeout_seconds or lower translation.concurrency"
	case errors.Is(err, services.ErrTransient):
		return "the backend is rate limiting; lower translation.concurrency"
	default:
		return "inspect the backend response in the error"
	}
}
