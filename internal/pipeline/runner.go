package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"bilingual/internal/acquire"
	"bilingual/internal/chunker"
	"bilingual/internal/config"
	"bilingual/internal/history"
	"bilingual/internal/logging"
	"bilingual/internal/services"
	"bilingual/internal/staging"
	"bilingual/internal/transcribe"
	"bilingual/internal/transcript"
)

const historyWriteTimeout = 5 * time.Second

// Request names the media to process and where the transcript goes.
type Request struct {
	Source string
	// OutputPath overrides pipeline.output_path when set.
	OutputPath string
}

// Runner executes the acquire → chunk → transcribe → translate → write
// pipeline for one source at a time.
type Runner struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger
}

// NewRunner constructs a Runner.
func NewRunner(cfg *config.Config, deps Deps, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run processes req end to end. The returned report is non-nil whenever the
// request passed validation. Chunk and segment failures degrade the run but
// do not make Run return an error; fatal failures and cancellation do.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	req, err := r.validate(req)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	report := &Report{
		RunID:              runID,
		Source:             req.Source,
		OutputPath:         req.OutputPath,
		ReportPath:         req.OutputPath + ".report.json",
		Service:            r.deps.ServiceName,
		Backend:            r.deps.BackendName,
		SourceLanguage:     r.cfg.Pipeline.SourceLanguage,
		TargetLanguage:     r.cfg.Pipeline.TargetLanguage,
		ChunkLengthSeconds: r.cfg.Pipeline.ChunkLengthSeconds,
		StartedAt:          time.Now(),
	}

	lock := flock.New(req.OutputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "lock",
			fmt.Sprintf("another run is writing %s", req.OutputPath), nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("source", req.Source),
		logging.String("output", req.OutputPath),
		logging.String("transcription_service", r.deps.ServiceName),
		logging.String("translation_backend", r.deps.BackendName),
	)

	runErr := r.execute(ctx, logger, req, report)
	r.conclude(ctx, logger, report, runErr)
	return report, runErr
}

func (r *Runner) validate(req Request) (Request, error) {
	if err := r.deps.validate(); err != nil {
		return req, err
	}
	req.Source = strings.TrimSpace(req.Source)
	if req.Source == "" {
		return req, services.Wrap(services.ErrConfiguration, "pipeline", "request", "source locator is required", nil)
	}
	if length := r.cfg.Pipeline.ChunkLengthSeconds; !(length > 0) {
		return req, services.Wrap(services.ErrConfiguration, "pipeline", "request", fmt.Sprintf("chunk length must be positive, got %v", length), nil)
	}
	output := strings.TrimSpace(req.OutputPath)
	if output == "" {
		output = r.cfg.Pipeline.OutputPath
	}
	expanded, err := config.ExpandPath(output)
	if err != nil {
		return req, services.Wrap(services.ErrConfiguration, "pipeline", "request", "resolve output path", err)
	}
	if expanded == "" {
		return req, services.Wrap(services.ErrConfiguration, "pipeline", "request", "output path is required", nil)
	}
	absolute, err := filepath.Abs(expanded)
	if err != nil {
		return req, services.Wrap(services.ErrConfiguration, "pipeline", "request", "resolve output path", err)
	}
	if info, err := os.Stat(filepath.Dir(absolute)); err != nil || !info.IsDir() {
		return req, services.Wrap(services.ErrConfiguration, "pipeline", "request",
			fmt.Sprintf("output directory %s does not exist", filepath.Dir(absolute)), err)
	}
	req.OutputPath = absolute
	return req, nil
}

func (r *Runner) execute(ctx context.Context, logger *slog.Logger, req Request, report *Report) error {
	workDir := r.cfg.Paths.WorkDir
	if cleaned := staging.CleanStale(ctx, workDir, r.cfg.StaleScratchAge(), logger); len(cleaned.Removed) > 0 {
		logger.Info("removed stale scratch arenas", logging.Int("count", len(cleaned.Removed)))
	}
	arena, err := staging.NewArena(workDir, report.RunID)
	if err != nil {
		return err
	}
	defer func() {
		if err := arena.Cleanup(); err != nil {
			logger.Warn("failed to remove scratch arena", logging.String("path", arena.Root()), logging.Error(err))
		}
	}()

	var sourcePath string
	err = r.stage(ctx, "acquire", func(ctx context.Context) error {
		fetchCtx := ctx
		if timeout := r.cfg.AcquisitionTimeout(); timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		var err error
		sourcePath, err = r.deps.Fetcher.Fetch(fetchCtx, req.Source, arena.Root())
		return err
	})
	if err != nil {
		return err
	}

	var resource acquire.AudioResource
	err = r.stage(ctx, "normalize", func(ctx context.Context) error {
		var err error
		resource, err = r.deps.Normalizer.Normalize(ctx, sourcePath, arena.Root())
		return err
	})
	if err != nil {
		return err
	}
	report.DurationSeconds = resource.Duration

	var chunks []chunker.Chunk
	err = r.stage(ctx, "chunk", func(ctx context.Context) error {
		dir, err := arena.Dir("chunks")
		if err != nil {
			return err
		}
		chunks, err = r.deps.NewSplitter(dir).Split(ctx, resource, r.cfg.Pipeline.ChunkLengthSeconds)
		return err
	})
	if err != nil {
		return err
	}
	report.ChunkCount = len(chunks)

	var result transcribe.Result
	transcribeErr := r.stage(ctx, "transcribe", func(ctx context.Context) error {
		var err error
		result, err = r.deps.Transcriber.Transcribe(ctx, chunks, r.cfg.Pipeline.SourceLanguage)
		return err
	})
	report.FailedChunks = chunkGaps(chunks, result.Failures)
	report.DroppedSegments = result.Dropped
	report.SegmentCount = len(result.Segments)
	if transcribeErr != nil {
		if isCancellation(ctx, transcribeErr) {
			report.FailedSegments = untranslatedGaps(result.Segments, ctx.Err())
			return r.writePartial(ctx, logger, report, result.Segments, make([]string, len(result.Segments)))
		}
		return transcribeErr
	}
	if len(result.Segments) == 0 {
		cause := errors.New("no chunks produced segments")
		if len(result.Failures) > 0 {
			cause = result.Failures[0]
		}
		return services.Wrap(services.ErrExternalTool, "transcribe", r.deps.ServiceName, "transcription produced no segments", cause)
	}

	texts := make([]string, len(result.Segments))
	for i, seg := range result.Segments {
		texts[i] = seg.Text
	}
	translated := make([]string, len(texts))
	_ = r.stage(ctx, "translate", func(ctx context.Context) error {
		out, failures := r.deps.Translator.TranslateAll(ctx, texts)
		translated = out
		report.FailedSegments = segmentGaps(result.Segments, failures)
		return nil
	})
	if ctx.Err() != nil {
		return r.writePartial(ctx, logger, report, result.Segments, translated)
	}

	return r.stage(ctx, "write", func(context.Context) error {
		return r.writeArtifact(report, result.Segments, translated)
	})
}

func (r *Runner) writeArtifact(report *Report, segments []transcribe.AbsoluteSegment, translated []string) error {
	paired, err := transcript.Pair(segments, translated)
	if err != nil {
		return err
	}
	if err := transcript.WriteFile(report.OutputPath, paired, r.labels()); err != nil {
		return err
	}
	report.ArtifactWritten = true
	return nil
}

// writePartial saves what exists after an interruption and returns the
// cancellation cause.
func (r *Runner) writePartial(ctx context.Context, logger *slog.Logger, report *Report, segments []transcribe.AbsoluteSegment, translated []string) error {
	cause := ctx.Err()
	if cause == nil {
		cause = context.Canceled
	}
	if len(segments) == 0 {
		return cause
	}
	if err := r.writeArtifact(report, segments, translated); err != nil {
		logger.Error("failed to write partial transcript", logging.Error(err))
		return errors.Join(cause, err)
	}
	logger.Info("partial transcript written",
		logging.String("output", report.OutputPath),
		logging.Int("segment_count", len(segments)),
	)
	return cause
}

func (r *Runner) labels() transcript.Labels {
	labels := transcript.DefaultLabels(r.cfg.Pipeline.SourceLanguage, r.cfg.Pipeline.TargetLanguage)
	if label := strings.TrimSpace(r.cfg.Pipeline.SourceLabel); label != "" {
		labels.Source = label
	}
	if label := strings.TrimSpace(r.cfg.Pipeline.TargetLabel); label != "" {
		labels.Target = label
	}
	return labels
}

// stage runs fn with stage-scoped logging.
func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx = services.WithStage(ctx, name)
	stageLogger := logging.WithContext(ctx, r.logger)
	started := time.Now()
	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		if isCancellation(ctx, err) {
			stageLogger.Info("stage interrupted", logging.String(logging.FieldEventType, "stage_canceled"))
			return err
		}
		stageLogger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("failure_kind", services.FailureKind(err)),
			logging.Alert("stage_failure"),
			logging.Error(err),
		)
		return err
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(started).Round(time.Millisecond)),
	)
	return nil
}

func (r *Runner) conclude(ctx context.Context, logger *slog.Logger, report *Report, runErr error) {
	status := history.StatusCompleted
	switch {
	case runErr != nil && isCancellation(ctx, runErr):
		status = history.StatusCanceled
	case runErr != nil:
		status = history.StatusFailed
	case report.Degraded():
		status = history.StatusDegraded
	}
	report.finish(status, runErr)

	if err := report.write(); err != nil {
		logger.Warn("failed to write run report", logging.String("path", report.ReportPath), logging.Error(err))
	}

	if r.deps.History != nil {
		recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
		defer cancel()
		if err := r.deps.History.Record(recordCtx, report.historyRun()); err != nil {
			logging.WarnWithContext(logger, "failed to record run history", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on paths.state_dir"),
				logging.String(logging.FieldImpact, "run is missing from 'bilingual history'"),
			)
		}
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("status", string(report.Status)),
		logging.Int("chunk_count", report.ChunkCount),
		logging.Int("segment_count", report.SegmentCount),
		logging.Int("failed_chunks", len(report.FailedChunks)),
		logging.Int("failed_segments", len(report.FailedSegments)),
		logging.Duration("elapsed", report.Elapsed().Round(time.Millisecond)),
	}
	switch status {
	case history.StatusFailed:
		logger.Error("run failed", logging.Args(append(attrs, logging.Error(runErr))...)...)
	case history.StatusDegraded, history.StatusCanceled:
		logger.Warn("run finished with gaps", logging.Args(attrs...)...)
	default:
		logger.Info("run completed", logging.Args(attrs...)...)
	}
}

func isCancellation(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || (ctx.Err() != nil && errors.Is(err, ctx.Err()))
}
