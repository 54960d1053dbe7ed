package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"bilingual/internal/fileutil"
	"bilingual/internal/history"
	"bilingual/internal/services"
)

// ChunkGap is a stretch of the source timeline with no transcript.
type ChunkGap struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Error string  `json:"error"`
}

// SegmentGap is a transcribed segment written without a translation.
type SegmentGap struct {
	Index    int     `json:"index"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Error    string  `json:"error"`
	Canceled bool    `json:"canceled,omitempty"`
}

// Report summarizes one run. It is written next to the artifact as JSON.
type Report struct {
	RunID              string         `json:"run_id"`
	Source             string         `json:"source"`
	OutputPath         string         `json:"output_path"`
	ReportPath         string         `json:"-"`
	Status             history.Status `json:"status"`
	Service            string         `json:"transcription_service"`
	Backend            string         `json:"translation_backend"`
	SourceLanguage     string         `json:"source_language"`
	TargetLanguage     string         `json:"target_language"`
	DurationSeconds    float64        `json:"duration_seconds"`
	ChunkLengthSeconds float64        `json:"chunk_length_seconds"`
	ChunkCount         int            `json:"chunk_count"`
	SegmentCount       int            `json:"segment_count"`
	DroppedSegments    int            `json:"dropped_segments"`
	FailedChunks       []ChunkGap     `json:"failed_chunks"`
	FailedSegments     []SegmentGap   `json:"failed_segments"`
	ArtifactWritten    bool           `json:"artifact_written"`
	StartedAt          time.Time      `json:"started_at"`
	FinishedAt         time.Time      `json:"finished_at"`
	Error              string         `json:"error,omitempty"`
	FailureKind        string         `json:"failure_kind,omitempty"`
}

// Degraded reports whether the artifact has gaps.
func (r *Report) Degraded() bool {
	return len(r.FailedChunks) > 0 || len(r.FailedSegments) > 0
}

// Elapsed returns the wall time of the run.
func (r *Report) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Report) finish(status history.Status, err error) {
	r.Status = status
	r.FinishedAt = time.Now()
	if err != nil {
		r.Error = err.Error()
		r.FailureKind = services.FailureKind(err)
	}
	if r.FailedChunks == nil {
		r.FailedChunks = []ChunkGap{}
	}
	if r.FailedSegments == nil {
		r.FailedSegments = []SegmentGap{}
	}
}

func (r *Report) write() error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return fileutil.WriteFileAtomic(r.ReportPath, append(data, '\n'), 0o644)
}

func (r *Report) historyRun() history.Run {
	return history.Run{
		ID:              r.RunID,
		Source:          r.Source,
		OutputPath:      r.OutputPath,
		Status:          r.Status,
		Backend:         r.Backend,
		Service:         r.Service,
		DurationSeconds: r.DurationSeconds,
		ChunkCount:      r.ChunkCount,
		SegmentCount:    r.SegmentCount,
		FailedChunks:    len(r.FailedChunks),
		FailedSegments:  len(r.FailedSegments),
		ErrorMessage:    r.Error,
		FailureKind:     r.FailureKind,
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
	}
}
