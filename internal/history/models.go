package history

import "time"

// Status is the terminal state of a pipeline run.
type Status string

const (
	// StatusCompleted means every chunk and segment made it into the artifact.
	StatusCompleted Status = "completed"
	// StatusDegraded means the artifact was written with gaps.
	StatusDegraded Status = "degraded"
	// StatusCanceled means the run was interrupted; a partial artifact may exist.
	StatusCanceled Status = "canceled"
	// StatusFailed means a fatal error stopped the run.
	StatusFailed Status = "failed"
)

// Run is one persisted pipeline run.
type Run struct {
	ID              string    `json:"run_id"`
	Source          string    `json:"source"`
	OutputPath      string    `json:"output_path"`
	Status          Status    `json:"status"`
	Backend         string    `json:"backend"`
	Service         string    `json:"transcription_service"`
	DurationSeconds float64   `json:"duration_seconds"`
	ChunkCount      int       `json:"chunk_count"`
	SegmentCount    int       `json:"segment_count"`
	FailedChunks    int       `json:"failed_chunks"`
	FailedSegments  int       `json:"failed_segments"`
	ErrorMessage    string    `json:"error,omitempty"`
	FailureKind     string    `json:"failure_kind,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Elapsed returns the wall time of the run, or zero when unfinished.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
