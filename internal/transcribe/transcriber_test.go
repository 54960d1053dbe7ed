package transcribe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bilingual/internal/acquire"
	"bilingual/internal/chunker"
	"bilingual/internal/logging"
	"bilingual/internal/services"
)

type stubService struct {
	mu       sync.Mutex
	calls    []string
	respond  func(ctx context.Context, path string) ([]Segment, error)
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *stubService) Name() string { return "stub" }

func (s *stubService) Transcribe(ctx context.Context, path, _ string) ([]Segment, error) {
	s.mu.Lock()
	s.calls = append(s.calls, path)
	s.mu.Unlock()
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	return s.respond(ctx, path)
}

func makeChunks(n int, length float64) []chunker.Chunk {
	chunks := make([]chunker.Chunk, n)
	for i := range chunks {
		chunks[i] = chunker.Chunk{
			Index:    i,
			Offset:   length * float64(i),
			Length:   length,
			Resource: acquire.AudioResource{Path: fmt.Sprintf("chunk_%d.mp3", i), Duration: length},
		}
	}
	return chunks
}

func TestRebaseShiftsByOffset(t *testing.T) {
	chunk := chunker.Chunk{Index: 1, Offset: 600}
	got := Rebase(chunk, Segment{Start: 5, End: 7, Text: "こんにちは"})
	if got.Start != 605 || got.End != 607 || got.Text != "こんにちは" || got.ChunkIndex != 1 {
		t.Fatalf("unexpected rebase %#v", got)
	}
}

func TestTranscribeConcatenatesInChunkOrder(t *testing.T) {
	svc := &stubService{respond: func(_ context.Context, path string) ([]Segment, error) {
		return []Segment{{Start: 1, End: 2, Text: path + "-a"}, {Start: 5, End: 7, Text: path + "-b"}}, nil
	}}
	tr := New(svc, Options{Concurrency: 3}, logging.NewNop())
	result, err := tr.Transcribe(context.Background(), makeChunks(3, 600), "ja")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(result.Segments) != 6 || result.Completed != 3 {
		t.Fatalf("unexpected result %#v", result)
	}
	for i := 1; i < len(result.Segments); i++ {
		prev, cur := result.Segments[i-1], result.Segments[i]
		if cur.ChunkIndex < prev.ChunkIndex || (cur.ChunkIndex == prev.ChunkIndex && cur.Start < prev.Start) {
			t.Fatalf("segments out of order at %d: %#v then %#v", i, prev, cur)
		}
	}
	if result.Segments[3].Start != 605 || result.Segments[3].End != 607 {
		t.Fatalf("expected chunk 1 second segment at 605-607, got %#v", result.Segments[3])
	}
}

func TestTranscribeSequentialByDefault(t *testing.T) {
	svc := &stubService{respond: func(context.Context, string) ([]Segment, error) {
		time.Sleep(5 * time.Millisecond)
		return []Segment{{Start: 0, End: 1, Text: "x"}}, nil
	}}
	tr := New(svc, Options{}, logging.NewNop())
	if _, err := tr.Transcribe(context.Background(), makeChunks(4, 10), "ja"); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if svc.peak.Load() != 1 {
		t.Fatalf("expected sequential calls, peak concurrency %d", svc.peak.Load())
	}
	for i, call := range svc.calls {
		if call != fmt.Sprintf("chunk_%d.mp3", i) {
			t.Fatalf("call %d was %s", i, call)
		}
	}
}

func TestTranscribeRecordsChunkFailureAndContinues(t *testing.T) {
	svc := &stubService{respond: func(_ context.Context, path string) ([]Segment, error) {
		if path == "chunk_1.mp3" {
			return nil, errors.New("model crashed")
		}
		return []Segment{{Start: 0, End: 1, Text: path}}, nil
	}}
	tr := New(svc, Options{}, logging.NewNop())
	result, err := tr.Transcribe(context.Background(), makeChunks(3, 600), "ja")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(result.Failures) != 1 || result.Failures[0].Index != 1 || result.Failures[0].Offset != 600 {
		t.Fatalf("expected chunk 1 failure, got %#v", result.Failures)
	}
	if len(result.Segments) != 2 || result.Segments[0].ChunkIndex != 0 || result.Segments[1].ChunkIndex != 2 {
		t.Fatalf("expected chunks 0 and 2 in output, got %#v", result.Segments)
	}
}

func TestTranscribeEmptyResultIsFailure(t *testing.T) {
	svc := &stubService{respond: func(context.Context, string) ([]Segment, error) { return nil, nil }}
	result, err := New(svc, Options{}, logging.NewNop()).Transcribe(context.Background(), makeChunks(1, 30), "ja")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(result.Failures) != 1 || !errors.Is(result.Failures[0], services.ErrValidation) {
		t.Fatalf("expected validation failure, got %#v", result.Failures)
	}
}

func TestTranscribeDropsInvalidSegments(t *testing.T) {
	svc := &stubService{respond: func(context.Context, string) ([]Segment, error) {
		return []Segment{
			{Start: 0, End: 1, Text: "ok"},
			{Start: 3, End: 3, Text: "zero"},
			{Start: -1, End: 2, Text: "negative"},
			{Start: 4, End: 5, Text: "ok2"},
		}, nil
	}}
	result, err := New(svc, Options{}, logging.NewNop()).Transcribe(context.Background(), makeChunks(1, 30), "ja")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Dropped != 2 || len(result.Segments) != 2 {
		t.Fatalf("expected 2 kept and 2 dropped, got %#v", result)
	}
	if result.Segments[0].Text != "ok" || result.Segments[1].Text != "ok2" {
		t.Fatalf("kept segments reordered: %#v", result.Segments)
	}
}

func TestTranscribeTimeoutIsChunkFailure(t *testing.T) {
	svc := &stubService{respond: func(ctx context.Context, _ string) ([]Segment, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	tr := New(svc, Options{Timeout: 10 * time.Millisecond}, logging.NewNop())
	result, err := tr.Transcribe(context.Background(), makeChunks(2, 30), "ja")
	if err != nil {
		t.Fatalf("timeout must not be fatal: %v", err)
	}
	if len(result.Failures) != 2 || !errors.Is(result.Failures[0], services.ErrTimeout) {
		t.Fatalf("expected timeout failures, got %#v", result.Failures)
	}
}

func TestTranscribeEscalatesFirstFailure(t *testing.T) {
	svc := &stubService{respond: func(_ context.Context, path string) ([]Segment, error) {
		if path == "chunk_1.mp3" {
			return nil, errors.New("boom")
		}
		return []Segment{{Start: 0, End: 1, Text: "x"}}, nil
	}}
	tr := New(svc, Options{EscalateFailures: true}, logging.NewNop())
	_, err := tr.Transcribe(context.Background(), makeChunks(3, 10), "ja")
	var failure ChunkFailure
	if !errors.As(err, &failure) || failure.Index != 1 {
		t.Fatalf("expected escalated chunk 1 failure, got %v", err)
	}
	if len(svc.calls) != 2 {
		t.Fatalf("expected processing to stop after chunk 1, got %d calls", len(svc.calls))
	}
}

func TestTranscribeCancellationReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := &stubService{respond: func(_ context.Context, path string) ([]Segment, error) {
		if path == "chunk_1.mp3" {
			cancel()
		}
		return []Segment{{Start: 0, End: 1, Text: path}}, nil
	}}
	result, err := New(svc, Options{}, logging.NewNop()).Transcribe(ctx, makeChunks(4, 10), "ja")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Segments) != 2 || result.Segments[0].ChunkIndex != 0 || result.Segments[1].ChunkIndex != 1 {
		t.Fatalf("expected chunks 0 and 1 in partial result, got %#v", result.Segments)
	}
	if result.Completed != 2 || len(result.Failures) != 0 {
		t.Fatalf("a call that returned before noticing cancellation should count, got %#v", result)
	}
	if len(svc.calls) != 2 {
		t.Fatalf("expected no calls after cancellation, got %d", len(svc.calls))
	}
}

func TestTranscribeInterruptedCallIsNotAFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := &stubService{respond: func(ctx context.Context, path string) ([]Segment, error) {
		if path == "chunk_1.mp3" {
			cancel()
			return nil, ctx.Err()
		}
		return []Segment{{Start: 0, End: 1, Text: path}}, nil
	}}
	result, err := New(svc, Options{}, logging.NewNop()).Transcribe(ctx, makeChunks(3, 10), "ja")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Segments) != 1 || result.Segments[0].ChunkIndex != 0 {
		t.Fatalf("expected only chunk 0 in partial result, got %#v", result.Segments)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("cancellation must not be recorded as a chunk failure, got %v", result.Failures)
	}
}
