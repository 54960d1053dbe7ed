package translate

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bilingual/internal/logging"
	"bilingual/internal/services"
)

type stubBackend struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
	fn       func(ctx context.Context, text string) (string, error)
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Translate(ctx context.Context, text string) (string, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if s.fn != nil {
		return s.fn(ctx, text)
	}
	return "T(" + text + ")", nil
}

func TestTranslateAllPreservesIndexOrder(t *testing.T) {
	backend := &stubBackend{fn: func(_ context.Context, text string) (string, error) {
		// Later items finish first.
		time.Sleep(time.Duration(10-len(text)) * time.Millisecond)
		return strings.ToUpper(text), nil
	}}
	pool := NewPool(backend, PoolOptions{Concurrency: 4}, logging.NewNop())
	texts := []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff"}
	out, failures := pool.TranslateAll(context.Background(), texts)
	if len(failures) != 0 {
		t.Fatalf("unexpected failures %v", failures)
	}
	for i, text := range texts {
		if out[i] != strings.ToUpper(text) {
			t.Fatalf("out[%d] = %q, want %q", i, out[i], strings.ToUpper(text))
		}
	}
	if peak := backend.peak.Load(); peak > 4 {
		t.Fatalf("concurrency exceeded limit: %d", peak)
	}
}

func TestTranslateAllIsDeterministic(t *testing.T) {
	backend := &stubBackend{}
	pool := NewPool(backend, PoolOptions{Concurrency: 3}, logging.NewNop())
	texts := []string{"一", "二", "", "三"}
	first, _ := pool.TranslateAll(context.Background(), texts)
	second, _ := pool.TranslateAll(context.Background(), texts)
	for i := range texts {
		if first[i] != second[i] {
			t.Fatalf("run mismatch at %d: %q vs %q", i, first[i], second[i])
		}
	}
	if first[2] != "" {
		t.Fatalf("empty text must translate to empty, got %q", first[2])
	}
	if backend.calls.Load() != 6 {
		t.Fatalf("expected one call per non-empty text per run, got %d", backend.calls.Load())
	}
}

func TestTranslateAllRecordsFailures(t *testing.T) {
	backend := &stubBackend{fn: func(_ context.Context, text string) (string, error) {
		if text == "bad" {
			return "", services.Wrap(services.ErrExternalTool, "translate", "stub", "boom", nil)
		}
		return "ok", nil
	}}
	pool := NewPool(backend, PoolOptions{Concurrency: 2}, logging.NewNop())
	out, failures := pool.TranslateAll(context.Background(), []string{"good", "bad", "good"})
	if out[0] != "ok" || out[1] != "" || out[2] != "ok" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(failures) != 1 || failures[0].Index != 1 || !errors.Is(failures[0], services.ErrExternalTool) {
		t.Fatalf("unexpected failures %v", failures)
	}
}

func TestTranslateAllTimeoutIsSegmentFailure(t *testing.T) {
	backend := &stubBackend{fn: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	pool := NewPool(backend, PoolOptions{Concurrency: 1, Timeout: 5 * time.Millisecond}, logging.NewNop())
	_, failures := pool.TranslateAll(context.Background(), []string{"x"})
	if len(failures) != 1 || !errors.Is(failures[0], services.ErrTimeout) {
		t.Fatalf("expected timeout failure, got %v", failures)
	}
}

func TestTranslateAllCancellationKeepsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	backend := &stubBackend{fn: func(_ context.Context, text string) (string, error) {
		if text == "stop" {
			cancel()
		}
		return "T" + text, nil
	}}
	pool := NewPool(backend, PoolOptions{Concurrency: 1}, logging.NewNop())
	out, failures := pool.TranslateAll(ctx, []string{"a", "stop", "b", "c"})
	if out[0] != "Ta" || out[1] != "Tstop" {
		t.Fatalf("expected finished results kept, got %q", out)
	}
	if len(failures) != 2 || failures[0].Index != 2 || failures[1].Index != 3 {
		t.Fatalf("expected unstarted items canceled, got %v", failures)
	}
	for _, failure := range failures {
		if !failure.Canceled() {
			t.Fatalf("expected canceled failure, got %v", failure)
		}
	}
}
