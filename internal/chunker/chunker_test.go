package chunker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"bilingual/internal/acquire"
	"bilingual/internal/logging"
	"bilingual/internal/services"
)

func TestPlanTilesDuration(t *testing.T) {
	intervals, err := Plan(1500, 600)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	wantOffsets := []float64{0, 600, 1200}
	wantLengths := []float64{600, 600, 300}
	if len(intervals) != 3 {
		t.Fatalf("expected 3 intervals, got %d", len(intervals))
	}
	for i, iv := range intervals {
		if iv.Index != i || iv.Offset != wantOffsets[i] || iv.Length != wantLengths[i] {
			t.Fatalf("interval %d = %#v", i, iv)
		}
		if i > 0 && intervals[i-1].End() != iv.Offset {
			t.Fatalf("gap between intervals %d and %d", i-1, i)
		}
	}
	if intervals[2].End() != 1500 {
		t.Fatalf("tiling must end at duration, got %v", intervals[2].End())
	}
}

func TestPlanCounts(t *testing.T) {
	cases := []struct {
		duration, length float64
		want             int
	}{
		{600, 600, 1},
		{599.5, 600, 1},
		{600.5, 600, 2},
		{1200, 600, 2},
		{1200.0000000001, 600, 2},
		{0.25, 600, 1},
		{3601, 60, 61},
	}
	for _, tc := range cases {
		intervals, err := Plan(tc.duration, tc.length)
		if err != nil {
			t.Fatalf("Plan(%v, %v): %v", tc.duration, tc.length, err)
		}
		if len(intervals) != tc.want {
			t.Errorf("Plan(%v, %v) produced %d intervals, want %d", tc.duration, tc.length, len(intervals), tc.want)
		}
		for i, iv := range intervals {
			if iv.Offset != tc.length*float64(i) {
				t.Errorf("offset %d = %v, want %v", i, iv.Offset, tc.length*float64(i))
			}
		}
	}
}

func TestPlanRejectsBadInput(t *testing.T) {
	if _, err := Plan(100, 0); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for zero chunk length, got %v", err)
	}
	if _, err := Plan(100, -5); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for negative chunk length, got %v", err)
	}
	var chunkErr *ChunkingError
	if _, err := Plan(0, 600); !errors.As(err, &chunkErr) || chunkErr.Index != -1 {
		t.Fatalf("expected planning ChunkingError, got %v", err)
	}
}

func TestSplitSingleChunkLinksSourceIntoChunkDir(t *testing.T) {
	srcDir := t.TempDir()
	source := filepath.Join(srcDir, "talk.m4a")
	if err := os.WriteFile(source, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "chunks")
	c := New("ffmpeg", dir, logging.NewNop())
	c.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("ffmpeg must not run for a single chunk")
		return nil
	})
	res := acquire.AudioResource{Path: source, Duration: 42, Codec: "aac"}
	chunks, err := c.Split(context.Background(), res, 600)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Offset != 0 || chunks[0].Length != 42 {
		t.Fatalf("unexpected chunks %#v", chunks)
	}
	got := chunks[0].Resource
	if got.Path != filepath.Join(dir, "chunk_0000.m4a") || got.Duration != 42 || got.Codec != "aac" {
		t.Fatalf("unexpected chunk resource %#v", got)
	}
	target, err := os.Readlink(got.Path)
	if err != nil || target != source {
		t.Fatalf("chunk should link to %s, got %q (%v)", source, target, err)
	}
	entries, err := os.ReadDir(srcDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("source dir should be untouched, got %d entries (%v)", len(entries), err)
	}
}

func TestSplitCutsEachInterval(t *testing.T) {
	dir := t.TempDir()
	c := New("ffmpeg", dir, logging.NewNop())
	var calls [][]string
	c.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		calls = append(calls, args)
		return os.WriteFile(args[len(args)-1], []byte("mp3"), 0o644)
	})
	chunks, err := c.Split(context.Background(), acquire.AudioResource{Path: "/src/a.mp3", Duration: 1500}, 600)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantSS := []string{"0.000", "600.000", "1200.000"}
	wantT := []string{"600.000", "600.000", "300.000"}
	for i, args := range calls {
		ss := args[slices.Index(args, "-ss")+1]
		tt := args[slices.Index(args, "-t")+1]
		if ss != wantSS[i] || tt != wantT[i] {
			t.Fatalf("call %d: -ss %s -t %s", i, ss, tt)
		}
		if slices.Contains(args, "copy") {
			t.Fatalf("chunks must be re-encoded, got %v", args)
		}
	}
	for i, chunk := range chunks {
		if chunk.Index != i || chunk.Offset != 600*float64(i) {
			t.Fatalf("chunk %d = %#v", i, chunk)
		}
		if chunk.Resource.Path != filepath.Join(dir, "chunk_000"+string(rune('0'+i))+".mp3") {
			t.Fatalf("unexpected chunk path %q", chunk.Resource.Path)
		}
	}
}

func TestSplitFailureRemovesPartialChunks(t *testing.T) {
	dir := t.TempDir()
	c := New("ffmpeg", dir, logging.NewNop())
	call := 0
	c.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		call++
		if call == 2 {
			return errors.New("exit status 1: Invalid data found when processing input")
		}
		return os.WriteFile(args[len(args)-1], []byte("mp3"), 0o644)
	})
	chunks, err := c.Split(context.Background(), acquire.AudioResource{Path: "/src/a.mp3", Duration: 1500}, 600)
	var chunkErr *ChunkingError
	if !errors.As(err, &chunkErr) || chunkErr.Index != 1 {
		t.Fatalf("expected ChunkingError for chunk 1, got %v", err)
	}
	if chunks != nil {
		t.Fatalf("expected no chunks on failure, got %d", len(chunks))
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected partial chunks removed, found %d files", len(entries))
	}
}

func TestSplitHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New("ffmpeg", t.TempDir(), logging.NewNop())
	c.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		cancel()
		return os.WriteFile(args[len(args)-1], []byte("mp3"), 0o644)
	})
	_, err := c.Split(ctx, acquire.AudioResource{Path: "/src/a.mp3", Duration: 1500}, 600)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
