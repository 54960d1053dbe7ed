package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestTeeWithoutHandlersDiscards(t *testing.T) {
	if _, ok := tee(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
}

func TestTeeReturnsSingleHandlerUnwrapped(t *testing.T) {
	inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if h := tee(nil, inner); h != inner {
		t.Fatal("expected the only handler to be returned as is")
	}
}

func TestTeeRespectsPerHandlerLevels(t *testing.T) {
	var console, file bytes.Buffer
	h := tee(
		slog.NewJSONHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected tee to be enabled for debug")
	}
	slog.New(h).Debug("chunk cut")
	if console.Len() != 0 {
		t.Fatalf("console should skip debug records, got %q", console.String())
	}
	if file.Len() == 0 {
		t.Fatal("file should receive debug records")
	}
}

func TestTeeWithAttrsReachesEveryHandler(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(tee(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))).With(FieldRunID, "abc")
	logger.Info("stage_start")
	for i, buf := range []*bytes.Buffer{&a, &b} {
		if !bytes.Contains(buf.Bytes(), []byte(`"run_id":"abc"`)) {
			t.Fatalf("handler %d missing run_id: %q", i, buf.String())
		}
	}
}
