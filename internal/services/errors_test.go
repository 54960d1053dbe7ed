package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"bilingual/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "chunker", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"chunker", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestFailureKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrConfiguration, "config", "validate", "bad", nil), services.KindConfiguration},
		{fmt.Errorf("call: %w", context.DeadlineExceeded), services.KindTimeout},
		{services.Wrap(services.ErrTimeout, "translate", "papago", "slow", nil), services.KindTimeout},
		{fmt.Errorf("run: %w", context.Canceled), services.KindCanceled},
		{services.Wrap(services.ErrExternalTool, "acquire", "yt-dlp", "failed", nil), services.KindExternal},
		{services.Wrap(services.ErrValidation, "transcript", "pair", "mismatch", nil), services.KindValidation},
		{errors.New("io"), services.KindTransient},
	}
	for _, tc := range cases {
		if got := services.FailureKind(tc.err); got != tc.want {
			t.Fatalf("FailureKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
