package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bilingual/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\necho present 1.2.3\necho extra\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present, VersionArgs: []string{"--version"}},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Version != "present 1.2.3" {
		t.Fatalf("unexpected version line: %q", results[0].Version)
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func TestMissingRequiredSkipsOptional(t *testing.T) {
	statuses := []Status{
		{Name: "yt-dlp", Optional: true},
		{Name: "FFmpeg"},
		{Name: "FFprobe", Available: true},
	}
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0].Name != "FFmpeg" {
		t.Fatalf("unexpected missing set: %#v", missing)
	}
}

func TestRequirementsFollowTranscriptionService(t *testing.T) {
	cfg := config.Default()
	if !hasRequirement(Requirements(&cfg), "uvx") {
		t.Fatal("expected uvx requirement for whisperx service")
	}
	cfg.Transcription.Service = config.ServiceOpenAI
	if hasRequirement(Requirements(&cfg), "uvx") {
		t.Fatal("did not expect uvx requirement for openai service")
	}
}

func hasRequirement(reqs []Requirement, name string) bool {
	for _, req := range reqs {
		if req.Name == name {
			return true
		}
	}
	return false
}
