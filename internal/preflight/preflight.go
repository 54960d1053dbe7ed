package preflight

import (
	"context"
	"path/filepath"

	"bilingual/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects which optional checks RunAll performs.
type Options struct {
	// Network enables checks that contact the translation and
	// transcription providers.
	Network bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if output := cfg.Pipeline.OutputPath; output != "" {
		if abs, err := filepath.Abs(output); err == nil {
			output = abs
		}
		results = append(results, CheckDirectoryAccess("Output directory", filepath.Dir(output)))
	}

	if !opts.Network {
		return results
	}
	results = append(results, CheckTranslation(ctx, cfg))
	if cfg.Transcription.Service == config.ServiceOpenAI {
		results = append(results, CheckTranscriptionAPI(ctx, cfg.Transcription.BaseURL, cfg.Transcription.APIKey))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
