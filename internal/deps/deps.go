package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"bilingual/internal/config"
)

// Requirement defines an external dependency the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionArgs, when set, are passed to Command to capture a version line.
	VersionArgs []string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Version     string
	Detail      string
}

// Requirements lists the binaries the configured pipeline shells out to.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.YTDLPBinary(),
			Description: "Downloads source audio from remote URLs",
			Optional:    true,
			VersionArgs: []string{"--version"},
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Normalizes and splits audio into chunks",
			VersionArgs: []string{"-version"},
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Measures audio duration and codec",
			VersionArgs: []string{"-version"},
		},
	}
	if cfg.Transcription.Service == config.ServiceWhisperX {
		reqs = append(reqs, Requirement{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Runs WhisperX transcription",
			VersionArgs: []string{"--version"},
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		if len(req.VersionArgs) > 0 {
			status.Version = probeVersion(ctx, path, req.VersionArgs)
		}
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the statuses of required binaries that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}

func probeVersion(ctx context.Context, path string, args []string) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, args...).Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line)
}
