package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"bilingual/internal/history"
	"bilingual/internal/pipeline"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
	maxListedGaps    = 10
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func runStatusKind(status history.Status) statusKind {
	switch status {
	case history.StatusCompleted:
		return statusOK
	case history.StatusDegraded, history.StatusCanceled:
		return statusWarn
	case history.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}

func countKind(count int) statusKind {
	if count > 0 {
		return statusWarn
	}
	return statusOK
}

// printRunSummary prints the artifact path next to the gap counts so a
// degraded run is obvious at a glance.
func printRunSummary(out io.Writer, report *pipeline.Report, colorize bool) {
	header := fmt.Sprintf("== Run %s ==", shortID(report.RunID))
	if colorize {
		header = ansiBlue + header + ansiReset
	}
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(report.Status), string(report.Status), colorize))
	if report.ArtifactWritten {
		fmt.Fprintln(out, renderStatusLine("Transcript", statusOK, report.OutputPath, colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Transcript", statusError, "not written", colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Report", statusInfo, report.ReportPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Chunks", countKind(len(report.FailedChunks)),
		fmt.Sprintf("%d total, %d failed", report.ChunkCount, len(report.FailedChunks)), colorize))
	fmt.Fprintln(out, renderStatusLine("Segments", countKind(len(report.FailedSegments)),
		fmt.Sprintf("%d total, %d untranslated", report.SegmentCount, len(report.FailedSegments)), colorize))
	if report.DroppedSegments > 0 {
		fmt.Fprintln(out, renderStatusLine("Dropped", statusWarn,
			fmt.Sprintf("%d segments with invalid timing", report.DroppedSegments), colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, report.Elapsed().Round(time.Second).String(), colorize))

	for i, gap := range report.FailedChunks {
		if i == maxListedGaps {
			fmt.Fprintf(out, "%s  ... %d more chunk gaps in the report\n", statusIndent, len(report.FailedChunks)-maxListedGaps)
			break
		}
		fmt.Fprintf(out, "%s  gap [%s - %s] chunk %d: %s\n", statusIndent,
			formatTimestamp(gap.Start), formatTimestamp(gap.End), gap.Index, firstLine(gap.Error))
	}
	if report.Error != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, firstLine(report.Error), colorize))
	}
}

func formatTimestamp(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstLine(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		return value[:idx]
	}
	return value
}

func shouldColorize(writer io.Writer) bool {
	return isTerminal(writer)
}

// isTerminal reports whether stream is an *os.File attached to a terminal.
func isTerminal(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
