package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bilingual/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded yet")
					return nil
				}
				fmt.Fprintln(out, renderHistoryTable(runs))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, err := findRun(cmd, store, args[0])
				if err != nil {
					return err
				}
				printRunDetail(cmd, run)
				return nil
			})
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
				return nil
			})
		},
	}
}

// findRun accepts a full run id or a unique prefix, like the short ids the
// table prints.
func findRun(cmd *cobra.Command, store *history.Store, id string) (*history.Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("run id is required")
	}
	run, err := store.Get(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if run != nil {
		return run, nil
	}
	runs, err := store.List(cmd.Context(), 0)
	if err != nil {
		return nil, err
	}
	var match *history.Run
	for _, candidate := range runs {
		if strings.HasPrefix(candidate.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
			}
			match = candidate
		}
	}
	if match == nil {
		return nil, fmt.Errorf("run %s not found", id)
	}
	return match, nil
}

func renderHistoryTable(runs []*history.Run) string {
	headers := []string{"Run", "Started", "Status", "Chunks", "Segments", "Gaps", "Elapsed", "Source"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			string(run.Status),
			strconv.Itoa(run.ChunkCount),
			strconv.Itoa(run.SegmentCount),
			fmt.Sprintf("%d/%d", run.FailedChunks, run.FailedSegments),
			run.Elapsed().Round(time.Second).String(),
			run.Source,
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}

func printRunDetail(cmd *cobra.Command, run *history.Run) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintf(out, "Run %s\n", run.ID)
	fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(run.Status), string(run.Status), colorize))
	fmt.Fprintln(out, renderStatusLine("Source", statusInfo, run.Source, colorize))
	fmt.Fprintln(out, renderStatusLine("Transcript", statusInfo, run.OutputPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Service", statusInfo, run.Service, colorize))
	fmt.Fprintln(out, renderStatusLine("Backend", statusInfo, run.Backend, colorize))
	fmt.Fprintln(out, renderStatusLine("Media", statusInfo, formatTimestamp(run.DurationSeconds), colorize))
	fmt.Fprintln(out, renderStatusLine("Chunks", countKind(run.FailedChunks),
		fmt.Sprintf("%d total, %d failed", run.ChunkCount, run.FailedChunks), colorize))
	fmt.Fprintln(out, renderStatusLine("Segments", countKind(run.FailedSegments),
		fmt.Sprintf("%d total, %d untranslated", run.SegmentCount, run.FailedSegments), colorize))
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.RFC3339), colorize))
	fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, run.Elapsed().Round(time.Second).String(), colorize))
	if run.ErrorMessage != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError,
			fmt.Sprintf("%s (%s)", firstLine(run.ErrorMessage), run.FailureKind), colorize))
	}
}
