package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"bilingual/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var runID string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the CLI log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogFilePath()
			if path == "" {
				return fmt.Errorf("logging to a file is disabled (paths.log_dir is empty)")
			}
			opts := logs.TailOptions{Offset: -1, Limit: lines, Match: strings.TrimSpace(runID)}
			out := cmd.OutOrStdout()

			if !follow {
				result, err := logs.Tail(cmd.Context(), path, opts)
				if err != nil {
					return err
				}
				for _, line := range result.Lines {
					fmt.Fprintln(out, line)
				}
				return nil
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return logs.Follow(signalCtx, path, opts, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&runID, "run", "", "Only show lines for this run ID")
	return cmd
}
