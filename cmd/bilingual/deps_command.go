package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bilingual/internal/deps"
	"bilingual/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var network bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and directories the pipeline needs",
		Long: "Lists the external binaries and verifies the scratch, state, and output directories.\n" +
			"With --network it also sends one request to the translation backend and, for the\n" +
			"openai service, checks the transcription API key.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(cmd.Context(), deps.Requirements(cfg))
			checks := preflight.RunAll(cmd.Context(), cfg, preflight.Options{Network: network})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderDepsTable(statuses))
			fmt.Fprintln(out, renderPreflightTable(checks))

			missing := deps.MissingRequired(statuses)
			failed := preflight.Failed(checks)
			if len(missing) > 0 || len(failed) > 0 {
				return fmt.Errorf("%d required tool(s) missing, %d check(s) failed", len(missing), len(failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&network, "network", false, "Also contact the translation and transcription providers")
	return cmd
}

func renderDepsTable(statuses []deps.Status) string {
	headers := []string{"Tool", "Status", "Version", "Purpose"}
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		state := "ok"
		switch {
		case !status.Available && status.Optional:
			state = "missing (optional)"
		case !status.Available:
			state = "missing"
		}
		version := status.Version
		if !status.Available {
			version = status.Detail
		}
		rows = append(rows, []string{status.Name, state, version, status.Description})
	}
	return renderTable(headers, rows, nil)
}

func renderPreflightTable(results []preflight.Result) string {
	headers := []string{"Check", "Status", "Detail"}
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		state := "ok"
		if !result.Passed {
			state = "failed"
		}
		rows = append(rows, []string{result.Name, state, result.Detail})
	}
	return renderTable(headers, rows, nil)
}
