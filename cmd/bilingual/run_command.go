package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"bilingual/internal/config"
	"bilingual/internal/deps"
	"bilingual/internal/history"
	"bilingual/internal/logging"
	"bilingual/internal/pipeline"
)

type runOptions struct {
	output         string
	chunkLength    float64
	chunkLengthSet bool
	model          string
	service        string
	backend        string
	sourceLanguage string
	targetLanguage string
	jsonOutput     bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [url-or-file]",
		Short: "Transcribe and translate one source into a bilingual transcript",
		Long: "Downloads the source (or reads a local file), splits it into fixed-length chunks,\n" +
			"transcribes each chunk, translates every segment, and writes time-aligned blocks.\n" +
			"Without an argument the URL is read interactively when stdin is a terminal.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.chunkLengthSet = cmd.Flags().Changed("chunk-length")
			return runPipeline(cmd, ctx, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "Transcript path (default pipeline.output_path)")
	flags.Float64Var(&opts.chunkLength, "chunk-length", 0, "Chunk length in seconds (default pipeline.chunk_length_seconds)")
	flags.StringVarP(&opts.model, "model", "m", "", "WhisperX model tier: tiny, base, small, medium, large-v3")
	flags.StringVar(&opts.service, "service", "", "Transcription service: whisperx or openai")
	flags.StringVarP(&opts.backend, "backend", "b", "", "Translation backend: google or papago")
	flags.StringVar(&opts.sourceLanguage, "from", "", "Source language code (default pipeline.source_language)")
	flags.StringVar(&opts.targetLanguage, "to", "", "Target language code (default pipeline.target_language)")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print the run report as JSON")
	return cmd
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, opts *runOptions, args []string) error {
	cmdCtx := cmd.Context()
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := applyRunOverrides(cfg, opts); err != nil {
		return err
	}

	source := ""
	if len(args) > 0 {
		source = args[0]
	}
	if strings.TrimSpace(source) == "" {
		source, err = promptForSource(cmd.InOrStdin(), cmd.ErrOrStderr(), isInteractive(cmd.InOrStdin()))
		if err != nil {
			return err
		}
	}

	statuses := deps.CheckBinaries(signalCtx, deps.Requirements(cfg))
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, status := range missing {
			names = append(names, status.Command)
		}
		return fmt.Errorf("missing required tools: %s (run 'bilingual deps' for details)", strings.Join(names, ", "))
	}

	logger, err := ctx.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	stages, err := pipeline.NewDefaultDeps(cfg, logger)
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on paths.state_dir"),
			logging.String(logging.FieldImpact, "this run will not appear in 'bilingual history'"),
		)
	} else {
		defer store.Close()
		stages.History = store
	}

	runner := pipeline.NewRunner(cfg, stages, logger)
	report, runErr := runner.Run(signalCtx, pipeline.Request{Source: source, OutputPath: opts.output})
	if report != nil {
		if opts.jsonOutput {
			if err := writeJSON(cmd, report); err != nil {
				return err
			}
		} else {
			printRunSummary(cmd.OutOrStdout(), report, shouldColorize(cmd.OutOrStdout()))
		}
	}
	return runErr
}

func applyRunOverrides(cfg *config.Config, opts *runOptions) error {
	if opts.chunkLengthSet {
		cfg.Pipeline.ChunkLengthSeconds = opts.chunkLength
	}
	if value := strings.TrimSpace(opts.model); value != "" {
		cfg.Transcription.Model = strings.ToLower(value)
	}
	if value := strings.TrimSpace(opts.service); value != "" {
		cfg.Transcription.Service = strings.ToLower(value)
	}
	if value := strings.TrimSpace(opts.backend); value != "" {
		cfg.Translation.Backend = strings.ToLower(value)
	}
	if value := strings.TrimSpace(opts.sourceLanguage); value != "" {
		cfg.Pipeline.SourceLanguage = value
	}
	if value := strings.TrimSpace(opts.targetLanguage); value != "" {
		cfg.Pipeline.TargetLanguage = value
	}
	return cfg.Revalidate()
}

func promptForSource(in io.Reader, out io.Writer, interactive bool) (string, error) {
	if !interactive {
		return "", errors.New("a source URL or file is required (pass it as an argument)")
	}
	fmt.Fprint(out, "Enter the video URL: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read source: %w", err)
	}
	source := strings.TrimSpace(line)
	if source == "" {
		return "", errors.New("no source entered")
	}
	return source, nil
}

func isInteractive(in io.Reader) bool {
	return isTerminal(in)
}
