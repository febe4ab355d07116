package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/guardian/internal/analysis"
	"github.com/dusk-indust/guardian/internal/config"
	"github.com/dusk-indust/guardian/internal/export"
	"github.com/dusk-indust/guardian/internal/scanner"
)

type scanOptions struct {
	format   string
	output   string
	workers  int
	severity string
	verbose  bool
}

func newScanCmd() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Analyze a file or directory and report findings, metrics, and scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text, json, or sarif")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "worker count (0 = number of CPUs)")
	cmd.Flags().StringVar(&opts.severity, "severity", "", "minimum severity to report (overrides config)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func runScan(cmd *cobra.Command, root string, opts scanOptions) error {
	level := hclog.Warn
	if opts.verbose {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "guardian",
		Output: cmd.ErrOrStderr(),
		Level:  level,
	})

	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	if opts.severity != "" {
		cfg.SeverityFilter = opts.severity
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration: %w", err)
		}
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	targets, err := scanner.Discover(root, cfg.Extensions, cfg.ExcludePatterns)
	if err != nil {
		return err
	}
	logger.Debug("discovered targets", "count", len(targets))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runner := analysis.NewRunner(engine, analysis.HeuristicAdvisor{}, logger, analysis.RunnerOptions{
		Workers:             cfg.Workers,
		ComplexityThreshold: cfg.ComplexityThreshold,
		MinSeverity:         cfg.MinSeverity(),
	})
	report, runErr := runner.Run(ctx, targets)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.output, err)
		}
		defer f.Close()
		out = f
	}

	switch opts.format {
	case "text":
		return export.WriteText(out, report)
	case "json":
		return export.WriteJSON(out, report)
	case "sarif":
		return export.WriteSARIF(out, report)
	default:
		return fmt.Errorf("unsupported format %q, allowed values: text, json, sarif", opts.format)
	}
}
