package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/atsfeed/internal/config"
	"github.com/amishk599/atsfeed/internal/scheduler"
)

var (
	every  time.Duration
	dryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract, dedup, filter and deliver once (or every interval)",
	Long: "Runs one pass over every company and delivers the kept jobs to the sink.\n" +
		"With --every (or interval in the config file) it repeats until SIGINT/SIGTERM.\n" +
		"Exits 1 when the configuration is invalid or any batch failed.",
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&every, "every", 0, "repeat the run at this interval (default: interval from config, 0 runs once)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log jobs instead of delivering them")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	var opts []config.Option
	if dryRun {
		logger.Info("dry-run mode enabled, jobs will be logged instead of delivered")
		opts = append(opts, config.WithSink(config.SinkLog))
	}
	cfg := mustLoadConfig(logger, opts...)

	logger.Info("config loaded",
		"sink", cfg.Sink.Type,
		"batch_size", cfg.Sink.BatchSize,
		"hours_back", cfg.Filters.HoursBack,
		"request_delay", cfg.HTTP.RequestDelay.String(),
		"max_retries", cfg.HTTP.MaxRetries,
		"title_keywords", len(cfg.Filters.TitleKeywords),
		"locations", len(cfg.Filters.Locations),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, logger)
	defer a.Close()

	runner, err := a.runner(ctx)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		a.Close()
		os.Exit(1)
	}

	interval := every
	if interval == 0 {
		interval = cfg.Interval
	}
	if interval > 0 {
		sched := scheduler.NewScheduler(runner, interval, logger)
		if err := sched.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
			a.Close()
			os.Exit(1)
		}
		logger.Info("goodbye")
		return nil
	}

	report, err := runner.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		a.Close()
		os.Exit(1)
	}
	if report.Failed() {
		logger.Error("run finished with failed batches",
			"failed_batches", report.FailedBatches,
			"batches", report.Batches,
		)
		a.Close()
		os.Exit(1)
	}
	return nil
}
