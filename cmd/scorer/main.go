// Command scorer runs one daily scoring pass and prints its summary as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/release-league/internal/app"
	"github.com/riskibarqy/release-league/internal/config"
	"github.com/riskibarqy/release-league/internal/observability"
	"github.com/riskibarqy/release-league/internal/platform/logging"
	"github.com/riskibarqy/release-league/internal/usecase"
)

type options struct {
	mode        string
	dryRun      bool
	concurrency int
	delay       time.Duration
	date        string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	opts, err := parseFlags(args, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	telemetry, err := observability.Start(cfg, observability.RoleScorer, logging.NewJSON(cfg.LogLevel))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := telemetry.Logger
	logging.SetDefault(logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() { _ = components.Close() }()

	result, runErr := components.JobOrchestrator.RunScoringJob(ctx, usecase.ScoringJobInput{
		Mode:        usecase.ScoringMode(opts.mode),
		DryRun:      opts.dryRun,
		Concurrency: opts.concurrency,
		Delay:       opts.delay,
		Date:        opts.date,
	})

	out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("encode summary", "error", err)
		return 1
	}
	fmt.Println(string(out))

	if runErr != nil {
		logger.Error("scoring run failed", "mode", opts.mode, "error", runErr)
		return 1
	}
	return 0
}

func parseFlags(args []string, cfg config.Config) (options, error) {
	fs := flag.NewFlagSet("scorer", flag.ContinueOnError)
	opts := options{}
	fs.StringVar(&opts.mode, "mode", string(usecase.ScoringModeFull), "scoring mode: full or ccu_snapshot")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "compute points without writing")
	fs.IntVar(&opts.concurrency, "concurrency", cfg.ScoringConcurrency, "parallel telemetry fetches")
	fs.DurationVar(&opts.delay, "delay", cfg.ScoringDelay, "pause between fetches per worker")
	fs.StringVar(&opts.date, "date", "", "scoring day as YYYY-MM-DD, defaults to today (UTC)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if _, err := usecase.ParseScoringMode(opts.mode); err != nil {
		return options{}, err
	}
	if opts.concurrency < 1 {
		return options{}, fmt.Errorf("-concurrency must be >= 1")
	}
	if opts.delay < 0 {
		return options{}, fmt.Errorf("-delay must be >= 0")
	}
	if opts.date != "" {
		if _, err := time.Parse(time.DateOnly, opts.date); err != nil {
			return options{}, fmt.Errorf("-date must be YYYY-MM-DD: %w", err)
		}
	}
	return opts, nil
}
