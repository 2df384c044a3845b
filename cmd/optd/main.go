package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/paretosim/optimization-core/internal/evolve"
	"github.com/paretosim/optimization-core/internal/runner"
	"github.com/paretosim/optimization-core/pkg/config"
	"github.com/paretosim/optimization-core/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "optd.yaml", "run configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "optd: %v\n", err)
		os.Exit(1)
	}

	logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := runner.New(cfg, logger.Default)
	if err != nil {
		logger.Error("run setup failed", "error", err)
		os.Exit(1)
	}

	summary, err := r.Run(ctx)
	if err != nil {
		var genErr *evolve.GenerationError
		if errors.As(err, &genErr) {
			logger.Error("run aborted mid-generation",
				"generation", genErr.Generation,
				"stage", genErr.Stage,
				"error", genErr.Unwrap())
		} else {
			logger.Error("run failed", "error", err)
		}
		os.Exit(1)
	}

	logger.Info("optimization finished",
		"run_id", summary.RunID,
		"generations", summary.Generations,
		"front_size", summary.Stats.FrontSize,
		"feasible", summary.Stats.FeasibleCount)
	for _, obj := range summary.Stats.Objectives {
		logger.Info("objective summary",
			"objective", obj.Name,
			"mean", obj.Mean,
			"stddev", obj.StdDev,
			"min", obj.Min,
			"max", obj.Max)
	}
}
