package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paretosim/optimization-core/internal/benchmarks"
	"github.com/paretosim/optimization-core/internal/dispatch"
	"github.com/paretosim/optimization-core/pkg/config"
	"github.com/paretosim/optimization-core/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "optworker.yaml", "worker configuration file")
	flag.Parse()

	cfg, err := config.LoadWorkerConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "optworker: %v\n", err)
		os.Exit(1)
	}

	logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bench, err := benchmarks.ByName(cfg.Benchmark, cfg.NumVars)
	if err != nil {
		logger.Error("worker setup failed", "error", err)
		os.Exit(1)
	}
	ws, err := dispatch.NewWorkerServer(bench.Simulator)
	if err != nil {
		logger.Error("worker setup failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("worker listening", "addr", cfg.Listen, "benchmark", cfg.Benchmark)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker shutdown error", "error", err)
	}
}
