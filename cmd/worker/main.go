package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"juriscope/internal/activities"
	"juriscope/internal/app"
	"juriscope/internal/config"
	"juriscope/internal/logging"
	"juriscope/internal/workflows"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if err := run(context.Background(), cfg, logger, worker.InterruptCh()); err != nil {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}

// run owns every resource it opens so deferred closes happen before main exits.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger, interrupt <-chan interface{}) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer a.Close()

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress, Logger: logger})
	if err != nil {
		return fmt.Errorf("dial temporal %s: %w", cfg.TemporalAddress, err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{MaxConcurrentActivityExecutionSize: 4})
	workflows.Register(w)
	activities.Register(w, activities.New(a.Processor, a.Bus, cfg.DataOutRoot, logger))

	logger.Info("juriscope worker listening", "address", cfg.TemporalAddress, "queue", cfg.TemporalTaskQueue, "providers", cfg.AnalyzerProviders)
	return w.Run(interrupt)
}
