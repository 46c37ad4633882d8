package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	"juriscope/internal/api"
	"juriscope/internal/app"
	"juriscope/internal/config"
	"juriscope/internal/logging"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("api server stopped", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is done. Resources opened here are closed on return.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer a.Close()

	deps := api.Deps{
		Store:      a.Store,
		Lifecycle:  a.Lifecycle,
		Processor:  a.Processor,
		Verifier:   a.Verifier,
		Hub:        a.Hub,
		Metrics:    a.Metrics,
		TaskQueue:  cfg.TemporalTaskQueue,
		BatchLimit: cfg.BatchDefaultLimit,
		BatchDelay: cfg.BatchDelaySecs,
		Logger:     logger,
	}
	tc, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress, Logger: logger})
	if err != nil {
		logger.Warn("temporal unavailable, batch endpoints disabled", "address", cfg.TemporalAddress, "error", err)
	} else {
		defer tc.Close()
		deps.Temporal = tc
	}

	srv := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           api.NewServer(deps).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	logger.Info("juriscope api listening", "addr", cfg.APIAddr, "providers", cfg.AnalyzerProviders, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", cfg.APIAddr, err)
	}
	return nil
}
