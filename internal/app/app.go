// Package app wires configuration into the long-lived pipeline services
// shared by the API server, the worker and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"juriscope/internal/blob"
	"juriscope/internal/config"
	"juriscope/internal/events"
	"juriscope/internal/extract"
	"juriscope/internal/ingest"
	"juriscope/internal/integrity"
	"juriscope/internal/lifecycle"
	"juriscope/internal/metrics"
	"juriscope/internal/positioning"
	"juriscope/internal/providers"
	"juriscope/internal/storage"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Store     storage.Store
	Blobs     blob.Store
	Hub       *events.Hub
	Bus       events.Bus
	Metrics   *metrics.Metrics
	Analyzer  *providers.Manager
	Lifecycle *lifecycle.Service
	Processor *ingest.Processor
	Verifier  *integrity.Verifier

	nats *events.NATSBus
}

// New connects storage, blobs and the event bus. A NATS connection failure
// is logged and the in-process hub keeps serving.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Metrics: metrics.New(nil)}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store

	a.Blobs, err = blob.New(ctx, cfg)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	a.Hub = events.NewHub(logger)
	a.Hub.Start()
	fan := events.Fanout{a.Hub}
	if cfg.NATSURL != "" {
		nb, err := events.ConnectNATS(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			logger.Warn("nats unavailable, events stay in process", "url", cfg.NATSURL, "error", err)
		} else {
			a.nats = nb
			fan = append(fan, nb)
		}
	}
	a.Bus = fan

	a.Analyzer, err = providers.NewManager(cfg, providers.WithMetrics(a.Metrics), providers.WithLogger(logger))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build analyzer providers: %w", err)
	}

	a.Lifecycle = lifecycle.NewService(store, positioning.New(logger),
		lifecycle.WithBus(a.Bus),
		lifecycle.WithMetrics(a.Metrics),
		lifecycle.WithLogger(logger),
		lifecycle.WithReadyWithoutDraft(cfg.AllowReadyWithoutDraft),
	)

	fetchClient := &http.Client{Timeout: extract.DefaultFetchTimeout}
	if cfg.FetchTimeoutSecs > 0 {
		fetchClient.Timeout = seconds(cfg.FetchTimeoutSecs)
	}
	fetcher := extract.NewHTTPFetcher(fetchClient)
	a.Processor = ingest.NewProcessor(ingest.Deps{
		Store:     store,
		Lifecycle: a.Lifecycle,
		Extractor: extract.New(fetcher,
			extract.WithMinLength(cfg.MinContentLength),
			extract.WithLogger(logger),
		),
		Analyzer: a.Analyzer,
		Fetcher:  fetcher,
		Verifier: extract.NewURLVerifier(nil, seconds(cfg.VerifyTimeoutSecs), seconds(cfg.URLCacheTTLSecs), cfg.URLCacheSize),
		Blobs:    a.Blobs,
		Bus:      a.Bus,
		Metrics:  a.Metrics,
		Logger:   logger,
	})
	a.Verifier = integrity.NewVerifier(store, a.Blobs, logger).Notify(a.Bus, a.Metrics)

	logger.Info("pipeline ready",
		"store", cfg.StoreDriver,
		"blob", cfg.BlobType,
		"analyzers", a.Analyzer.Count(),
		"nats", a.nats != nil,
	)
	return a, nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.StoreDriver {
	case StoreMemory:
		return storage.NewMemory(), nil
	case StorePostgres, "":
		cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		db, err := storage.NewDB(cctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(cctx); err != nil {
			db.Close()
			return nil, err
		}
		return storage.NewPostgres(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}
}

func (a *App) Close() {
	if a.nats != nil {
		a.nats.Stop()
	}
	if a.Hub != nil {
		a.Hub.Stop()
	}
	if a.Store != nil {
		a.Store.Close()
	}
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
