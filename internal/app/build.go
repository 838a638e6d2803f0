package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/antoniostano/caretrack/internal/config"
	"github.com/antoniostano/caretrack/internal/feed"
	"github.com/antoniostano/caretrack/internal/httpapi"
	"github.com/antoniostano/caretrack/internal/observability"
	"github.com/antoniostano/caretrack/internal/records"
	"github.com/antoniostano/caretrack/internal/reliability"
)

type BuildResult struct {
	Config  config.Config
	API     *httpapi.Server
	Store   records.Store
	Feed    *feed.Hub
	Metrics *observability.Metrics

	// Cleanup should be called on shutdown to release the store connection pool.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*BuildResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	var store records.Store
	err := reliability.Retry(ctx, cfg.StoreConnectRetries, cfg.StoreRetryBase, 10*time.Second, func(ctx context.Context) error {
		var err error
		store, err = records.NewStore(ctx, cfg.DatabaseURL)
		return err
	}, func(attempt int, wait time.Duration, err error) {
		logger.Warn("record store unavailable, retrying", "attempt", attempt, "wait", wait.String(), "error", err)
	})
	if err != nil {
		return nil, fmt.Errorf("record store init failed: %w", err)
	}
	if _, ok := store.(*records.InMemoryStore); ok {
		logger.Warn("using in-memory record store; data is lost on restart")
	}

	hub := feed.NewHub(cfg.FeedBuffer)
	hub.SetChangeHook(func(subscribers int) {
		metrics.FeedSubscribers.Set(float64(subscribers))
	})

	api := httpapi.New(cfg, store, hub, metrics, logger)

	cleanup := func() error {
		if err := store.Close(); err != nil {
			return fmt.Errorf("record store close: %w", err)
		}
		return nil
	}

	return &BuildResult{
		Config:  cfg,
		API:     api,
		Store:   store,
		Feed:    hub,
		Metrics: metrics,
		Cleanup: cleanup,
	}, nil
}
