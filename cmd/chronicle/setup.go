package chronicle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	watchgraph "github.com/watchgraph/chronicle"
	"github.com/watchgraph/chronicle/pkg/config"
	"github.com/watchgraph/chronicle/pkg/logger"
	"github.com/watchgraph/chronicle/pkg/store"
	"github.com/watchgraph/chronicle/pkg/telemetry"
)

// buildLogger constructs the application logger, optionally routing
// error records into Parquet telemetry files.
func buildLogger(cfg *config.Config) (*slog.Logger, *telemetry.ParquetHandler, error) {
	base := logger.New(cfg.Log.Level, cfg.Log.Format)

	if cfg.Telemetry.ParquetPath == "" {
		return base, nil, nil
	}

	handler, err := telemetry.NewParquetHandler(base.Handler(), cfg.Telemetry.ParquetPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	return slog.New(handler), handler, nil
}

// buildStore constructs the relationship store selected by the
// configuration. The returned close function releases any driver
// resources and is safe to call on shutdown.
func buildStore(cfg *config.Config, log *slog.Logger) (store.RelationshipStore, func(context.Context) error, error) {
	var (
		st      store.RelationshipStore
		closeFn func(context.Context) error
	)

	switch cfg.Store.Driver {
	case "memory", "":
		st = store.NewMemoryStore()
		closeFn = func(context.Context) error { return nil }
	case "neo4j":
		neoStore, err := store.NewNeo4jStore(cfg.Store.URI, cfg.Store.Username, cfg.Store.Password, cfg.Store.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create neo4j store: %w", err)
		}
		st = neoStore
		closeFn = neoStore.Close
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}

	if cfg.CircuitBreaker.Enabled {
		st = store.NewBreakerStore(st, store.BreakerSettings{
			Name:             "relationship-store",
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, log)
	}

	return st, closeFn, nil
}

// buildClient constructs the chronicle client over the configured store.
func buildClient(cfg *config.Config, st store.RelationshipStore, log *slog.Logger) (*watchgraph.Client, error) {
	return watchgraph.NewClient(st, &watchgraph.Config{
		MaxTraversalNodes: cfg.Traversal.MaxNodes,
	}, log)
}
