// Package cache layers a versioned timeline cache, keyed by root
// identifier, over the timeline generator. The engine itself never
// caches; invalidation, TTLs, and single-build-per-root de-duplication
// all live here.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/sync/singleflight"

	"github.com/watchgraph/chronicle/pkg/types"
)

// ErrCacheMiss is returned when no cached timeline exists for a root.
var ErrCacheMiss = errors.New("timeline cache miss")

const keyPrefix = "timeline:"

// Config holds configuration for the timeline cache.
type Config struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps the cache off disk; used in tests.
	InMemory bool
	// TTL expires cached timelines; zero disables expiry.
	TTL time.Duration
	// Version stamps every cached entry. Bumping it invalidates all
	// previously cached timelines at read time.
	Version int
}

// envelope is the persisted cache row. The embedded timeline keeps the
// exact field names the compatibility contract requires.
type envelope struct {
	Version  int             `json:"version"`
	CachedAt time.Time       `json:"cachedAt"`
	Timeline *types.Timeline `json:"timeline"`
}

// TimelineCache stores assembled timelines in badger, keyed by root
// identifier and stamped with a version number for invalidation.
type TimelineCache struct {
	db      *badger.DB
	ttl     time.Duration
	version int
	logger  *slog.Logger
}

// Open creates or opens a timeline cache.
func Open(cfg Config, logger *slog.Logger) (*TimelineCache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open timeline cache: %w", err)
	}

	version := cfg.Version
	if version <= 0 {
		version = 1
	}

	return &TimelineCache{
		db:      db,
		ttl:     cfg.TTL,
		version: version,
		logger:  logger,
	}, nil
}

// Get returns the cached timeline for rootID. Rows written under an
// older cache version are treated as misses.
func (c *TimelineCache) Get(rootID string) (*types.Timeline, error) {
	var env envelope

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + rootID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &env)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	if env.Version != c.version {
		c.logger.Debug("evicting stale timeline cache row",
			"root", rootID, "row_version", env.Version, "cache_version", c.version)
		return nil, ErrCacheMiss
	}
	return env.Timeline, nil
}

// Put stores a timeline under the cache's current version.
func (c *TimelineCache) Put(rootID string, tl *types.Timeline) error {
	raw, err := json.Marshal(envelope{
		Version:  c.version,
		CachedAt: time.Now().UTC(),
		Timeline: tl,
	})
	if err != nil {
		return fmt.Errorf("failed to encode timeline: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(keyPrefix+rootID), raw)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Invalidate drops the cached timeline for rootID, if any.
func (c *TimelineCache) Invalidate(rootID string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + rootID))
	})
}

// Close releases the underlying database.
func (c *TimelineCache) Close() error {
	return c.db.Close()
}

// Generator is the slice of the chronicle client the cached service
// needs.
type Generator interface {
	GenerateTimeline(ctx context.Context, rootID string) (*types.Timeline, error)
}

// Service combines a generator with the cache and guarantees at most
// one in-flight timeline build per root identifier.
type Service struct {
	generator Generator
	cache     *TimelineCache
	logger    *slog.Logger
	builds    singleflight.Group
}

// NewService creates a cached timeline service.
func NewService(generator Generator, cache *TimelineCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		generator: generator,
		cache:     cache,
		logger:    logger,
	}
}

// Timeline returns the cached timeline for rootID, building and caching
// it on a miss. Concurrent requests for the same root share one build.
func (s *Service) Timeline(ctx context.Context, rootID string) (*types.Timeline, error) {
	if tl, err := s.cache.Get(rootID); err == nil {
		return tl, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		return nil, err
	}

	v, err, _ := s.builds.Do(rootID, func() (interface{}, error) {
		// Re-check inside the flight: a completed flight may have
		// populated the cache while this request waited to start.
		if tl, err := s.cache.Get(rootID); err == nil {
			return tl, nil
		}

		tl, err := s.generator.GenerateTimeline(ctx, rootID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Put(rootID, tl); err != nil {
			s.logger.Warn("failed to cache timeline", "root", rootID, "error", err)
		}
		return tl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Timeline), nil
}

// Invalidate drops the cached timeline for rootID.
func (s *Service) Invalidate(rootID string) error {
	return s.cache.Invalidate(rootID)
}
