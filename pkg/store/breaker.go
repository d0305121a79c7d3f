package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/watchgraph/chronicle/pkg/types"
)

// BreakerSettings tunes the circuit breaker wrapping a store.
type BreakerSettings struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// BreakerStore wraps a RelationshipStore with circuit breaking. Retry
// and trip policy belongs to the store's client, so the wrapper lives
// here rather than in the traversal engine; the engine sees breaker
// errors as ordinary store failures and propagates them unchanged.
type BreakerStore struct {
	next   RelationshipStore
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewBreakerStore wraps next with a circuit breaker.
func NewBreakerStore(next RelationshipStore, settings BreakerSettings, logger *slog.Logger) *BreakerStore {
	if logger == nil {
		logger = slog.Default()
	}
	if settings.Name == "" {
		settings.Name = "relationship-store"
	}
	if settings.ReadyToTripRatio <= 0 {
		settings.ReadyToTripRatio = 0.6
	}

	st := gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= settings.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("relationship store circuit breaker state change",
				"name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// Missing records are a normal answer, not a backend fault.
			return err == nil || errors.Is(err, ErrNotFound)
		},
	}

	return &BreakerStore{
		next:   next,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

// ResolveRecord implements RelationshipStore.
func (s *BreakerStore) ResolveRecord(ctx context.Context, id string) (*types.Record, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.ResolveRecord(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*types.Record), nil
}

// OutgoingEdges implements RelationshipStore.
func (s *BreakerStore) OutgoingEdges(ctx context.Context, id string) ([]types.RelationshipEdge, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.OutgoingEdges(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.([]types.RelationshipEdge), nil
}

// State exposes the breaker state for health reporting.
func (s *BreakerStore) State() gobreaker.State {
	return s.cb.State()
}
