package chronicle

import (
	"context"
	"errors"
	"log/slog"

	"github.com/watchgraph/chronicle/pkg/ordering"
	"github.com/watchgraph/chronicle/pkg/store"
	"github.com/watchgraph/chronicle/pkg/traversal"
	"github.com/watchgraph/chronicle/pkg/types"
)

// ErrNilStore is returned by NewClient when no relationship store is
// supplied.
var ErrNilStore = errors.New("relationship store is required")

// Config holds configuration for the chronicle client.
type Config struct {
	// MaxTraversalNodes caps the distinct identifiers one traversal may
	// visit. Zero selects traversal.DefaultMaxNodes.
	MaxTraversalNodes int
}

// Client composes graph traversal and chronological ordering into the
// timeline assembly operation. It is stateless between calls and safe
// for concurrent use.
type Client struct {
	store  store.RelationshipStore
	engine *traversal.Engine
	sorter *ordering.Sorter
	config *Config
	logger *slog.Logger
}

// NewClient creates a chronicle client around an injected relationship
// store. The store is the only external capability the engine consumes;
// test doubles are supplied the same way.
func NewClient(relStore store.RelationshipStore, config *Config, logger *slog.Logger) (*Client, error) {
	if relStore == nil {
		return nil, ErrNilStore
	}
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		store:  relStore,
		engine: traversal.NewEngine(relStore, config.MaxTraversalNodes, logger),
		sorter: ordering.NewSorter(),
		config: config,
		logger: logger,
	}, nil
}

// Store returns the underlying relationship store.
func (c *Client) Store() store.RelationshipStore {
	return c.store
}

// PerformGraphTraversal walks the relationship graph from rootID.
func (c *Client) PerformGraphTraversal(ctx context.Context, rootID string) (*types.TraversalResult, error) {
	return c.engine.PerformGraphTraversal(ctx, rootID)
}

// FindAllRelated returns every record reachable from rootID in
// discovery order.
func (c *Client) FindAllRelated(ctx context.Context, rootID string) ([]*types.Record, error) {
	return c.engine.FindAllRelated(ctx, rootID)
}

// DetectCycles re-analyzes a traversal result for cycles in the
// resolved subgraph.
func (c *Client) DetectCycles(result *types.TraversalResult) []types.Cycle {
	return c.engine.DetectCycles(result)
}

// GetRecord resolves a single record through the store.
func (c *Client) GetRecord(ctx context.Context, id string) (*types.Record, error) {
	return c.store.ResolveRecord(ctx, id)
}

// OutgoingEdges returns the relationship edges originating at id.
func (c *Client) OutgoingEdges(ctx context.Context, id string) ([]types.RelationshipEdge, error) {
	return c.store.OutgoingEdges(ctx, id)
}
