package chronicle

import (
	"context"

	"github.com/watchgraph/chronicle/pkg/types"
)

// This file defines focused interfaces so consumers can depend on the
// smallest capability that meets their needs.

// Traverser provides graph discovery operations.
type Traverser interface {
	// PerformGraphTraversal walks the relationship graph breadth-first
	// from rootID, tolerating cycles.
	PerformGraphTraversal(ctx context.Context, rootID string) (*types.TraversalResult, error)

	// FindAllRelated returns every record reachable from rootID in
	// discovery order.
	FindAllRelated(ctx context.Context, rootID string) ([]*types.Record, error)

	// DetectCycles analyzes a traversal result for cycles in the
	// resolved subgraph.
	DetectCycles(result *types.TraversalResult) []types.Cycle
}

// TimelineGenerator assembles ordered timelines. The cache layer and the
// HTTP handlers depend on this interface alone.
type TimelineGenerator interface {
	GenerateTimeline(ctx context.Context, rootID string) (*types.Timeline, error)
}

// RelationQuerier provides single-record lookups through the engine's
// store.
type RelationQuerier interface {
	GetRecord(ctx context.Context, id string) (*types.Record, error)
	OutgoingEdges(ctx context.Context, id string) ([]types.RelationshipEdge, error)
}

// Compile-time check that Client satisfies every focused interface.
var _ interface {
	Traverser
	TimelineGenerator
	RelationQuerier
} = (*Client)(nil)
