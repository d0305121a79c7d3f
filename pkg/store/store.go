// Package store defines the relationship store capability the traversal
// engine consumes, plus the concrete backends: an in-memory store for
// tests and seeding, a Neo4j store for production graphs, and a circuit
// breaker wrapper for flaky backends.
package store

import (
	"context"
	"errors"

	"github.com/watchgraph/chronicle/pkg/types"
)

// ErrNotFound is returned by ResolveRecord when no record exists for an
// identifier. The engine treats it as a silent exclusion, never as a
// failure; every other error propagates unchanged.
var ErrNotFound = errors.New("record not found")

// RelationshipStore supplies the two read-only lookups the engine
// consumes. Implementations must be safe for concurrent use.
type RelationshipStore interface {
	// ResolveRecord returns the record for id, or ErrNotFound.
	ResolveRecord(ctx context.Context, id string) (*types.Record, error)

	// OutgoingEdges returns the ordered list of edges whose SourceID
	// equals id. A node with no edges yields an empty slice, not an
	// error.
	OutgoingEdges(ctx context.Context, id string) ([]types.RelationshipEdge, error)
}

// RecordWriter is the write surface used by the seeding CLI and the
// ingest endpoints. The engine itself never writes.
type RecordWriter interface {
	PutRecord(ctx context.Context, rec *types.Record) error
	PutRelationship(ctx context.Context, edge types.RelationshipEdge) error
}
