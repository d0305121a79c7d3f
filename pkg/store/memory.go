package store

import (
	"context"
	"sync"
	"time"

	"github.com/watchgraph/chronicle/pkg/types"
)

// MemoryStore is a thread-safe in-memory RelationshipStore. It backs
// tests, the seed command, and single-process deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*types.Record
	edges   map[string][]types.RelationshipEdge
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*types.Record),
		edges:   make(map[string][]types.RelationshipEdge),
	}
}

// ResolveRecord implements RelationshipStore.
func (s *MemoryStore) ResolveRecord(ctx context.Context, id string) (*types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

// OutgoingEdges implements RelationshipStore. Edges are returned in
// insertion order.
func (s *MemoryStore) OutgoingEdges(ctx context.Context, id string) ([]types.RelationshipEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := s.edges[id]
	out := make([]types.RelationshipEdge, len(edges))
	copy(out, edges)
	return out, nil
}

// PutRecord implements RecordWriter. An existing record with the same ID
// is replaced.
func (s *MemoryStore) PutRecord(ctx context.Context, rec *types.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *rec
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now().UTC()
	}
	clone.UpdatedAt = time.Now().UTC()
	s.records[clone.ID] = &clone
	return nil
}

// PutRelationship implements RecordWriter. Duplicate (source, target,
// type) rows are replaced in place so re-seeding is idempotent.
func (s *MemoryStore) PutRelationship(ctx context.Context, edge types.RelationshipEdge) error {
	if edge.SourceID == "" || edge.TargetID == "" {
		return types.ErrEmptyID
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.edges[edge.SourceID] {
		if existing.TargetID == edge.TargetID && existing.Type == edge.Type {
			s.edges[edge.SourceID][i] = edge
			return nil
		}
	}
	s.edges[edge.SourceID] = append(s.edges[edge.SourceID], edge)
	return nil
}

// Len returns the number of records held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
