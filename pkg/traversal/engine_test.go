package traversal

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchgraph/chronicle/pkg/store"
	"github.com/watchgraph/chronicle/pkg/types"
)

// flakyStore injects failures into a backing store.
type flakyStore struct {
	inner       *store.MemoryStore
	resolveErrs map[string]error
	edgeErrs    map[string]error
}

func (f *flakyStore) ResolveRecord(ctx context.Context, id string) (*types.Record, error) {
	if err, ok := f.resolveErrs[id]; ok {
		return nil, err
	}
	return f.inner.ResolveRecord(ctx, id)
}

func (f *flakyStore) OutgoingEdges(ctx context.Context, id string) ([]types.RelationshipEdge, error) {
	if err, ok := f.edgeErrs[id]; ok {
		return nil, err
	}
	return f.inner.OutgoingEdges(ctx, id)
}

func seedGraph(t *testing.T, nodes []string, edges [][2]string) *store.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()
	for _, id := range nodes {
		require.NoError(t, s.PutRecord(ctx, &types.Record{
			ID:        id,
			Title:     id,
			MediaType: types.MediaTypeSeries,
		}))
	}
	for _, e := range edges {
		require.NoError(t, s.PutRelationship(ctx, types.RelationshipEdge{
			SourceID: e[0],
			TargetID: e[1],
			Type:     types.RelationSequel,
		}))
	}
	return s
}

func TestTraversalLinearChain(t *testing.T) {
	t.Parallel()

	s := seedGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
	engine := NewEngine(s, 0, nil)

	result, err := engine.PerformGraphTraversal(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, result.VisitedOrder)
	assert.Len(t, result.Nodes, 3)
	assert.Empty(t, result.Cycles)
	assert.Equal(t, []string{"b"}, result.Adjacency["a"])
}

func TestTraversalNodesMatchVisitedOrder(t *testing.T) {
	t.Parallel()

	s := seedGraph(t, []string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}})
	engine := NewEngine(s, 0, nil)

	result, err := engine.PerformGraphTraversal(context.Background(), "a")
	require.NoError(t, err)

	seen := map[string]int{}
	for _, id := range result.VisitedOrder {
		seen[id]++
		assert.Contains(t, result.Nodes, id)
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "id %s appears %d times in visited order", id, count)
	}
	assert.Len(t, result.Nodes, len(result.VisitedOrder))
}

func TestTraversalThreeNodeCycleTerminates(t *testing.T) {
	t.Parallel()

	s := seedGraph(t, []string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	engine := NewEngine(s, 0, nil)

	result, err := engine.PerformGraphTraversal(context.Background(), "a")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "b", "c"}, result.VisitedOrder)
	require.NotEmpty(t, result.Cycles)

	found := false
	for _, cycle := range result.Cycles {
		ids := append([]string{}, cycle...)
		sort.Strings(ids)
		if len(ids) == 3 && ids[0] == "a" && ids[1] == "b" && ids[2] == "c" {
			found = true
		}
	}
	assert.True(t, found, "expected a cycle containing all of a, b, c; got %v", result.Cycles)
}

func TestTraversalSelfLoop(t *testing.T) {
	t.Parallel()

	s := seedGraph(t, []string{"a"}, [][2]string{{"a", "a"}})
	engine := NewEngine(s, 0, nil)

	result, err := engine.PerformGraphTraversal(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, result.VisitedOrder)
	require.Len(t, result.Cycles, 1)
	assert.Equal(t, types.Cycle{"a"}, result.Cycles[0])
}

func TestTraversalMutualPairDeduplicatesCycle(t *testing.T) {
	t.Parallel()

	// Sequel and prequel stored as two directed rows produce one cycle
	// over {a, b}, not two.
	s := seedGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})
	engine := NewEngine(s, 0, nil)

	result, err := engine.PerformGraphTraversal(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, result.Cycles, 1)
}

func TestTraversalMissingRecordIsSilentlyExcluded(t *testing.T) {
	t.Parallel()

	s := seedGraph(t, []string{"a", "c"}, [][2]string{{"a", "ghost"}, {"a", "c"}})
	engine := NewEngine(s, 0, nil)

	result, err := engine.PerformGraphTraversal(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, result.VisitedOrder)
	assert.NotContains(t, result.Nodes, "ghost")
	// The edge to the ghost is still part of the walked adjacency.
	assert.Equal(t, []string{"ghost", "c"}, result.Adjacency["a"])
}

func TestTraversalStoreErrorPropagates(t *testing.T) {
	t.Parallel()

	backendErr := errors.New("connection reset")
	s := seedGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	engine := NewEngine(&flakyStore{
		inner:       s,
		resolveErrs: map[string]error{"b": backendErr},
	}, 0, nil)

	_, err := engine.PerformGraphTraversal(context.Background(), "a")
	assert.ErrorIs(t, err, backendErr)
}

func TestTraversalEdgeErrorPropagates(t *testing.T) {
	t.Parallel()

	backendErr := errors.New("timeout")
	s := seedGraph(t, []string{"a"}, nil)
	engine := NewEngine(&flakyStore{
		inner:    s,
		edgeErrs: map[string]error{"a": backendErr},
	}, 0, nil)

	_, err := engine.PerformGraphTraversal(context.Background(), "a")
	assert.ErrorIs(t, err, backendErr)
}

func TestTraversalGraphTooLarge(t *testing.T) {
	t.Parallel()

	s := seedGraph(t, []string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}})
	engine := NewEngine(s, 2, nil)

	_, err := engine.PerformGraphTraversal(context.Background(), "a")
	assert.ErrorIs(t, err, ErrGraphTooLarge)
}

func TestFindAllRelated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := seedGraph(t, []string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	engine := NewEngine(s, 0, nil)

	records, err := engine.FindAllRelated(ctx, "a")
	require.NoError(t, err)
	require.Len(t, records, 3)

	ids := map[string]bool{}
	for _, r := range records {
		assert.False(t, ids[r.ID], "duplicate id %s", r.ID)
		ids[r.ID] = true
	}

	// Unresolvable root yields an empty list, not an error.
	records, err = engine.FindAllRelated(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDetectCyclesAcyclic(t *testing.T) {
	t.Parallel()

	s := seedGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"a", "c"}})
	engine := NewEngine(s, 0, nil)

	result, err := engine.PerformGraphTraversal(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, engine.DetectCycles(result))
}

func TestDetectCyclesThreeNodeLoop(t *testing.T) {
	t.Parallel()

	s := seedGraph(t, []string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	engine := NewEngine(s, 0, nil)

	result, err := engine.PerformGraphTraversal(context.Background(), "a")
	require.NoError(t, err)

	cycles := engine.DetectCycles(result)
	require.Len(t, cycles, 1)

	ids := append([]string{}, cycles[0]...)
	sort.Strings(ids)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestDetectCyclesIgnoresUnresolvedTargets(t *testing.T) {
	t.Parallel()

	// ghost never resolves, so the a -> ghost -> a loop is invisible to
	// the resolved-subgraph analysis.
	s := seedGraph(t, []string{"a"}, [][2]string{{"a", "ghost"}})
	engine := NewEngine(s, 0, nil)

	result, err := engine.PerformGraphTraversal(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, engine.DetectCycles(result))
}

func TestDetectCyclesNilResult(t *testing.T) {
	t.Parallel()

	engine := NewEngine(store.NewMemoryStore(), 0, nil)
	assert.Empty(t, engine.DetectCycles(nil))
}
