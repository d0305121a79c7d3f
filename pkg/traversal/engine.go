// Package traversal walks the directed relationship graph from a root
// identifier, tolerating cycles, and reports the reachable records in a
// deterministic discovery order.
package traversal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/watchgraph/chronicle/pkg/store"
	"github.com/watchgraph/chronicle/pkg/types"
)

// DefaultMaxNodes bounds a single traversal on untrusted graphs.
const DefaultMaxNodes = 10000

// ErrGraphTooLarge is returned when a traversal visits more distinct
// identifiers than the configured ceiling allows.
var ErrGraphTooLarge = errors.New("graph too large")

// Engine walks relationship graphs through an injected store. It is
// stateless between calls: every traversal allocates its own queue,
// visited set, and result, so concurrent calls are independent.
type Engine struct {
	store    store.RelationshipStore
	maxNodes int
	logger   *slog.Logger
}

// NewEngine creates a traversal engine. maxNodes <= 0 selects
// DefaultMaxNodes.
func NewEngine(s store.RelationshipStore, maxNodes int, logger *slog.Logger) *Engine {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    s,
		maxNodes: maxNodes,
		logger:   logger,
	}
}

// PerformGraphTraversal explores the graph breadth-first from rootID
// using an explicit queue, never recursion, so arbitrarily deep chains
// cannot exhaust the stack. Each identifier is enqueued and expanded at
// most once, which guarantees termination on cyclic graphs. A record
// the store cannot find is excluded silently: it is marked visited but
// contributes no node and its edges are not expanded. Any other store
// error aborts the walk and propagates unchanged.
func (e *Engine) PerformGraphTraversal(ctx context.Context, rootID string) (*types.TraversalResult, error) {
	result := &types.TraversalResult{
		RootID:    rootID,
		Nodes:     make(map[string]*types.Record),
		Adjacency: make(map[string][]string),
	}

	visited := make(map[string]struct{})
	queued := map[string]struct{}{rootID: {}}
	queue := []string{rootID}
	cycleKeys := make(map[string]struct{})

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if _, done := result.Nodes[id]; done {
			continue
		}

		if len(visited) >= e.maxNodes {
			return nil, fmt.Errorf("%w: traversal from %s exceeded %d nodes", ErrGraphTooLarge, rootID, e.maxNodes)
		}

		rec, err := e.store.ResolveRecord(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				visited[id] = struct{}{}
				e.logger.Debug("skipping unresolvable record", "id", id, "root", rootID)
				continue
			}
			return nil, err
		}

		result.Nodes[id] = rec
		result.VisitedOrder = append(result.VisitedOrder, id)
		visited[id] = struct{}{}

		edges, err := e.store.OutgoingEdges(ctx, id)
		if err != nil {
			return nil, err
		}

		targets := make([]string, 0, len(edges))
		for _, edge := range edges {
			targets = append(targets, edge.TargetID)
		}
		result.Adjacency[id] = targets

		for _, target := range targets {
			if _, seen := visited[target]; seen {
				// Back-reference into already-expanded territory. If
				// the target can reach the current node through the
				// adjacency walked so far, the chain is a cycle.
				if chain, ok := findChain(result.Adjacency, target, id); ok {
					addCycle(&result.Cycles, cycleKeys, chain)
				}
				continue
			}
			if _, pending := queued[target]; pending {
				continue
			}
			queued[target] = struct{}{}
			queue = append(queue, target)
		}
	}

	return result, nil
}

// FindAllRelated returns every record transitively reachable from
// rootID, in discovery order. A root that fails to resolve yields an
// empty list, not an error.
func (e *Engine) FindAllRelated(ctx context.Context, rootID string) ([]*types.Record, error) {
	result, err := e.PerformGraphTraversal(ctx, rootID)
	if err != nil {
		return nil, err
	}

	records := make([]*types.Record, 0, len(result.Nodes))
	for _, id := range result.VisitedOrder {
		records = append(records, result.Nodes[id])
	}
	return records, nil
}

// DetectCycles re-analyzes the adjacency captured by a traversal with a
// depth-first walk over the already-resolved subgraph. Edges leading to
// identifiers absent from result.Nodes are ignored. Every edge pointing
// into the active path reports the chain from the path ancestor to the
// current node inclusive; cycles are deduplicated by identifier set, not
// walk order.
func (e *Engine) DetectCycles(result *types.TraversalResult) []types.Cycle {
	if result == nil || len(result.Nodes) == 0 {
		return nil
	}

	const (
		white = 0 // unvisited
		gray  = 1 // on the active path
		black = 2 // fully explored
	)

	state := make(map[string]int, len(result.Nodes))
	cycleKeys := make(map[string]struct{})
	var cycles []types.Cycle

	// resolvedTargets filters adjacency down to the resolved subgraph.
	resolvedTargets := func(id string) []string {
		all := result.Adjacency[id]
		targets := make([]string, 0, len(all))
		for _, t := range all {
			if _, ok := result.Nodes[t]; ok {
				targets = append(targets, t)
			}
		}
		return targets
	}

	type frame struct {
		id      string
		targets []string
		next    int
	}

	for _, start := range result.VisitedOrder {
		if state[start] != white {
			continue
		}

		stack := []frame{{id: start, targets: resolvedTargets(start)}}
		state[start] = gray
		path := []string{start}
		pathIndex := map[string]int{start: 0}

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next < len(f.targets) {
				target := f.targets[f.next]
				f.next++

				if idx, onPath := pathIndex[target]; onPath {
					chain := make(types.Cycle, len(path)-idx)
					copy(chain, path[idx:])
					addCycle(&cycles, cycleKeys, chain)
					continue
				}
				if state[target] != white {
					continue
				}
				state[target] = gray
				pathIndex[target] = len(path)
				path = append(path, target)
				stack = append(stack, frame{id: target, targets: resolvedTargets(target)})
				continue
			}

			state[f.id] = black
			delete(pathIndex, f.id)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}

	return cycles
}

// findChain walks the captured adjacency breadth-first from one node to
// another and returns the inclusive identifier chain when a path exists.
func findChain(adjacency map[string][]string, from, to string) (types.Cycle, bool) {
	if from == to {
		return types.Cycle{from}, true
	}

	parent := map[string]string{from: ""}
	queue := []string{from}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		for _, target := range adjacency[id] {
			if _, seen := parent[target]; seen {
				continue
			}
			parent[target] = id
			if target == to {
				chain := types.Cycle{to}
				for p := id; p != ""; p = parent[p] {
					chain = append(types.Cycle{p}, chain...)
				}
				return chain, true
			}
			queue = append(queue, target)
		}
	}

	return nil, false
}

// addCycle appends chain unless a cycle over the same identifier set was
// already recorded.
func addCycle(cycles *[]types.Cycle, keys map[string]struct{}, chain types.Cycle) {
	key := cycleKey(chain)
	if _, dup := keys[key]; dup {
		return
	}
	keys[key] = struct{}{}
	*cycles = append(*cycles, chain)
}

// cycleKey builds an order-independent key from a cycle's identifiers.
func cycleKey(chain types.Cycle) string {
	ids := make([]string, len(chain))
	copy(ids, chain)
	sort.Strings(ids)
	return strings.Join(ids, "\x00")
}
