package graph

import (
	"context"
	"fmt"
)

// Ancestors computes the set of nodes reachable from start by repeatedly
// following the single given edge type outward (e.g. SUBSET_OF or
// INHERITS), stopping when no further edge exists. It is the building
// block behind ScopeSet(S) (spec §4.7) and Group.Inherits walks: both are
// single-parent chains, so this is a simple walk rather than general BFS,
// but is written as a bounded traversal to tolerate a corrupt graph
// (accidental fan-out) without infinite-looping.
//
// Grounded on closure.go's computeTransitiveSatisfiers BFS-over-implied-by
// shape, simplified for the single-parent-edge case this module's Scope
// and Group hierarchies use.
func Ancestors(ctx context.Context, s Store, start NodeID, via EdgeType, maxDepth int) ([]NodeID, error) {
	var out []NodeID
	seen := map[NodeID]bool{start: true}
	cur := start

	for i := 0; i < maxDepth; i++ {
		nbrs, err := s.Neighbors(ctx, cur, []EdgeType{via}, Out, nil)
		if err != nil {
			return nil, err
		}
		if len(nbrs) == 0 {
			break
		}
		next := nbrs[0].Node.ID
		if seen[next] {
			return nil, fmt.Errorf("graph: cycle detected following %s from %s", via, start)
		}
		seen[next] = true
		out = append(out, next)
		cur = next
	}

	return out, nil
}

// WouldCycle reports whether adding an edge of type `via` from `from` to
// `to` would create a cycle, by checking whether `from` is already
// reachable from `to` via `via`. Used by Scope.SetSubsetOf and
// Group.SetInherits before the edge is written (spec I2/I6, errors.go
// CycleDetected), mirroring validate.go's three-color DFS intent but
// specialized to the single-parent-edge case: here a simple ancestor walk
// from the proposed parent suffices since each node has at most one
// outgoing `via` edge.
func WouldCycle(ctx context.Context, s Store, from, to NodeID, via EdgeType, maxDepth int) (bool, error) {
	if from == to {
		return true, nil
	}
	ancestors, err := Ancestors(ctx, s, to, via, maxDepth)
	if err != nil {
		return false, err
	}
	for _, a := range ancestors {
		if a == from {
			return true, nil
		}
	}
	return false, nil
}
