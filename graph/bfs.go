package graph

import "context"

// BFSShortestPaths implements the BFS used by both MemoryStore and
// graph/postgres.Store: a multi-source frontier search
// bounded by maxLen, pruning edges via edgePred and intermediate nodes via
// nodePred (Rule R3), recording the first (shortest) path found to each
// node carrying targetLabel.
//
// This is shared, store-agnostic BFS logic: it only calls Neighbors, so any
// Store implementation gets ShortestPaths for free by embedding
// BFSShortestPaths in its own ShortestPaths method.
func BFSShortestPaths(ctx context.Context, s Store, from []NodeID, targetLabel Label, maxLen int, edgeTypes []EdgeType, edgePred EdgePredicate, nodePred NodePredicate) (map[NodeID]Path, error) {
	found := make(map[NodeID]Path)
	visited := make(map[NodeID]bool, len(from))

	type queued struct {
		id   NodeID
		path Path
	}

	var queue []queued
	for _, id := range from {
		if visited[id] {
			continue
		}
		visited[id] = true
		queue = append(queue, queued{id: id, path: nil})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if len(cur.path) >= maxLen {
			continue
		}

		neighbors, err := s.Neighbors(ctx, cur.id, edgeTypes, Out, nil)
		if err != nil {
			return nil, err
		}

		for _, nb := range neighbors {
			if edgePred != nil && !edgePred(nb.Edge) {
				continue
			}
			if visited[nb.Node.ID] {
				continue
			}

			newPath := make(Path, len(cur.path), len(cur.path)+1)
			copy(newPath, cur.path)
			newPath = append(newPath, PathStep{Edge: nb.Edge, Node: nb.Node})

			if nb.Node.Label == targetLabel {
				// Terminal node: not subject to nodePred (R3 applies to
				// intermediates only; R4's terminal constraints are
				// applied by the caller via edgePred/consumer logic).
				found[nb.Node.ID] = newPath
				visited[nb.Node.ID] = true
				continue
			}

			// Intermediate node: apply the scope filter (R3).
			if nodePred != nil && !nodePred(nb.Node) {
				continue
			}

			visited[nb.Node.ID] = true
			queue = append(queue, queued{id: nb.Node.ID, path: newPath})
		}
	}

	return found, nil
}
