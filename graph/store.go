// Package graph defines the labeled-node, typed-edge store contract that
// authgraph's resolution algorithm is built against, plus an in-memory
// implementation. A PostgreSQL-backed implementation lives in
// graph/postgres.
package graph

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a node lookup fails.
var ErrNotFound = errors.New("graph: node not found")

// NodeID identifies a node within a Store. IDs are opaque and assigned by
// the Store on CreateNode; callers must not assume a format or ordering.
type NodeID string

// Label tags a node with its kind. authgraph uses a closed set (Entity,
// Group, Perm, Scope, Ability, AbilityPerm) but the Store itself is
// label-agnostic.
type Label string

// EdgeType tags a directed edge with its kind (IS_IN, ALLOW, SUBSET_OF, ...).
type EdgeType string

// Props is a bag of node or edge properties. Values are expected to be
// comparable (strings, bools, ints) since they participate in equality
// filters.
type Props map[string]any

// Node is a labeled record with properties.
type Node struct {
	ID    NodeID
	Label Label
	Props Props
}

// Edge is a directed, typed, labeled-property arc between two nodes.
type Edge struct {
	From  NodeID
	Type  EdgeType
	To    NodeID
	Props Props
}

// Direction constrains edge traversal direction relative to a node.
type Direction int

const (
	// Out traverses edges where the node is the From endpoint.
	Out Direction = iota
	// In traverses edges where the node is the To endpoint.
	In
	// Both traverses edges in either direction.
	Both
)

// NodeFilter selects nodes by label and exact property equality. A nil or
// empty Props matches any properties. Only keys present in Props are
// checked; other properties on the node are ignored.
type NodeFilter struct {
	Label Label
	Props Props
}

// EdgeFilter narrows neighbor/path traversal to a set of edge types and an
// optional property filter applied to the edge being traversed.
type EdgeFilter struct {
	Types []EdgeType
	Props Props
}

// Neighbor pairs a traversed edge with the node it led to.
type Neighbor struct {
	Edge Edge
	Node Node
}

// PathStep is one hop of a resolved path: the edge traversed and the node
// arrived at.
type PathStep struct {
	Edge Edge
	Node Node
}

// Path is an ordered sequence of hops starting from one of the search
// frontier's nodes. Path[len(Path)-1] is the terminal node.
type Path []PathStep

// NodePredicate is evaluated against every intermediate node on a candidate
// path (Rule R3's scope filter). Returning false prunes the path.
type NodePredicate func(Node) bool

// EdgePredicate is evaluated against every edge considered during a path
// search. Returning false prunes that edge from consideration.
type EdgePredicate func(Edge) bool

// Store is the graph persistence contract authgraph's Catalog and Resolver
// are built against (spec §4.1). Implementations must make every mutator
// atomic: a reader must never observe a half-applied edge set.
type Store interface {
	CreateNode(ctx context.Context, label Label, props Props) (NodeID, error)
	DeleteNode(ctx context.Context, id NodeID) error
	GetNode(ctx context.Context, id NodeID) (Node, error)
	FindOne(ctx context.Context, filter NodeFilter) (Node, bool, error)
	FindAll(ctx context.Context, filter NodeFilter) ([]Node, error)

	CreateEdge(ctx context.Context, from NodeID, typ EdgeType, to NodeID, props Props) error
	// DeleteEdges removes every edge matching the given endpoints/type/prop
	// filter. Any of from, types, to may be left zero-valued to mean
	// "unconstrained"; propFilter may be nil.
	DeleteEdges(ctx context.Context, from NodeID, types []EdgeType, to NodeID, propFilter Props) error

	// Neighbors returns the nodes reachable in one hop via the given edge
	// types and direction, optionally constrained by an edge property
	// filter.
	Neighbors(ctx context.Context, id NodeID, types []EdgeType, dir Direction, propFilter Props) ([]Neighbor, error)

	// ShortestPaths performs a breadth-first search from every node in
	// `from` simultaneously and returns, for each reachable node with the
	// given target label, the shortest path (by hop count) to it, subject
	// to maxLen, the allowed edge types, an edge predicate, and a node
	// predicate applied to every intermediate (non-terminal) node. Where
	// several paths to the same target tie for shortest, an arbitrary one
	// of them is returned.
	ShortestPaths(ctx context.Context, from []NodeID, targetLabel Label, maxLen int, edgeTypes []EdgeType, edgePred EdgePredicate, nodePred NodePredicate) (map[NodeID]Path, error)

	// Reachable returns every node reachable from `from` via the given edge
	// types. If transitive is false, only direct (one-hop) neighbors are
	// returned.
	Reachable(ctx context.Context, from NodeID, types []EdgeType, transitive bool) ([]Node, error)
}

// PropUpdater is an optional capability a Store may implement to update a
// single node property in place, without reassigning the node's id. Both
// MemoryStore and graph/postgres implement it.
type PropUpdater interface {
	SetNodeProp(ctx context.Context, id NodeID, key string, value any) error
}

func fmtNotFound(id NodeID) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
