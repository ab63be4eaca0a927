package authgraph

import (
	"context"

	"github.com/ashgrove/authgraph/graph"
)

// globalGroup finds the Group currently marked is_global, if any (spec I1:
// at most one exists).
func (c *Catalog) globalGroup(ctx context.Context) (*Group, error) {
	n, ok, err := c.store.FindOne(ctx, graph.NodeFilter{
		Label: LabelGroup,
		Props: graph.Props{"is_global": true},
	})
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if !ok {
		return nil, nil
	}
	g := Group{id: n.ID, cat: c}
	return &g, nil
}

// GlobalGroup returns the currently elected global group, if any.
func (c *Catalog) GlobalGroup(ctx context.Context) (*Group, error) {
	return c.globalGroup(ctx)
}

// EnsureGlobalGroup returns the current global group, creating and electing
// one named name if none exists yet (spec I1).
func (c *Catalog) EnsureGlobalGroup(ctx context.Context, name string) (Group, error) {
	if g, err := c.globalGroup(ctx); err != nil {
		return Group{}, err
	} else if g != nil {
		return *g, nil
	}

	g, err := c.CreateGroup(ctx, name, false)
	if err != nil {
		return Group{}, err
	}
	if err := g.MakeGlobal(ctx, false); err != nil {
		return Group{}, err
	}
	return g, nil
}

// allEntities returns every Entity node in the catalog.
func (c *Catalog) allEntities(ctx context.Context) ([]Entity, error) {
	nodes, err := c.store.FindAll(ctx, graph.NodeFilter{Label: LabelEntity})
	if err != nil {
		return nil, wrapStoreError(err)
	}
	out := make([]Entity, len(nodes))
	for i, n := range nodes {
		out[i] = Entity{id: n.ID, cat: c}
	}
	return out, nil
}

// reindexAutoMembership removes every IS_IN_AUTO edge from entityID and, if
// global is non-nil, adds a fresh one to it (spec §4.2 Save, §4.4 the
// global-group invariant's bookkeeping).
func reindexAutoMembership(ctx context.Context, cat *Catalog, entityID graph.NodeID, global *Group) error {
	if err := cat.store.DeleteEdges(ctx, entityID, []graph.EdgeType{EdgeIsInAuto}, "", nil); err != nil {
		return wrapStoreError(err)
	}
	if global == nil {
		return nil
	}
	if err := cat.store.CreateEdge(ctx, entityID, EdgeIsInAuto, global.id, nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}
