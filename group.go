package authgraph

import (
	"context"

	"github.com/ashgrove/authgraph/graph"
)

// Group is a named collection of entities (spec §3, §4.3). It may inherit
// from another Group, may be scoped, and at most one Group is global at any
// time (spec I1).
type Group struct {
	id  graph.NodeID
	cat *Catalog
}

// ID returns the Group's node id.
func (g Group) ID() graph.NodeID { return g.id }

// Name returns the Group's name property.
func (g Group) Name(ctx context.Context) (string, error) {
	n, err := g.cat.store.GetNode(ctx, g.id)
	if err != nil {
		return "", wrapStoreError(err)
	}
	name, _ := n.Props["name"].(string)
	return name, nil
}

// IsGlobal reports the Group's is_global property.
func (g Group) IsGlobal(ctx context.Context) (bool, error) {
	n, err := g.cat.store.GetNode(ctx, g.id)
	if err != nil {
		return false, wrapStoreError(err)
	}
	v, _ := n.Props["is_global"].(bool)
	return v, nil
}

// Scope returns the Group's attached Scope, if any.
func (g Group) Scope(ctx context.Context) (*Scope, error) {
	_, scope, err := isScopeSupported(ctx, g.cat, g.id, nil)
	return scope, err
}

func (g Group) setScope(ctx context.Context, scopeID graph.NodeID) error {
	if err := g.cat.store.DeleteEdges(ctx, g.id, []graph.EdgeType{EdgeExistsIn}, "", nil); err != nil {
		return wrapStoreError(err)
	}
	if err := g.cat.store.CreateEdge(ctx, g.id, EdgeExistsIn, scopeID, nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// SetScope attaches this Group to a Scope via EXISTS_IN.
func (g Group) SetScope(ctx context.Context, s Scope) error {
	return g.setScope(ctx, s.id)
}

// Inherits returns the Group this Group inherits from, if any.
func (g Group) Inherits(ctx context.Context) (*Group, error) {
	nbrs, err := g.cat.store.Neighbors(ctx, g.id, []graph.EdgeType{EdgeInherits}, graph.Out, nil)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if len(nbrs) == 0 {
		return nil, nil
	}
	parent := Group{id: nbrs[0].Node.ID, cat: g.cat}
	return &parent, nil
}

// SetInherits replaces this Group's INHERITS parent. A cycle is rejected
// (spec I6/P3).
func (g Group) SetInherits(ctx context.Context, parent *Group) error {
	if parent != nil {
		cyclic, err := graph.WouldCycle(ctx, g.cat.store, g.id, parent.id, EdgeInherits, maxPathLen)
		if err != nil {
			return wrapStoreError(err)
		}
		if cyclic {
			return newGraphError(ErrorCodeCycleDetected, "group %s INHERITS %s would create a cycle", g.id, parent.id)
		}
	}

	if err := g.cat.store.DeleteEdges(ctx, g.id, []graph.EdgeType{EdgeInherits}, "", nil); err != nil {
		return wrapStoreError(err)
	}
	if parent == nil {
		return nil
	}
	if err := g.cat.store.CreateEdge(ctx, g.id, EdgeInherits, parent.id, nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// MakeGlobal elects this Group as the global group (spec §4.3). If another
// global group exists, fails with GlobalGroupConflict unless force is
// true, in which case the prior global group is demoted to optional first.
// On success, every existing Entity gains an IS_IN_AUTO edge to this Group.
func (g Group) MakeGlobal(ctx context.Context, force bool) error {
	cur, err := g.cat.globalGroup(ctx)
	if err != nil {
		return err
	}
	if cur != nil && cur.id != g.id {
		if !force {
			return newGraphError(ErrorCodeGlobalGroupConflict, "group %s is already global; pass force to replace it", cur.id)
		}
		if err := cur.MakeOptional(ctx); err != nil {
			return err
		}
	}

	return g.setGlobalFlag(ctx, true)
}

// setGlobalFlag sets is_global in place and, when electing a new global
// group, gives every existing Entity an IS_IN_AUTO edge to it (spec §4.3
// MakeGlobal).
func (g Group) setGlobalFlag(ctx context.Context, value bool) error {
	if err := g.setIsGlobal(ctx, value); err != nil {
		return err
	}
	if value {
		entities, err := g.cat.allEntities(ctx)
		if err != nil {
			return err
		}
		for _, e := range entities {
			if err := reindexAutoMembership(ctx, g.cat, e.id, &g); err != nil {
				return err
			}
		}
	}
	return nil
}

// setIsGlobal mutates the is_global property in place, keeping the node's
// id, via Catalog.setNodeProp.
func (g Group) setIsGlobal(ctx context.Context, value bool) error {
	return g.cat.setNodeProp(ctx, g.id, "is_global", value)
}

// MakeOptional clears is_global and deletes this Group's IS_IN_AUTO edges
// (spec §4.3, §9/§12 Open Question (a): the source sets the flag back to
// true, a confirmed bug; this implementation sets it to false).
func (g Group) MakeOptional(ctx context.Context) error {
	if err := g.setIsGlobal(ctx, false); err != nil {
		return err
	}
	entities, err := g.cat.allEntities(ctx)
	if err != nil {
		return err
	}
	for _, e := range entities {
		if err := g.cat.store.DeleteEdges(ctx, e.id, []graph.EdgeType{EdgeIsInAuto}, g.id, nil); err != nil {
			return wrapStoreError(err)
		}
	}
	return nil
}

// LinkPerm links this Group directly to a Perm with a polarized edge.
// Group-level links carry no further scope qualifier (spec §4.3: "without
// per-edge scope_id"), so the edge's scope_id is always AnyScope.
func (g Group) LinkPerm(ctx context.Context, p Perm, allow bool) error {
	return linkPerm(ctx, g.cat, g.id, p.id, AnyScope, allow)
}

// ResetPerm removes this Group's polarized link to p, if any.
func (g Group) ResetPerm(ctx context.Context, p Perm) error {
	return resetPerm(ctx, g.cat, g.id, p.id, AnyScope)
}

// ResetAllPerms removes every polarized link from this Group.
func (g Group) ResetAllPerms(ctx context.Context) error {
	return resetAllPerms(ctx, g.cat, g.id)
}

// LinkedPerms returns every Perm this Group links directly.
func (g Group) LinkedPerms(ctx context.Context) ([]LinkedPerm, error) {
	return linkedPerms(ctx, g.cat, g.id)
}

// LinkAllPerms resets all of this Group's prior links, then attaches a
// polarized edge to every existing Perm (spec §4.3 link_all_perms).
func (g Group) LinkAllPerms(ctx context.Context, allow bool) error {
	if err := g.ResetAllPerms(ctx); err != nil {
		return err
	}
	perms, err := g.cat.store.FindAll(ctx, graph.NodeFilter{Label: LabelPerm})
	if err != nil {
		return wrapStoreError(err)
	}
	for _, n := range perms {
		if err := g.LinkPerm(ctx, Perm{id: n.ID, cat: g.cat}, allow); err != nil {
			return err
		}
	}
	return nil
}

// setNodeProp updates a single property on a node in place. graph.Store
// doesn't expose a property-patch verb directly (node identity and
// properties travel together through CreateNode), so Catalog uses the
// optional graph.PropUpdater interface and fails with a StoreError when
// the Store does not implement it.
func (c *Catalog) setNodeProp(ctx context.Context, id graph.NodeID, key string, value any) error {
	updater, ok := c.store.(graph.PropUpdater)
	if ok {
		return wrapStoreErrorIfAny(updater.SetNodeProp(ctx, id, key, value))
	}
	// Fallback for Store implementations that don't support in-place
	// property updates: not expected in practice, since both MemoryStore
	// and graph/postgres implement PropUpdater.
	return newGraphError(ErrorCodeStoreError, "store does not support in-place property updates")
}

func wrapStoreErrorIfAny(err error) error {
	if err == nil {
		return nil
	}
	return wrapStoreError(err)
}
