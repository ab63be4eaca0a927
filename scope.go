package authgraph

import (
	"context"

	"github.com/ashgrove/authgraph/graph"
)

// Scope is a context node forming a DAG via SUBSET_OF (spec §4.4). Scopes
// can also host ALLOW/DENY edges directly to Perms — the mechanism by
// which a scope "injects" a permission during resolution (spec §4.7 R2).
type Scope struct {
	id  graph.NodeID
	cat *Catalog
}

// ID returns the Scope's node id.
func (s Scope) ID() graph.NodeID { return s.id }

// Name returns the Scope's name property.
func (s Scope) Name(ctx context.Context) (string, error) {
	n, err := s.cat.store.GetNode(ctx, s.id)
	if err != nil {
		return "", wrapStoreError(err)
	}
	name, _ := n.Props["name"].(string)
	return name, nil
}

// SubsetOf returns the parent Scope, if any.
func (s Scope) SubsetOf(ctx context.Context) (*Scope, error) {
	nbrs, err := s.cat.store.Neighbors(ctx, s.id, []graph.EdgeType{EdgeSubsetOf}, graph.Out, nil)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if len(nbrs) == 0 {
		return nil, nil
	}
	parent := Scope{id: nbrs[0].Node.ID, cat: s.cat}
	return &parent, nil
}

// SetSubsetOf replaces this Scope's SUBSET_OF parent. Setting it to a
// descendant (or itself) of this Scope would create a cycle and is
// rejected (spec I2).
func (s Scope) SetSubsetOf(ctx context.Context, parent *Scope) error {
	if parent != nil {
		cyclic, err := graph.WouldCycle(ctx, s.cat.store, s.id, parent.id, EdgeSubsetOf, maxPathLen)
		if err != nil {
			return wrapStoreError(err)
		}
		if cyclic {
			return newGraphError(ErrorCodeCycleDetected, "scope %s SUBSET_OF %s would create a cycle", s.id, parent.id)
		}
	}

	if err := s.cat.store.DeleteEdges(ctx, s.id, []graph.EdgeType{EdgeSubsetOf}, "", nil); err != nil {
		return wrapStoreError(err)
	}
	if parent == nil {
		return nil
	}
	if err := s.cat.store.CreateEdge(ctx, s.id, EdgeSubsetOf, parent.id, nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// Ancestors returns this Scope's SUBSET_OF ancestors, nearest first.
func (s Scope) Ancestors(ctx context.Context) ([]Scope, error) {
	ids, err := graph.Ancestors(ctx, s.cat.store, s.id, EdgeSubsetOf, maxPathLen)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	out := make([]Scope, len(ids))
	for i, id := range ids {
		out[i] = Scope{id: id, cat: s.cat}
	}
	return out, nil
}

// LinkPerm links this Scope directly to a Perm with a polarized edge
// (spec §4.4, §12 supplemented Scope.link_perm). Unlike Entity/Group links,
// a Scope-level link carries no further scope_id qualifier: the Scope's own
// id is the qualifier.
func (s Scope) LinkPerm(ctx context.Context, p Perm, allow bool) error {
	return linkPerm(ctx, s.cat, s.id, p.id, AnyScope, allow)
}

// ResetPerm removes this Scope's polarized link to p, if any.
func (s Scope) ResetPerm(ctx context.Context, p Perm) error {
	return resetPerm(ctx, s.cat, s.id, p.id, AnyScope)
}

// ResetAllPerms removes every polarized link from this Scope.
func (s Scope) ResetAllPerms(ctx context.Context) error {
	return resetAllPerms(ctx, s.cat, s.id)
}

// LinkedPerms returns every Perm this Scope links directly, with polarity.
func (s Scope) LinkedPerms(ctx context.Context) ([]LinkedPerm, error) {
	return linkedPerms(ctx, s.cat, s.id)
}

// scopeSet computes ScopeSet(S) = {S} ∪ ancestors(S) ∪ {"*"} (spec §4.7).
// Returns the node ids that qualify plus the string sentinel set used for
// matching scope_id edge properties.
func scopeSet(ctx context.Context, s Scope) (nodeIDs []graph.NodeID, scopeIDStrs map[string]bool, err error) {
	ancestors, err := s.Ancestors(ctx)
	if err != nil {
		return nil, nil, err
	}

	ids := []graph.NodeID{s.id}
	strs := map[string]bool{string(s.id): true, AnyScope: true}
	for _, a := range ancestors {
		ids = append(ids, a.id)
		strs[string(a.id)] = true
	}
	return ids, strs, nil
}

// isScopeSupported implements Perm/Ability.is_scope_supported (spec §4.5):
// true iff the object has no scope, or query is non-nil and the object's
// scope's SUBSET_OF* closure reaches query.
func isScopeSupported(ctx context.Context, cat *Catalog, objID graph.NodeID, query *Scope) (bool, *Scope, error) {
	nbrs, err := cat.store.Neighbors(ctx, objID, []graph.EdgeType{EdgeExistsIn}, graph.Out, nil)
	if err != nil {
		return false, nil, wrapStoreError(err)
	}
	if len(nbrs) == 0 {
		return true, nil, nil // unscoped: always supported
	}
	objScope := Scope{id: nbrs[0].Node.ID, cat: cat}
	if query == nil {
		return false, &objScope, nil
	}
	if objScope.id == query.id {
		return true, &objScope, nil
	}
	_, strs, err := scopeSet(ctx, objScope)
	if err != nil {
		return false, &objScope, err
	}
	return strs[string(query.id)], &objScope, nil
}
