package authgraph

import (
	"context"

	"github.com/ashgrove/authgraph/graph"
)

// Ability is a higher-level capability that, when activated with a
// concrete Perm, grants behavior to an Entity in a scope (spec §4.6).
type Ability struct {
	id  graph.NodeID
	cat *Catalog
}

// ID returns the Ability's node id.
func (a Ability) ID() graph.NodeID { return a.id }

// Name returns the Ability's name property.
func (a Ability) Name(ctx context.Context) (string, error) {
	n, err := a.cat.store.GetNode(ctx, a.id)
	if err != nil {
		return "", wrapStoreError(err)
	}
	name, _ := n.Props["name"].(string)
	return name, nil
}

// Scope returns the Ability's attached Scope, if any.
func (a Ability) Scope(ctx context.Context) (*Scope, error) {
	_, scope, err := isScopeSupported(ctx, a.cat, a.id, nil)
	return scope, err
}

func (a Ability) setScope(ctx context.Context, scopeID graph.NodeID) error {
	if err := a.cat.store.DeleteEdges(ctx, a.id, []graph.EdgeType{EdgeExistsIn}, "", nil); err != nil {
		return wrapStoreError(err)
	}
	if err := a.cat.store.CreateEdge(ctx, a.id, EdgeExistsIn, scopeID, nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// IsScopeSupported reports whether this Ability may be used within the
// given query scope: true if the Ability is unscoped, or if the Ability's
// own scope covers the query scope (it is the query scope or one of its
// SUBSET_OF ancestors).
func (a Ability) IsScopeSupported(ctx context.Context, query *Scope) (bool, error) {
	_, objScope, err := isScopeSupported(ctx, a.cat, a.id, nil)
	if err != nil {
		return false, err
	}
	if objScope == nil {
		return true, nil // unscoped: always supported
	}
	if query == nil {
		return false, nil
	}
	_, strs, err := scopeSet(ctx, *query)
	if err != nil {
		return false, err
	}
	return strs[string(objScope.id)], nil
}

// AddPermSupport records that p is a valid perm for this ability (SUPPORTS
// edge).
func (a Ability) AddPermSupport(ctx context.Context, p Perm) error {
	supported, err := a.Supports(ctx, p)
	if err != nil {
		return err
	}
	if supported {
		return nil
	}
	if err := a.cat.store.CreateEdge(ctx, a.id, EdgeSupports, p.id, nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// RemovePermSupport removes the SUPPORTS edge from this Ability to p, if
// any.
func (a Ability) RemovePermSupport(ctx context.Context, p Perm) error {
	if err := a.cat.store.DeleteEdges(ctx, a.id, []graph.EdgeType{EdgeSupports}, p.id, nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// RemoveAllSupportedPerms removes every SUPPORTS edge from this Ability.
func (a Ability) RemoveAllSupportedPerms(ctx context.Context) error {
	if err := a.cat.store.DeleteEdges(ctx, a.id, []graph.EdgeType{EdgeSupports}, "", nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// SupportedPerms returns every Perm this Ability supports.
func (a Ability) SupportedPerms(ctx context.Context) ([]Perm, error) {
	nbrs, err := a.cat.store.Neighbors(ctx, a.id, []graph.EdgeType{EdgeSupports}, graph.Out, nil)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	out := make([]Perm, len(nbrs))
	for i, n := range nbrs {
		out[i] = Perm{id: n.Node.ID, cat: a.cat}
	}
	return out, nil
}

// Supports reports whether p is among this Ability's supported perms.
func (a Ability) Supports(ctx context.Context, p Perm) (bool, error) {
	perms, err := a.SupportedPerms(ctx)
	if err != nil {
		return false, err
	}
	for _, sp := range perms {
		if sp.id == p.id {
			return true, nil
		}
	}
	return false, nil
}

// AvailableAbilitiesForScope returns every Ability whose scope covers s
// (spec §4.6 get_available_for_scope; §9/§12 Open Question (b) — the
// source implementation returns only the first match due to an early
// return inside its result loop, which this implementation does not
// reproduce).
func (c *Catalog) AvailableAbilitiesForScope(ctx context.Context, s Scope) ([]Ability, error) {
	nodes, err := c.store.FindAll(ctx, graph.NodeFilter{Label: LabelAbility})
	if err != nil {
		return nil, wrapStoreError(err)
	}
	var out []Ability
	for _, n := range nodes {
		a := Ability{id: n.ID, cat: c}
		ok, err := a.IsScopeSupported(ctx, &s)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// AbilityPerm records one activation: an Entity has activated Ability with
// Perm within an optional Scope (spec §3, §4.6).
type AbilityPerm struct {
	id  graph.NodeID
	cat *Catalog

	EntityID  graph.NodeID
	AbilityID graph.NodeID
	PermID    graph.NodeID
	ScopeID   *graph.NodeID // nil means unscoped (scope_id sentinel "*")
}

// ID returns the AbilityPerm's node id.
func (ap AbilityPerm) ID() graph.NodeID { return ap.id }
