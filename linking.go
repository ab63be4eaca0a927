package authgraph

import (
	"context"

	"github.com/ashgrove/authgraph/graph"
)

// LinkedPerm pairs a Perm with the polarity (allow/deny) and scope
// qualifier of one ALLOW/DENY edge pointing at it.
type LinkedPerm struct {
	Perm    Perm
	Allow   bool
	ScopeID string // the edge's scope_id property: a node id string or AnyScope
}

// linkPerm implements the shared ALLOW/DENY-edge surface used by Entity,
// Group, and Scope (spec §4.2/§4.3/§4.4, I4 polarity exclusivity). scopeID
// is the scope_id edge property: AnyScope ("*") or a Scope node id string.
// Re-linking first resets any existing polarized edge sharing the same
// (from, to, scope_id) triple, then inserts the new one (I4).
func linkPerm(ctx context.Context, cat *Catalog, from, to graph.NodeID, scopeID string, allow bool) error {
	if err := resetPerm(ctx, cat, from, to, scopeID); err != nil {
		return err
	}
	typ := EdgeAllow
	if !allow {
		typ = EdgeDeny
	}
	if err := cat.store.CreateEdge(ctx, from, typ, to, props("scope_id", scopeID)); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// resetPerm removes any ALLOW/DENY edge from `from` to `to` whose scope_id
// matches exactly.
func resetPerm(ctx context.Context, cat *Catalog, from, to graph.NodeID, scopeID string) error {
	if err := cat.store.DeleteEdges(ctx, from, []graph.EdgeType{EdgeAllow, EdgeDeny}, to, props("scope_id", scopeID)); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// resetAllPermsInScope removes every ALLOW/DENY edge from `from` whose
// scope_id matches exactly, regardless of target perm.
func resetAllPermsInScope(ctx context.Context, cat *Catalog, from graph.NodeID, scopeID string) error {
	if err := cat.store.DeleteEdges(ctx, from, []graph.EdgeType{EdgeAllow, EdgeDeny}, "", props("scope_id", scopeID)); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// resetAllPerms removes every ALLOW/DENY edge from `from`, in any scope.
func resetAllPerms(ctx context.Context, cat *Catalog, from graph.NodeID) error {
	if err := cat.store.DeleteEdges(ctx, from, []graph.EdgeType{EdgeAllow, EdgeDeny}, "", nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// linkedPerms returns every perm linked directly from `from`, with
// polarity and scope qualifier.
func linkedPerms(ctx context.Context, cat *Catalog, from graph.NodeID) ([]LinkedPerm, error) {
	allow, err := cat.store.Neighbors(ctx, from, []graph.EdgeType{EdgeAllow}, graph.Out, nil)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	deny, err := cat.store.Neighbors(ctx, from, []graph.EdgeType{EdgeDeny}, graph.Out, nil)
	if err != nil {
		return nil, wrapStoreError(err)
	}

	out := make([]LinkedPerm, 0, len(allow)+len(deny))
	for _, n := range allow {
		scopeID, _ := n.Edge.Props["scope_id"].(string)
		out = append(out, LinkedPerm{Perm: Perm{id: n.Node.ID, cat: cat}, Allow: true, ScopeID: scopeID})
	}
	for _, n := range deny {
		scopeID, _ := n.Edge.Props["scope_id"].(string)
		out = append(out, LinkedPerm{Perm: Perm{id: n.Node.ID, cat: cat}, Allow: false, ScopeID: scopeID})
	}
	return out, nil
}

// linkedPermsInScope filters linkedPerms to an exact scope_id match.
func linkedPermsInScope(ctx context.Context, cat *Catalog, from graph.NodeID, scopeID string) ([]LinkedPerm, error) {
	all, err := linkedPerms(ctx, cat, from)
	if err != nil {
		return nil, err
	}
	var out []LinkedPerm
	for _, lp := range all {
		if lp.ScopeID == scopeID {
			out = append(out, lp)
		}
	}
	return out, nil
}

// scopeIDFor converts an optional Scope into the scope_id edge-property
// string used by linkPerm/resetPerm (AnyScope when nil).
func scopeIDFor(s *Scope) string {
	if s == nil {
		return AnyScope
	}
	return string(s.id)
}
