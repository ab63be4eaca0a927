package authgraph

import (
	"context"

	"github.com/ashgrove/authgraph/graph"
)

// Resolver is the query surface of the system (spec §2 item 7, §4.7): it
// implements the shortest-path-with-scope-filter algorithm that decides
// is_allowed and allowed_perms. Resolver holds no state of its own beyond a
// Catalog reference — it never caches resolution results (spec Non-goals).
type Resolver struct {
	cat *Catalog
}

// NewResolver creates a Resolver over the given Store.
func NewResolver(store graph.Store) *Resolver {
	return &Resolver{cat: NewCatalog(store)}
}

// NewResolverFromCatalog creates a Resolver sharing an existing Catalog's
// Store.
func NewResolverFromCatalog(cat *Catalog) *Resolver {
	return &Resolver{cat: cat}
}

// subjectKind distinguishes an Entity subject from a Group subject, since
// spec §4.7's "Group-query specialization" paragraph changes allowed_perms'
// behavior when the subject is itself a Group.
type subjectKind int

const (
	subjectEntity subjectKind = iota
	subjectGroup
)

func (r *Resolver) subjectKindOf(ctx context.Context, subject graph.NodeID) (subjectKind, error) {
	n, err := r.cat.store.GetNode(ctx, subject)
	if err != nil {
		return 0, newGraphError(ErrorCodeNotFound, "subject %s not found", subject)
	}
	if n.Label == LabelGroup {
		return subjectGroup, nil
	}
	return subjectEntity, nil
}

// resolved is one resolver outcome: the shortest path found to a Perm and
// whether it terminates ALLOW.
type resolved struct {
	perm  Perm
	path  graph.Path
	allow bool
}

// resolve implements rules R1-R5 of spec §4.7 and returns, for every Perm
// reachable under the scope filter, its shortest path and resulting
// polarity.
func (r *Resolver) resolve(ctx context.Context, subject graph.NodeID, scope *Scope) (map[graph.NodeID]resolved, error) {
	frontier := []graph.NodeID{subject}

	var scopeIDStrs map[string]bool
	if scope != nil {
		ids, strs, err := scopeSet(ctx, *scope)
		if err != nil {
			return nil, err
		}
		scopeIDStrs = strs
		// Rule R2: inject every scope in ScopeSet(S) into the start
		// frontier so their direct ALLOW/DENY edges to Perms are usable.
		frontier = append(frontier, ids...)
	}

	edgePred := func(e graph.Edge) bool {
		if e.Type != EdgeAllow && e.Type != EdgeDeny {
			return true // membership/inheritance edges are unconstrained by scope
		}
		if scope == nil {
			return true
		}
		sid, _ := e.Props["scope_id"].(string)
		return sid == AnyScope || scopeIDStrs[sid]
	}

	nodePred := func(n graph.Node) bool {
		if scope == nil {
			return true
		}
		// Rule R3: intermediate nodes (Groups, reached via membership
		// edges) must either have no scope attachment or a scope within
		// ScopeSet(S).
		for nid := range nodeScopeCache(ctx, r.cat, n.ID) {
			return scopeIDStrs[nid]
		}
		return true
	}

	paths, err := r.cat.store.ShortestPaths(ctx, frontier, LabelPerm, maxPathLen, resolutionEdges, edgePred, nodePred)
	if err != nil {
		return nil, wrapStoreError(err)
	}

	out := make(map[graph.NodeID]resolved, len(paths))
	for permID, path := range paths {
		if len(path) == 0 {
			continue
		}
		last := path[len(path)-1].Edge
		out[permID] = resolved{
			perm:  Perm{id: permID, cat: r.cat},
			path:  path,
			allow: last.Type == EdgeAllow,
		}
	}
	return out, nil
}

// nodeScopeCache returns a single-entry set containing the node's attached
// scope id, if any, as a string — a small helper so nodePred above can use
// one shared shape whether or not a scope attachment exists.
func nodeScopeCache(ctx context.Context, cat *Catalog, id graph.NodeID) map[string]bool {
	nbrs, err := cat.store.Neighbors(ctx, id, []graph.EdgeType{EdgeExistsIn}, graph.Out, nil)
	if err != nil || len(nbrs) == 0 {
		return nil
	}
	return map[string]bool{string(nbrs[0].Node.ID): true}
}

// IsAllowed reports whether subject is allowed perm within scope (spec
// §4.7 is_allowed). True iff the shortest resolution path to perm
// terminates ALLOW.
func (r *Resolver) IsAllowed(ctx context.Context, subject graph.NodeID, perm Perm, scope *Scope) (bool, error) {
	results, err := r.resolve(ctx, subject, scope)
	if err != nil {
		return false, err
	}
	res, ok := results[perm.id]
	if !ok {
		return false, nil
	}
	return res.allow, nil
}

// AllowedPerms returns every Perm subject is allowed within scope (spec
// §4.7 allowed_perms). When subject is a Group, the group-query
// specialization (spec §4.7 final paragraph, §12 supplement) further
// excludes perms linked from other groups whose scope doesn't cover scope,
// and requires the perm itself be unscoped or scope-compatible with scope.
func (r *Resolver) AllowedPerms(ctx context.Context, subject graph.NodeID, scope *Scope) ([]Perm, error) {
	results, err := r.resolve(ctx, subject, scope)
	if err != nil {
		return nil, err
	}

	kind, err := r.subjectKindOf(ctx, subject)
	if err != nil {
		return nil, err
	}

	var out []Perm
	for permID, res := range results {
		if !res.allow {
			continue
		}
		if kind == subjectGroup {
			ok, err := r.groupSpecializationAllows(ctx, subject, permID, scope)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, Perm{id: permID, cat: r.cat})
	}
	return out, nil
}

// groupSpecializationAllows implements spec §4.7's "Group-query
// specialization" (§12 supplement, grounded on Group.get_allowed_perms):
// for a Group subject, a Perm is excluded if some *other* group links it
// with an ALLOW/DENY edge while that group's own scope doesn't cover the
// query scope, or if the perm's own scope is incompatible with the query
// scope (neither an ancestor nor a descendant of it).
func (r *Resolver) groupSpecializationAllows(ctx context.Context, subjectGroupID graph.NodeID, permID graph.NodeID, scope *Scope) (bool, error) {
	perm := Perm{id: permID, cat: r.cat}
	permScope, err := perm.Scope(ctx)
	if err != nil {
		return false, err
	}
	if permScope != nil && scope != nil {
		compatible, err := scopesCompatible(ctx, *permScope, *scope)
		if err != nil {
			return false, err
		}
		if !compatible {
			return false, nil
		}
	}

	linkers, err := r.cat.store.Neighbors(ctx, permID, []graph.EdgeType{EdgeAllow, EdgeDeny}, graph.In, nil)
	if err != nil {
		return false, wrapStoreError(err)
	}
	for _, nb := range linkers {
		if nb.Node.Label != LabelGroup || nb.Node.ID == subjectGroupID {
			continue
		}
		other := Group{id: nb.Node.ID, cat: r.cat}
		otherScope, err := other.Scope(ctx)
		if err != nil {
			return false, err
		}
		if otherScope == nil || scope == nil {
			continue
		}
		covers, err := scopeCoversS(ctx, *otherScope, *scope)
		if err != nil {
			return false, err
		}
		if !covers {
			return false, nil
		}
	}
	return true, nil
}

// scopeCoversS reports whether a's SUBSET_OF* closure reaches s (a covers
// s), matching Perm.IsScopeSupported's direction.
func scopeCoversS(ctx context.Context, a, s Scope) (bool, error) {
	if a.id == s.id {
		return true, nil
	}
	_, strs, err := scopeSet(ctx, a)
	if err != nil {
		return false, err
	}
	return strs[string(s.id)], nil
}

// scopesCompatible reports whether a and s are the same scope, or one is
// an ancestor of the other (spec §4.7 "covering or covered-by").
func scopesCompatible(ctx context.Context, a, s Scope) (bool, error) {
	if a.id == s.id {
		return true, nil
	}
	if ok, err := scopeCoversS(ctx, a, s); err != nil {
		return false, err
	} else if ok {
		return true, nil
	}
	return scopeCoversS(ctx, s, a)
}
