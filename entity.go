package authgraph

import (
	"context"

	"github.com/ashgrove/authgraph/graph"
)

// Entity is an authorization subject (spec §3, §4.2). User-defined
// subtypes are an optional "subtype" property, not a distinct node label
// (spec §9 "Dynamic labels").
type Entity struct {
	id  graph.NodeID
	cat *Catalog
}

// ID returns the Entity's node id.
func (e Entity) ID() graph.NodeID { return e.id }

// Name returns the Entity's name property.
func (e Entity) Name(ctx context.Context) (string, error) {
	n, err := e.cat.store.GetNode(ctx, e.id)
	if err != nil {
		return "", wrapStoreError(err)
	}
	name, _ := n.Props["name"].(string)
	return name, nil
}

// Delete removes the Entity and all incident edges (spec §3 Lifecycle).
func (e Entity) Delete(ctx context.Context) error {
	if err := e.cat.store.DeleteNode(ctx, e.id); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// Groups returns this Entity's direct (IS_IN) group memberships. IS_IN_AUTO
// edges are excluded; the returned sequence always concludes with the
// current global group (spec §4.2 get_groups). If scope is non-nil, the
// result is restricted to groups whose EXISTS_IN/SUBSET_OF* closure
// reaches scope.
func (e Entity) Groups(ctx context.Context, scope *Scope) ([]Group, error) {
	nbrs, err := e.cat.store.Neighbors(ctx, e.id, []graph.EdgeType{EdgeIsIn}, graph.Out, nil)
	if err != nil {
		return nil, wrapStoreError(err)
	}

	var out []Group
	seen := map[graph.NodeID]bool{}
	for _, n := range nbrs {
		g := Group{id: n.Node.ID, cat: e.cat}
		if scope != nil {
			ok, _, err := isScopeSupported(ctx, e.cat, g.id, scope)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, g)
		seen[g.id] = true
	}

	global, err := e.cat.globalGroup(ctx)
	if err != nil {
		return nil, err
	}
	if global != nil && !seen[global.id] {
		out = append(out, *global)
	}
	return out, nil
}

// AddToGroup establishes an IS_IN edge to g, idempotently (spec P5).
func (e Entity) AddToGroup(ctx context.Context, g Group) error {
	existing, err := e.cat.store.Neighbors(ctx, e.id, []graph.EdgeType{EdgeIsIn}, graph.Out, nil)
	if err != nil {
		return wrapStoreError(err)
	}
	for _, n := range existing {
		if n.Node.ID == g.id {
			return nil
		}
	}
	if err := e.cat.store.CreateEdge(ctx, e.id, EdgeIsIn, g.id, nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// RemoveFromGroup removes the IS_IN edge to g, if any. IS_IN_AUTO is
// untouched.
func (e Entity) RemoveFromGroup(ctx context.Context, g Group) error {
	if err := e.cat.store.DeleteEdges(ctx, e.id, []graph.EdgeType{EdgeIsIn}, g.id, nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// RemoveFromAllGroups removes every IS_IN edge from this Entity. IS_IN_AUTO
// is untouched.
func (e Entity) RemoveFromAllGroups(ctx context.Context) error {
	if err := e.cat.store.DeleteEdges(ctx, e.id, []graph.EdgeType{EdgeIsIn}, "", nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// Save re-establishes this Entity's auto-membership (spec §4.2 Save):
// every IS_IN_AUTO edge from this Entity is removed, then one is added to
// the current global group, if any. Idempotent (spec P5).
func (e Entity) Save(ctx context.Context) error {
	g, err := e.cat.globalGroup(ctx)
	if err != nil {
		return err
	}
	return reindexAutoMembership(ctx, e.cat, e.id, g)
}

// LinkPerm links this Entity directly to a Perm with a polarized edge,
// qualified by an optional scope (spec §4.2). Linking first requires the
// Perm support the given scope (ScopeMismatch on failure), then resets any
// existing polarized edge sharing the same scope_id (I4), then inserts the
// new edge.
func (e Entity) LinkPerm(ctx context.Context, p Perm, scope *Scope, allow bool) error {
	if err := p.requireScopeSupported(ctx, scope); err != nil {
		return err
	}
	return linkPerm(ctx, e.cat, e.id, p.id, scopeIDFor(scope), allow)
}

// ResetPerm removes this Entity's polarized link to p within the given
// scope qualifier, if any.
func (e Entity) ResetPerm(ctx context.Context, p Perm, scope *Scope) error {
	return resetPerm(ctx, e.cat, e.id, p.id, scopeIDFor(scope))
}

// ResetAllPermsInScope removes every polarized link from this Entity
// within the given scope qualifier.
func (e Entity) ResetAllPermsInScope(ctx context.Context, scope *Scope) error {
	return resetAllPermsInScope(ctx, e.cat, e.id, scopeIDFor(scope))
}

// ResetAllPerms removes every polarized link from this Entity, in any
// scope.
func (e Entity) ResetAllPerms(ctx context.Context) error {
	return resetAllPerms(ctx, e.cat, e.id)
}

// LinkedPerms returns every perm this Entity links directly in the given
// scope qualifier.
func (e Entity) LinkedPerms(ctx context.Context, scope *Scope) ([]LinkedPerm, error) {
	return linkedPermsInScope(ctx, e.cat, e.id, scopeIDFor(scope))
}

// AllLinkedPerms returns every perm this Entity links directly, across all
// scopes.
func (e Entity) AllLinkedPerms(ctx context.Context) ([]LinkedPerm, error) {
	return linkedPerms(ctx, e.cat, e.id)
}

// ActivateAbility creates or updates this Entity's AbilityPerm keyed by
// (entity, ability, scope) with the given perm (spec §4.2, §4.6). Fails
// with UnsupportedPerm if the ability doesn't support p, or ScopeMismatch
// if the ability's own scope doesn't cover scope.
func (e Entity) ActivateAbility(ctx context.Context, a Ability, p Perm, scope *Scope) (AbilityPerm, error) {
	supports, err := a.Supports(ctx, p)
	if err != nil {
		return AbilityPerm{}, err
	}
	if !supports {
		abilityName, _ := a.Name(ctx)
		permName, _ := p.Name(ctx)
		return AbilityPerm{}, newGraphError(ErrorCodeUnsupportedPerm, "ability %q does not support perm %q", abilityName, permName)
	}
	if ok, err := a.IsScopeSupported(ctx, scope); err != nil {
		return AbilityPerm{}, err
	} else if !ok {
		return AbilityPerm{}, newGraphError(ErrorCodeScopeMismatch, "ability does not cover the requested scope")
	}

	scopeID := scopeIDFor(scope)

	// Identity is (entity_id, ability_id, scope_id): find and replace any
	// existing AbilityPerm with this key.
	if existing, ok, err := e.findAbilityPerm(ctx, a.id, scopeID); err != nil {
		return AbilityPerm{}, err
	} else if ok {
		if err := existing.delete(ctx); err != nil {
			return AbilityPerm{}, err
		}
	}

	id, err := e.cat.store.CreateNode(ctx, LabelAbilityPerm, nil)
	if err != nil {
		return AbilityPerm{}, wrapStoreError(err)
	}
	ap := AbilityPerm{id: id, cat: e.cat, EntityID: e.id, AbilityID: a.id, PermID: p.id}
	if scope != nil {
		sid := scope.id
		ap.ScopeID = &sid
	}

	if err := e.cat.store.CreateEdge(ctx, e.id, EdgeEnabled, id, nil); err != nil {
		return AbilityPerm{}, wrapStoreError(err)
	}
	if err := e.cat.store.CreateEdge(ctx, id, EdgeRelatedTo, a.id, nil); err != nil {
		return AbilityPerm{}, wrapStoreError(err)
	}
	if err := e.cat.store.CreateEdge(ctx, id, EdgeActivated, p.id, nil); err != nil {
		return AbilityPerm{}, wrapStoreError(err)
	}
	if scope != nil {
		if err := e.cat.store.CreateEdge(ctx, id, EdgeWorksIn, scope.id, nil); err != nil {
			return AbilityPerm{}, wrapStoreError(err)
		}
	}

	return ap, nil
}

func (e Entity) findAbilityPerm(ctx context.Context, abilityID graph.NodeID, scopeID string) (AbilityPerm, bool, error) {
	all, err := e.ActivatedAbilities(ctx, nil)
	if err != nil {
		return AbilityPerm{}, false, err
	}
	for _, ap := range all {
		if ap.AbilityID != abilityID {
			continue
		}
		if scopeIDOf(ap) == scopeID {
			return ap, true, nil
		}
	}
	return AbilityPerm{}, false, nil
}

func scopeIDOf(ap AbilityPerm) string {
	if ap.ScopeID == nil {
		return AnyScope
	}
	return string(*ap.ScopeID)
}

func (ap AbilityPerm) delete(ctx context.Context) error {
	if err := ap.cat.store.DeleteNode(ctx, ap.id); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// ActivatedAbilities returns every AbilityPerm recording an activation by
// this Entity, optionally filtered to one scope (spec §12 supplemented
// get_all_activated_abilities/get_activated_abilities).
func (e Entity) ActivatedAbilities(ctx context.Context, scope *Scope) ([]AbilityPerm, error) {
	nbrs, err := e.cat.store.Neighbors(ctx, e.id, []graph.EdgeType{EdgeEnabled}, graph.Out, nil)
	if err != nil {
		return nil, wrapStoreError(err)
	}

	var out []AbilityPerm
	for _, n := range nbrs {
		ap, err := e.cat.hydrateAbilityPerm(ctx, n.Node.ID)
		if err != nil {
			return nil, err
		}
		if scope != nil {
			want := scope.id
			if ap.ScopeID == nil || *ap.ScopeID != want {
				continue
			}
		}
		out = append(out, ap)
	}
	return out, nil
}

// ResetAbility removes the AbilityPerm for (a, scope) on this Entity, if
// any.
func (e Entity) ResetAbility(ctx context.Context, a Ability, scope *Scope) error {
	ap, ok, err := e.findAbilityPerm(ctx, a.id, scopeIDFor(scope))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return ap.delete(ctx)
}

// ResetAbilityInAllScopes removes every AbilityPerm for Ability a on this
// Entity, across all scopes (spec §12 supplement).
func (e Entity) ResetAbilityInAllScopes(ctx context.Context, a Ability) error {
	all, err := e.ActivatedAbilities(ctx, nil)
	if err != nil {
		return err
	}
	for _, ap := range all {
		if ap.AbilityID == a.id {
			if err := ap.delete(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResetAllAbilities removes every AbilityPerm for this Entity (spec §12
// supplement).
func (e Entity) ResetAllAbilities(ctx context.Context) error {
	all, err := e.ActivatedAbilities(ctx, nil)
	if err != nil {
		return err
	}
	for _, ap := range all {
		if err := ap.delete(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) hydrateAbilityPerm(ctx context.Context, id graph.NodeID) (AbilityPerm, error) {
	ap := AbilityPerm{id: id, cat: c}

	if related, err := c.store.Neighbors(ctx, id, []graph.EdgeType{EdgeRelatedTo}, graph.Out, nil); err != nil {
		return AbilityPerm{}, wrapStoreError(err)
	} else if len(related) > 0 {
		ap.AbilityID = related[0].Node.ID
	}
	if activated, err := c.store.Neighbors(ctx, id, []graph.EdgeType{EdgeActivated}, graph.Out, nil); err != nil {
		return AbilityPerm{}, wrapStoreError(err)
	} else if len(activated) > 0 {
		ap.PermID = activated[0].Node.ID
	}
	if worksIn, err := c.store.Neighbors(ctx, id, []graph.EdgeType{EdgeWorksIn}, graph.Out, nil); err != nil {
		return AbilityPerm{}, wrapStoreError(err)
	} else if len(worksIn) > 0 {
		sid := worksIn[0].Node.ID
		ap.ScopeID = &sid
	}
	if enabled, err := c.store.Neighbors(ctx, id, []graph.EdgeType{EdgeEnabled}, graph.In, nil); err != nil {
		return AbilityPerm{}, wrapStoreError(err)
	} else if len(enabled) > 0 {
		ap.EntityID = enabled[0].Node.ID
	}

	return ap, nil
}
