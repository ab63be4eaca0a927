package authgraph

import (
	"context"

	"github.com/ashgrove/authgraph/graph"
)

// Catalog manages the five entity kinds and the AbilityPerm bookkeeping
// record plus their structural edges (spec §2 item 2). It is the
// constructor surface; once created, handles (Entity, Group, Perm, Scope,
// Ability, AbilityPerm) carry their own mutators and queries.
type Catalog struct {
	store graph.Store
}

// NewCatalog creates a Catalog backed by the given Store.
func NewCatalog(store graph.Store) *Catalog {
	return &Catalog{store: store}
}

// Store returns the underlying graph.Store, for callers that need direct
// access (migration, fixtures, Resolver construction).
func (c *Catalog) Store() graph.Store { return c.store }

// CreateEntity creates a new Entity and immediately performs the
// auto-membership step Save performs (spec §4.2 Save): it joins the
// current global group, if any.
func (c *Catalog) CreateEntity(ctx context.Context, name string) (Entity, error) {
	id, err := c.store.CreateNode(ctx, LabelEntity, props("name", name))
	if err != nil {
		return Entity{}, wrapStoreError(err)
	}
	e := Entity{id: id, cat: c}
	if err := e.Save(ctx); err != nil {
		return Entity{}, err
	}
	return e, nil
}

// CreateGroup creates a new Group. isGlobal elects it as the global group
// immediately (equivalent to MakeGlobal(force=false) right after creation);
// pass false and call MakeGlobal explicitly if you need force semantics.
func (c *Catalog) CreateGroup(ctx context.Context, name string, isGlobal bool) (Group, error) {
	id, err := c.store.CreateNode(ctx, LabelGroup, props("name", name, "is_global", false))
	if err != nil {
		return Group{}, wrapStoreError(err)
	}
	g := Group{id: id, cat: c}
	if isGlobal {
		if err := g.MakeGlobal(ctx, false); err != nil {
			return Group{}, err
		}
	}
	return g, nil
}

// CreatePerm creates a new Perm, optionally attached to a Scope via
// EXISTS_IN.
func (c *Catalog) CreatePerm(ctx context.Context, name string, scope *Scope) (Perm, error) {
	id, err := c.store.CreateNode(ctx, LabelPerm, props("name", name))
	if err != nil {
		return Perm{}, wrapStoreError(err)
	}
	p := Perm{id: id, cat: c}
	if scope != nil {
		if err := p.setScope(ctx, scope.id); err != nil {
			return Perm{}, err
		}
	}
	return p, nil
}

// CreateScope creates a new Scope, optionally as a subset of a parent
// Scope via SUBSET_OF.
func (c *Catalog) CreateScope(ctx context.Context, name string, parent *Scope) (Scope, error) {
	id, err := c.store.CreateNode(ctx, LabelScope, props("name", name))
	if err != nil {
		return Scope{}, wrapStoreError(err)
	}
	s := Scope{id: id, cat: c}
	if parent != nil {
		if err := s.SetSubsetOf(ctx, parent); err != nil {
			return Scope{}, err
		}
	}
	return s, nil
}

// CreateAbility creates a new Ability, optionally attached to a Scope.
func (c *Catalog) CreateAbility(ctx context.Context, name string, scope *Scope) (Ability, error) {
	id, err := c.store.CreateNode(ctx, LabelAbility, props("name", name))
	if err != nil {
		return Ability{}, wrapStoreError(err)
	}
	a := Ability{id: id, cat: c}
	if scope != nil {
		if err := a.setScope(ctx, scope.id); err != nil {
			return Ability{}, err
		}
	}
	return a, nil
}

// GetEntity looks up an existing Entity by id.
func (c *Catalog) GetEntity(ctx context.Context, id graph.NodeID) (Entity, error) {
	if _, err := c.mustNode(ctx, id, LabelEntity); err != nil {
		return Entity{}, err
	}
	return Entity{id: id, cat: c}, nil
}

// GetGroup looks up an existing Group by id.
func (c *Catalog) GetGroup(ctx context.Context, id graph.NodeID) (Group, error) {
	if _, err := c.mustNode(ctx, id, LabelGroup); err != nil {
		return Group{}, err
	}
	return Group{id: id, cat: c}, nil
}

// GetScope looks up an existing Scope by id.
func (c *Catalog) GetScope(ctx context.Context, id graph.NodeID) (Scope, error) {
	if _, err := c.mustNode(ctx, id, LabelScope); err != nil {
		return Scope{}, err
	}
	return Scope{id: id, cat: c}, nil
}

// GetPerm looks up an existing Perm by id.
func (c *Catalog) GetPerm(ctx context.Context, id graph.NodeID) (Perm, error) {
	if _, err := c.mustNode(ctx, id, LabelPerm); err != nil {
		return Perm{}, err
	}
	return Perm{id: id, cat: c}, nil
}

// GetAbility looks up an existing Ability by id.
func (c *Catalog) GetAbility(ctx context.Context, id graph.NodeID) (Ability, error) {
	if _, err := c.mustNode(ctx, id, LabelAbility); err != nil {
		return Ability{}, err
	}
	return Ability{id: id, cat: c}, nil
}

// FindEntityByName returns the first Entity with the given name.
func (c *Catalog) FindEntityByName(ctx context.Context, name string) (Entity, bool, error) {
	n, ok, err := c.store.FindOne(ctx, graph.NodeFilter{Label: LabelEntity, Props: props("name", name)})
	if err != nil {
		return Entity{}, false, wrapStoreError(err)
	}
	if !ok {
		return Entity{}, false, nil
	}
	return Entity{id: n.ID, cat: c}, true, nil
}

// FindGroupByName returns the first Group with the given name.
func (c *Catalog) FindGroupByName(ctx context.Context, name string) (Group, bool, error) {
	n, ok, err := c.store.FindOne(ctx, graph.NodeFilter{Label: LabelGroup, Props: props("name", name)})
	if err != nil {
		return Group{}, false, wrapStoreError(err)
	}
	if !ok {
		return Group{}, false, nil
	}
	return Group{id: n.ID, cat: c}, true, nil
}

// FindPermByName returns the first Perm with the given name.
func (c *Catalog) FindPermByName(ctx context.Context, name string) (Perm, bool, error) {
	n, ok, err := c.store.FindOne(ctx, graph.NodeFilter{Label: LabelPerm, Props: props("name", name)})
	if err != nil {
		return Perm{}, false, wrapStoreError(err)
	}
	if !ok {
		return Perm{}, false, nil
	}
	return Perm{id: n.ID, cat: c}, true, nil
}

// FindScopeByName returns the first Scope with the given name.
func (c *Catalog) FindScopeByName(ctx context.Context, name string) (Scope, bool, error) {
	n, ok, err := c.store.FindOne(ctx, graph.NodeFilter{Label: LabelScope, Props: props("name", name)})
	if err != nil {
		return Scope{}, false, wrapStoreError(err)
	}
	if !ok {
		return Scope{}, false, nil
	}
	return Scope{id: n.ID, cat: c}, true, nil
}

func (c *Catalog) mustNode(ctx context.Context, id graph.NodeID, label graph.Label) (graph.Node, error) {
	n, err := c.store.GetNode(ctx, id)
	if err != nil {
		return graph.Node{}, newGraphError(ErrorCodeNotFound, "%s %s not found", label, id)
	}
	if n.Label != label {
		return graph.Node{}, newGraphError(ErrorCodeNotFound, "%s: node %s is a %s, not %s", label, id, n.Label, label)
	}
	return n, nil
}
