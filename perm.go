package authgraph

import (
	"context"

	"github.com/ashgrove/authgraph/graph"
)

// Perm is an atomic permission token (spec §4.5), optionally attached to a
// Scope via EXISTS_IN.
type Perm struct {
	id  graph.NodeID
	cat *Catalog
}

// ID returns the Perm's node id.
func (p Perm) ID() graph.NodeID { return p.id }

// Name returns the Perm's name property.
func (p Perm) Name(ctx context.Context) (string, error) {
	n, err := p.cat.store.GetNode(ctx, p.id)
	if err != nil {
		return "", wrapStoreError(err)
	}
	name, _ := n.Props["name"].(string)
	return name, nil
}

// Scope returns the Perm's attached Scope, if any.
func (p Perm) Scope(ctx context.Context) (*Scope, error) {
	_, scope, err := isScopeSupported(ctx, p.cat, p.id, nil)
	return scope, err
}

func (p Perm) setScope(ctx context.Context, scopeID graph.NodeID) error {
	if err := p.cat.store.DeleteEdges(ctx, p.id, []graph.EdgeType{EdgeExistsIn}, "", nil); err != nil {
		return wrapStoreError(err)
	}
	if err := p.cat.store.CreateEdge(ctx, p.id, EdgeExistsIn, scopeID, nil); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// IsScopeSupported reports whether this Perm may be used within the given
// query scope (spec §4.5): true if the Perm is unscoped, or if the Perm's
// own scope's SUBSET_OF* closure reaches the query scope.
func (p Perm) IsScopeSupported(ctx context.Context, query *Scope) (bool, error) {
	ok, _, err := isScopeSupported(ctx, p.cat, p.id, query)
	return ok, err
}

// requireScopeSupported returns a ScopeMismatch GraphError with a
// descriptive message (spec §12 supplement) when the Perm cannot be used
// in the given query scope.
func (p Perm) requireScopeSupported(ctx context.Context, query *Scope) error {
	ok, objScope, err := isScopeSupported(ctx, p.cat, p.id, query)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	permName, _ := p.Name(ctx)
	objScopeName := "?"
	if objScope != nil {
		if n, err := objScope.Name(ctx); err == nil {
			objScopeName = n
		}
	}
	queryName := "none"
	if query != nil {
		if n, err := query.Name(ctx); err == nil {
			queryName = n
		}
	}
	return newGraphError(ErrorCodeScopeMismatch, "perm %q is scoped to %q, which does not cover query scope %q", permName, objScopeName, queryName)
}
