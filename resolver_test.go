package authgraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/authgraph"
)

func TestResolver_IsAllowed_UnknownPermDeniesRatherThanErrors(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	e, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)
	p, err := cat.CreatePerm(ctx, "select", nil)
	require.NoError(t, err)

	r := authgraph.NewResolverFromCatalog(cat)
	ok, err := r.IsAllowed(ctx, e.ID(), p, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolver_ShortestPathPrecedence_DenyCloserThanAllow(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	// Editors ALLOW update, Contributors (inherits Editors) DENY update: a
	// Contributors member is two hops from the DENY (IS_IN, DENY) and three
	// from the ALLOW (IS_IN, INHERITS, ALLOW), so DENY wins (R4/R5: shortest
	// path decides polarity).
	editors, err := cat.CreateGroup(ctx, "Editors", false)
	require.NoError(t, err)
	contributors, err := cat.CreateGroup(ctx, "Contributors", false)
	require.NoError(t, err)
	require.NoError(t, contributors.SetInherits(ctx, &editors))

	update, err := cat.CreatePerm(ctx, "update", nil)
	require.NoError(t, err)
	require.NoError(t, editors.LinkPerm(ctx, update, true))
	require.NoError(t, contributors.LinkPerm(ctx, update, false))

	dude, err := cat.CreateEntity(ctx, "dude")
	require.NoError(t, err)
	require.NoError(t, dude.AddToGroup(ctx, contributors))

	r := authgraph.NewResolverFromCatalog(cat)
	ok, err := r.IsAllowed(ctx, dude.ID(), update, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolver_ScopeInjection_DirectScopeLink(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	modpack, err := cat.CreateScope(ctx, "modpack", nil)
	require.NoError(t, err)
	fly2, err := cat.CreatePerm(ctx, "fly2", nil)
	require.NoError(t, err)
	require.NoError(t, modpack.LinkPerm(ctx, fly2, true))

	e, err := cat.CreateEntity(ctx, "guest")
	require.NoError(t, err)

	r := authgraph.NewResolverFromCatalog(cat)

	// Without the scope, the scope-injected ALLOW edge is never reached.
	ok, err := r.IsAllowed(ctx, e.ID(), fly2, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.IsAllowed(ctx, e.ID(), fly2, &modpack)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolver_IntermediateNodeScopeFilter(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	modpack, err := cat.CreateScope(ctx, "modpack", nil)
	require.NoError(t, err)
	offScope, err := cat.CreateScope(ctx, "off_scope", nil)
	require.NoError(t, err)

	// Contributors is scoped to off_scope: resolving within modpack must not
	// traverse through it (R3).
	contributors, err := cat.CreateGroup(ctx, "Contributors", false)
	require.NoError(t, err)
	require.NoError(t, contributors.SetScope(ctx, offScope))

	create, err := cat.CreatePerm(ctx, "create", nil)
	require.NoError(t, err)
	require.NoError(t, contributors.LinkPerm(ctx, create, true))

	dude, err := cat.CreateEntity(ctx, "dude")
	require.NoError(t, err)
	require.NoError(t, dude.AddToGroup(ctx, contributors))

	r := authgraph.NewResolverFromCatalog(cat)

	ok, err := r.IsAllowed(ctx, dude.ID(), create, &modpack)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.IsAllowed(ctx, dude.ID(), create, &offScope)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolver_IsAllowed_MatchesAllowedPerms(t *testing.T) {
	// P7: is_allowed(e,p,s) == (p in allowed_perms(e,s)).
	ctx := context.Background()
	sc := buildScenario(t)
	r := authgraph.NewResolverFromCatalog(sc.cat)

	perms, err := r.AllowedPerms(ctx, sc.adam.ID(), &sc.modpack)
	require.NoError(t, err)
	inSet := map[authgraph.Perm]bool{}
	for _, p := range perms {
		inSet[p] = true
	}

	for _, p := range []authgraph.Perm{sc.selectP, sc.create, sc.update, sc.del, sc.fly1, sc.fly2} {
		ok, err := r.IsAllowed(ctx, sc.adam.ID(), p, &sc.modpack)
		require.NoError(t, err)
		assert.Equal(t, inSet[p], ok)
	}
}
