package authgraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/authgraph"
)

func TestEntity_AddRemoveGroup(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	e, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)
	g, err := cat.CreateGroup(ctx, "Editors", false)
	require.NoError(t, err)

	require.NoError(t, e.AddToGroup(ctx, g))
	// idempotent (P5)
	require.NoError(t, e.AddToGroup(ctx, g))

	groups, err := e.Groups(ctx, nil)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, g.ID(), groups[0].ID())

	require.NoError(t, e.RemoveFromGroup(ctx, g))
	groups, err = e.Groups(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestEntity_Groups_AlwaysIncludesGlobal(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	users, err := cat.CreateGroup(ctx, "Users", true)
	require.NoError(t, err)
	e, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)

	editors, err := cat.CreateGroup(ctx, "Editors", false)
	require.NoError(t, err)
	require.NoError(t, e.AddToGroup(ctx, editors))

	groups, err := e.Groups(ctx, nil)
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, g := range groups {
		ids[string(g.ID())] = true
	}
	assert.True(t, ids[string(users.ID())])
	assert.True(t, ids[string(editors.ID())])
}

func TestEntity_Save_Idempotent(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	_, err := cat.CreateGroup(ctx, "Users", true)
	require.NoError(t, err)
	e, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)

	require.NoError(t, e.Save(ctx))
	require.NoError(t, e.Save(ctx))

	groups, err := e.Groups(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestEntity_LinkPerm_RequiresScopeSupport(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	e, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)
	server, err := cat.CreateScope(ctx, "server", nil)
	require.NoError(t, err)
	offScope, err := cat.CreateScope(ctx, "off_scope", nil)
	require.NoError(t, err)
	fly1, err := cat.CreatePerm(ctx, "fly1", &server)
	require.NoError(t, err)

	err = e.LinkPerm(ctx, fly1, &offScope, true)
	require.Error(t, err)
	assert.True(t, authgraph.IsScopeMismatch(err))

	require.NoError(t, e.LinkPerm(ctx, fly1, &server, true))
}

func TestEntity_LinkPerm_ResetPerm_Inverse(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	e, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)
	p, err := cat.CreatePerm(ctx, "select", nil)
	require.NoError(t, err)

	require.NoError(t, e.LinkPerm(ctx, p, nil, true))
	linked, err := e.AllLinkedPerms(ctx)
	require.NoError(t, err)
	require.Len(t, linked, 1)

	require.NoError(t, e.ResetPerm(ctx, p, nil))
	linked, err = e.AllLinkedPerms(ctx)
	require.NoError(t, err)
	assert.Empty(t, linked)
}

func TestEntity_ActivateAbility_RequiresSupport(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	e, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)
	modpack, err := cat.CreateScope(ctx, "modpack", nil)
	require.NoError(t, err)
	server, err := cat.CreateScope(ctx, "server", &modpack)
	require.NoError(t, err)
	fly1, err := cat.CreatePerm(ctx, "fly1", &server)
	require.NoError(t, err)
	fly2, err := cat.CreatePerm(ctx, "fly2", &modpack)
	require.NoError(t, err)
	create, err := cat.CreatePerm(ctx, "create", nil)
	require.NoError(t, err)

	fly, err := cat.CreateAbility(ctx, "Fly", &modpack)
	require.NoError(t, err)
	require.NoError(t, fly.AddPermSupport(ctx, fly1))
	require.NoError(t, fly.AddPermSupport(ctx, fly2))

	_, err = e.ActivateAbility(ctx, fly, create, &server)
	require.Error(t, err)
	assert.True(t, authgraph.IsUnsupportedPerm(err))

	ap, err := e.ActivateAbility(ctx, fly, fly1, &server)
	require.NoError(t, err)
	assert.Equal(t, fly1.ID(), ap.PermID)

	// Re-activating with the same (ability, scope) key replaces the record.
	ap2, err := e.ActivateAbility(ctx, fly, fly1, &server)
	require.NoError(t, err)
	all, err := e.ActivatedAbilities(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ap2.ID(), all[0].ID())
	assert.NotEqual(t, ap.ID(), ap2.ID())
}

func TestEntity_ResetAbility(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	e, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)
	modpack, err := cat.CreateScope(ctx, "modpack", nil)
	require.NoError(t, err)
	fly2, err := cat.CreatePerm(ctx, "fly2", &modpack)
	require.NoError(t, err)
	fly, err := cat.CreateAbility(ctx, "Fly", &modpack)
	require.NoError(t, err)
	require.NoError(t, fly.AddPermSupport(ctx, fly2))

	_, err = e.ActivateAbility(ctx, fly, fly2, &modpack)
	require.NoError(t, err)

	require.NoError(t, e.ResetAbility(ctx, fly, &modpack))
	all, err := e.ActivatedAbilities(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}
