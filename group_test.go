package authgraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/authgraph"
)

func TestGroup_MakeGlobal_ConflictWithoutForce(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	users, err := cat.CreateGroup(ctx, "Users", true)
	require.NoError(t, err)
	other, err := cat.CreateGroup(ctx, "Other", false)
	require.NoError(t, err)

	err = other.MakeGlobal(ctx, false)
	require.Error(t, err)
	assert.True(t, authgraph.IsGlobalGroupConflict(err))

	isGlobal, err := users.IsGlobal(ctx)
	require.NoError(t, err)
	assert.True(t, isGlobal)
}

func TestGroup_MakeGlobal_ForceDemotesPrior(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	users, err := cat.CreateGroup(ctx, "Users", true)
	require.NoError(t, err)
	e, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)

	other, err := cat.CreateGroup(ctx, "Other", false)
	require.NoError(t, err)
	require.NoError(t, other.MakeGlobal(ctx, true))

	usersGlobal, err := users.IsGlobal(ctx)
	require.NoError(t, err)
	assert.False(t, usersGlobal)

	otherGlobal, err := other.IsGlobal(ctx)
	require.NoError(t, err)
	assert.True(t, otherGlobal)

	groups, err := e.Groups(ctx, nil)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, other.ID(), groups[0].ID())
}

func TestGroup_MakeOptional_SetsFalseAndRemovesAutoEdges(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	users, err := cat.CreateGroup(ctx, "Users", true)
	require.NoError(t, err)
	e, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)

	require.NoError(t, users.MakeOptional(ctx))

	isGlobal, err := users.IsGlobal(ctx)
	require.NoError(t, err)
	assert.False(t, isGlobal)

	groups, err := e.Groups(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestGroup_SetInherits_RejectsCycle(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	a, err := cat.CreateGroup(ctx, "A", false)
	require.NoError(t, err)
	b, err := cat.CreateGroup(ctx, "B", false)
	require.NoError(t, err)

	require.NoError(t, b.SetInherits(ctx, &a))

	err = a.SetInherits(ctx, &b)
	require.Error(t, err)
	assert.True(t, authgraph.IsCycleDetected(err))
}

func TestGroup_LinkAllPerms(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	g, err := cat.CreateGroup(ctx, "Editors", false)
	require.NoError(t, err)
	_, err = cat.CreatePerm(ctx, "select", nil)
	require.NoError(t, err)
	_, err = cat.CreatePerm(ctx, "update", nil)
	require.NoError(t, err)

	require.NoError(t, g.LinkAllPerms(ctx, true))

	linked, err := g.LinkedPerms(ctx)
	require.NoError(t, err)
	assert.Len(t, linked, 2)
	for _, lp := range linked {
		assert.True(t, lp.Allow)
	}
}
