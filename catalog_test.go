package authgraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/authgraph"
	"github.com/ashgrove/authgraph/graph"
)

func newCatalog(t *testing.T) *authgraph.Catalog {
	t.Helper()
	return authgraph.NewCatalog(graph.NewMemoryStore())
}

func TestCatalog_CreateEntity(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	e, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)

	name, err := e.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "adam", name)
}

func TestCatalog_CreateEntity_JoinsExistingGlobalGroup(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	users, err := cat.CreateGroup(ctx, "Users", true)
	require.NoError(t, err)

	e, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)

	groups, err := e.Groups(ctx, nil)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, users.ID(), groups[0].ID())
}

func TestCatalog_FindByName(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	_, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)
	_, err = cat.CreateGroup(ctx, "Users", false)
	require.NoError(t, err)
	_, err = cat.CreatePerm(ctx, "select", nil)
	require.NoError(t, err)
	_, err = cat.CreateScope(ctx, "modpack", nil)
	require.NoError(t, err)

	if _, ok, err := cat.FindEntityByName(ctx, "adam"); err != nil || !ok {
		t.Fatalf("expected to find entity adam: ok=%v err=%v", ok, err)
	}
	if _, ok, err := cat.FindGroupByName(ctx, "Users"); err != nil || !ok {
		t.Fatalf("expected to find group Users: ok=%v err=%v", ok, err)
	}
	if _, ok, err := cat.FindPermByName(ctx, "select"); err != nil || !ok {
		t.Fatalf("expected to find perm select: ok=%v err=%v", ok, err)
	}
	if _, ok, err := cat.FindScopeByName(ctx, "modpack"); err != nil || !ok {
		t.Fatalf("expected to find scope modpack: ok=%v err=%v", ok, err)
	}

	_, ok, err := cat.FindEntityByName(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalog_GetEntity_WrongLabel(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	g, err := cat.CreateGroup(ctx, "Users", false)
	require.NoError(t, err)

	_, err = cat.GetEntity(ctx, g.ID())
	require.Error(t, err)
	assert.True(t, authgraph.IsNotFound(err))
}
