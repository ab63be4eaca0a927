package authgraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/authgraph"
)

func TestScope_Ancestors(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	modpack, err := cat.CreateScope(ctx, "modpack", nil)
	require.NoError(t, err)
	server, err := cat.CreateScope(ctx, "server", &modpack)
	require.NoError(t, err)

	ancestors, err := server.Ancestors(ctx)
	require.NoError(t, err)
	require.Len(t, ancestors, 1)
	assert.Equal(t, modpack.ID(), ancestors[0].ID())

	ancestors, err = modpack.Ancestors(ctx)
	require.NoError(t, err)
	assert.Empty(t, ancestors)
}

func TestScope_SetSubsetOf_RejectsCycle(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	modpack, err := cat.CreateScope(ctx, "modpack", nil)
	require.NoError(t, err)
	server, err := cat.CreateScope(ctx, "server", &modpack)
	require.NoError(t, err)

	err = modpack.SetSubsetOf(ctx, &server)
	require.Error(t, err)
	assert.True(t, authgraph.IsCycleDetected(err))
}

func TestPerm_IsScopeSupported(t *testing.T) {
	ctx := context.Background()
	cat := newCatalog(t)

	modpack, err := cat.CreateScope(ctx, "modpack", nil)
	require.NoError(t, err)
	server, err := cat.CreateScope(ctx, "server", &modpack)
	require.NoError(t, err)
	offScope, err := cat.CreateScope(ctx, "off_scope", nil)
	require.NoError(t, err)

	fly1, err := cat.CreatePerm(ctx, "fly1", &server)
	require.NoError(t, err)

	ok, err := fly1.IsScopeSupported(ctx, &server)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fly1.IsScopeSupported(ctx, &modpack)
	require.NoError(t, err)
	assert.True(t, ok, "server SUBSET_OF modpack, so server's ancestor closure reaches modpack")

	ok, err = fly1.IsScopeSupported(ctx, &offScope)
	require.NoError(t, err)
	assert.False(t, ok)

	unscoped, err := cat.CreatePerm(ctx, "select", nil)
	require.NoError(t, err)
	ok, err = unscoped.IsScopeSupported(ctx, &offScope)
	require.NoError(t, err)
	assert.True(t, ok, "an unscoped perm is always supported")
}
