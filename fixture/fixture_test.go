package fixture_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/authgraph"
	"github.com/ashgrove/authgraph/fixture"
	"github.com/ashgrove/authgraph/graph"
)

const scenarioYAML = `
scopes:
  - name: modpack
  - name: server
    subset_of: modpack
perms:
  - name: select
  - name: fly1
    scope: server
groups:
  - name: Users
    global: true
  - name: Editors
entities:
  - name: adam
    groups: [Editors]
abilities:
  - name: Fly
    scope: modpack
    supports: [fly1]
links:
  - subject: Users
    perm: select
    allow: true
  - subject: adam
    perm: fly1
    scope: server
    allow: true
`

func TestLoad_AppliesScenario(t *testing.T) {
	ctx := context.Background()
	cat := authgraph.NewCatalog(graph.NewMemoryStore())

	reg, err := fixture.Load(ctx, cat, []byte(scenarioYAML))
	require.NoError(t, err)

	assert.Len(t, reg.Scopes, 2)
	assert.Len(t, reg.Perms, 2)
	assert.Len(t, reg.Groups, 2)
	assert.Len(t, reg.Entities, 1)
	assert.Len(t, reg.Abilities, 1)

	adam := reg.Entities["adam"]
	groups, err := adam.Groups(ctx, nil)
	require.NoError(t, err)
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i], err = g.Name(ctx)
		require.NoError(t, err)
	}
	assert.ElementsMatch(t, []string{"Editors", "Users"}, names)

	r := authgraph.NewResolverFromCatalog(cat)
	ok, err := r.IsAllowed(ctx, adam.ID(), reg.Perms["select"], nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsAllowed(ctx, adam.ID(), reg.Perms["fly1"], &reg.Scopes["server"])
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoad_UnknownReferenceFails(t *testing.T) {
	ctx := context.Background()
	cat := authgraph.NewCatalog(graph.NewMemoryStore())

	_, err := fixture.Load(ctx, cat, []byte(`
perms:
  - name: select
    scope: nonexistent
`))
	require.Error(t, err)
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	ctx := context.Background()
	cat := authgraph.NewCatalog(graph.NewMemoryStore())

	_, err := fixture.Load(ctx, cat, []byte("not: [valid"))
	require.Error(t, err)
}
