package authgraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/authgraph"
	"github.com/ashgrove/authgraph/graph"
)

// permNames resolves a slice of Perms to their names for order-independent
// comparison against the expected sets.
func permNames(t *testing.T, ctx context.Context, perms []authgraph.Perm) []string {
	t.Helper()
	out := make([]string, len(perms))
	for i, p := range perms {
		name, err := p.Name(ctx)
		require.NoError(t, err)
		out[i] = name
	}
	return out
}

// buildScenario wires up the worked example described in the system
// overview's end-to-end scenarios: three scopes, six perms, five groups,
// five entities, and one ability.
type scenario struct {
	cat *authgraph.Catalog

	modpack, server, offScope authgraph.Scope
	selectP, create, update, del,
	fly1, fly2 authgraph.Perm
	users, editors, moderators, contributors, admins authgraph.Group
	adam, ivan, shadow, dude, guest                  authgraph.Entity
	fly                                               authgraph.Ability
}

func buildScenario(t *testing.T) scenario {
	t.Helper()
	ctx := context.Background()
	cat := authgraph.NewCatalog(graph.NewMemoryStore())

	modpack, err := cat.CreateScope(ctx, "modpack", nil)
	require.NoError(t, err)
	server, err := cat.CreateScope(ctx, "server", &modpack)
	require.NoError(t, err)
	offScope, err := cat.CreateScope(ctx, "off_scope", nil)
	require.NoError(t, err)

	selectP, err := cat.CreatePerm(ctx, "select", nil)
	require.NoError(t, err)
	create, err := cat.CreatePerm(ctx, "create", nil)
	require.NoError(t, err)
	update, err := cat.CreatePerm(ctx, "update", nil)
	require.NoError(t, err)
	del, err := cat.CreatePerm(ctx, "delete", nil)
	require.NoError(t, err)
	fly1, err := cat.CreatePerm(ctx, "fly1", &server)
	require.NoError(t, err)
	fly2, err := cat.CreatePerm(ctx, "fly2", &modpack)
	require.NoError(t, err)

	users, err := cat.CreateGroup(ctx, "Users", true)
	require.NoError(t, err)
	editors, err := cat.CreateGroup(ctx, "Editors", false)
	require.NoError(t, err)
	moderators, err := cat.CreateGroup(ctx, "Moderators", false)
	require.NoError(t, err)
	require.NoError(t, moderators.SetInherits(ctx, &editors))
	contributors, err := cat.CreateGroup(ctx, "Contributors", false)
	require.NoError(t, err)
	require.NoError(t, contributors.SetInherits(ctx, &moderators))
	require.NoError(t, contributors.SetScope(ctx, server))
	admins, err := cat.CreateGroup(ctx, "Admins", false)
	require.NoError(t, err)
	require.NoError(t, admins.SetInherits(ctx, &moderators))

	require.NoError(t, users.LinkPerm(ctx, selectP, true))
	require.NoError(t, editors.LinkPerm(ctx, update, true))
	require.NoError(t, contributors.LinkPerm(ctx, update, false))
	require.NoError(t, moderators.LinkPerm(ctx, create, true))
	require.NoError(t, admins.LinkPerm(ctx, del, true))

	adam, err := cat.CreateEntity(ctx, "adam")
	require.NoError(t, err)
	require.NoError(t, adam.AddToGroup(ctx, admins))
	ivan, err := cat.CreateEntity(ctx, "ivan")
	require.NoError(t, err)
	require.NoError(t, ivan.AddToGroup(ctx, moderators))
	shadow, err := cat.CreateEntity(ctx, "shadow")
	require.NoError(t, err)
	require.NoError(t, shadow.AddToGroup(ctx, editors))
	dude, err := cat.CreateEntity(ctx, "dude")
	require.NoError(t, err)
	require.NoError(t, dude.AddToGroup(ctx, contributors))
	guest, err := cat.CreateEntity(ctx, "guest")
	require.NoError(t, err)

	require.NoError(t, adam.LinkPerm(ctx, update, nil, false))

	fly, err := cat.CreateAbility(ctx, "Fly", &modpack)
	require.NoError(t, err)
	require.NoError(t, fly.AddPermSupport(ctx, fly1))
	require.NoError(t, fly.AddPermSupport(ctx, fly2))

	require.NoError(t, guest.LinkPerm(ctx, fly1, &server, true))
	require.NoError(t, dude.LinkPerm(ctx, fly2, &modpack, true))
	require.NoError(t, adam.LinkPerm(ctx, fly1, &server, true))
	require.NoError(t, ivan.LinkPerm(ctx, fly2, &server, true))

	_, err = adam.ActivateAbility(ctx, fly, fly1, &server)
	require.NoError(t, err)
	_, err = ivan.ActivateAbility(ctx, fly, fly2, &modpack)
	require.NoError(t, err)

	return scenario{
		cat:          cat,
		modpack:      modpack,
		server:       server,
		offScope:     offScope,
		selectP:      selectP,
		create:       create,
		update:       update,
		del:          del,
		fly1:         fly1,
		fly2:         fly2,
		users:        users,
		editors:      editors,
		moderators:   moderators,
		contributors: contributors,
		admins:       admins,
		adam:         adam,
		ivan:         ivan,
		shadow:       shadow,
		dude:         dude,
		guest:        guest,
		fly:          fly,
	}
}

func TestScenario_AllowedPerms_Adam_NoScope(t *testing.T) {
	ctx := context.Background()
	sc := buildScenario(t)
	r := authgraph.NewResolverFromCatalog(sc.cat)

	perms, err := r.AllowedPerms(ctx, sc.adam.ID(), nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"select", "create", "delete", "fly1"}, permNames(t, ctx, perms))
}

func TestScenario_AllowedPerms_Adam_Modpack(t *testing.T) {
	ctx := context.Background()
	sc := buildScenario(t)
	r := authgraph.NewResolverFromCatalog(sc.cat)

	perms, err := r.AllowedPerms(ctx, sc.adam.ID(), &sc.modpack)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"select", "create", "delete"}, permNames(t, ctx, perms))
}

func TestScenario_AllowedPerms_Dude_Server(t *testing.T) {
	ctx := context.Background()
	sc := buildScenario(t)
	r := authgraph.NewResolverFromCatalog(sc.cat)

	perms, err := r.AllowedPerms(ctx, sc.dude.ID(), &sc.server)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"select", "create", "fly2"}, permNames(t, ctx, perms))
}

func TestScenario_IsAllowed_Adam_Fly(t *testing.T) {
	ctx := context.Background()
	sc := buildScenario(t)
	r := authgraph.NewResolverFromCatalog(sc.cat)

	ok, err := r.IsAllowed(ctx, sc.adam.ID(), sc.fly1, &sc.server)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsAllowed(ctx, sc.adam.ID(), sc.fly1, &sc.modpack)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.IsAllowed(ctx, sc.adam.ID(), sc.fly2, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScenario_AllowedPerms_OffScope(t *testing.T) {
	ctx := context.Background()
	sc := buildScenario(t)
	r := authgraph.NewResolverFromCatalog(sc.cat)

	perms, err := r.AllowedPerms(ctx, sc.guest.ID(), &sc.offScope)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"select"}, permNames(t, ctx, perms))

	perms, err = r.AllowedPerms(ctx, sc.shadow.ID(), &sc.offScope)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"select", "update"}, permNames(t, ctx, perms))
}

func TestScenario_ResetPerm_DudeGainsUpdate(t *testing.T) {
	ctx := context.Background()
	sc := buildScenario(t)
	r := authgraph.NewResolverFromCatalog(sc.cat)

	perms, err := r.AllowedPerms(ctx, sc.dude.ID(), &sc.server)
	require.NoError(t, err)
	assert.NotContains(t, permNames(t, ctx, perms), "update")

	require.NoError(t, sc.contributors.ResetPerm(ctx, sc.update))

	perms, err = r.AllowedPerms(ctx, sc.dude.ID(), &sc.server)
	require.NoError(t, err)
	assert.Contains(t, permNames(t, ctx, perms), "update")
}

func TestScenario_ActivatedAbilities(t *testing.T) {
	ctx := context.Background()
	sc := buildScenario(t)

	adamAbilities, err := sc.adam.ActivatedAbilities(ctx, nil)
	require.NoError(t, err)
	require.Len(t, adamAbilities, 1)
	assert.Equal(t, sc.fly1.ID(), adamAbilities[0].PermID)

	ivanAbilities, err := sc.ivan.ActivatedAbilities(ctx, nil)
	require.NoError(t, err)
	require.Len(t, ivanAbilities, 1)
	assert.Equal(t, sc.fly2.ID(), ivanAbilities[0].PermID)
}
