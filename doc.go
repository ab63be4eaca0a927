// Package authgraph implements a scoped, hierarchical, graph-based
// authorization engine: given an entity, a permission, and an optional
// scope, it answers "is this allowed?" and "which permissions are
// allowed?" by a constrained shortest-path search over a labeled directed
// graph of entities, groups, permissions, scopes, and abilities.
//
// # Core Concepts
//
// Six node kinds make up the graph: Entity (an authorization subject),
// Group (a named collection of entities, with inheritance and a single
// designated global group), Perm (an atomic permission token), Scope (a
// context forming a DAG via subset-of), Ability (a higher-level capability
// that activates a concrete Perm in a scope), and AbilityPerm (the
// bookkeeping record of one such activation).
//
// Edges carry the graph's semantics: IS_IN/IS_IN_AUTO for membership,
// INHERITS for group hierarchy, EXISTS_IN for scope attachment, SUBSET_OF
// for the scope DAG, SUPPORTS for ability-to-perm validity, ALLOW/DENY for
// polarized permission links, and ACTIVATED/RELATED_TO/WORKS_IN/ENABLED for
// ability-activation bookkeeping.
//
// # Basic Usage
//
//	store := graph.NewMemoryStore()
//	cat := authgraph.NewCatalog(store)
//
//	admin, _ := cat.CreateGroup(ctx, "admins", false)
//	alice, _ := cat.CreateEntity(ctx, "alice")
//	_ = alice.AddToGroup(ctx, admin)
//
//	deletePerm, _ := cat.CreatePerm(ctx, "delete", nil)
//	_ = admin.LinkPerm(ctx, deletePerm, true)
//
//	resolver := authgraph.NewResolver(store)
//	ok, _ := resolver.IsAllowed(ctx, alice.ID(), deletePerm, nil)
//
// # Storage
//
// The graph.Store interface is the only dependency of this package;
// graph.NewMemoryStore provides an in-process implementation and
// graph/postgres provides a durable one. Swapping stores never changes
// resolution semantics.
//
// # Non-goals
//
// This package has no network surface, no session management, no audit
// log, and no cache of resolution results — it is a pure query layer over
// a graph store. Applications that need a cache should wrap Resolver
// themselves.
package authgraph
