// Package fixture loads a declarative YAML scenario describing a graph of
// entities, groups, perms, scopes, and abilities into an authgraph.Catalog.
// It is the Go-native replacement for the out-of-scope "test scaffolding"
// spec.md §1 names as an external collaborator, grounded on
// cmd/melange/config.go's use of sigs.k8s.io/yaml for structured
// marshalling and test/testutil/fixtures.go's fixture-construction idiom.
package fixture

import (
	"context"
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/ashgrove/authgraph"
)

// Scenario is the top-level YAML document shape. Every section is
// optional; order matters within a section (earlier scopes/groups can be
// referenced as parents of later ones) but sections themselves are
// processed in a fixed order (scopes, perms, groups, abilities, entities,
// links) so that, e.g., perms can reference scopes declared earlier in the
// same document.
type Scenario struct {
	Scopes    []ScopeDef    `json:"scopes,omitempty"`
	Perms     []PermDef     `json:"perms,omitempty"`
	Groups    []GroupDef    `json:"groups,omitempty"`
	Entities  []EntityDef   `json:"entities,omitempty"`
	Abilities []AbilityDef  `json:"abilities,omitempty"`
	Links     []LinkDef     `json:"links,omitempty"`
}

// ScopeDef declares a Scope, optionally a SUBSET_OF of an earlier scope.
type ScopeDef struct {
	Name     string `json:"name"`
	SubsetOf string `json:"subset_of,omitempty"`
}

// PermDef declares a Perm, optionally attached to a scope.
type PermDef struct {
	Name  string `json:"name"`
	Scope string `json:"scope,omitempty"`
}

// GroupDef declares a Group.
type GroupDef struct {
	Name     string `json:"name"`
	Global   bool   `json:"global,omitempty"`
	Inherits string `json:"inherits,omitempty"`
	Scope    string `json:"scope,omitempty"`
}

// EntityDef declares an Entity and its direct group memberships.
type EntityDef struct {
	Name   string   `json:"name"`
	Groups []string `json:"groups,omitempty"`
}

// AbilityDef declares an Ability and the perms it supports.
type AbilityDef struct {
	Name     string   `json:"name"`
	Scope    string   `json:"scope,omitempty"`
	Supports []string `json:"supports,omitempty"`
}

// LinkDef declares one polarized ALLOW/DENY edge from a named
// subject (an Entity, Group, or Scope) to a named Perm.
type LinkDef struct {
	Subject string `json:"subject"`
	Perm    string `json:"perm"`
	Scope   string `json:"scope,omitempty"` // "*" or omitted means AnyScope
	Allow   bool   `json:"allow"`
}

// Load parses a YAML document and applies it to cat, returning the name->
// handle registries for further scripted use (e.g. in tests or the
// `authgraph load` CLI command).
func Load(ctx context.Context, cat *authgraph.Catalog, doc []byte) (*Registry, error) {
	var sc Scenario
	if err := yaml.Unmarshal(doc, &sc); err != nil {
		return nil, fmt.Errorf("fixture: parsing YAML: %w", err)
	}
	return Apply(ctx, cat, sc)
}

// Registry resolves the names used in a Scenario document to the handles
// Apply created.
type Registry struct {
	Scopes    map[string]authgraph.Scope
	Perms     map[string]authgraph.Perm
	Groups    map[string]authgraph.Group
	Entities  map[string]authgraph.Entity
	Abilities map[string]authgraph.Ability
}

func has[V any](m map[string]V, key string) bool {
	_, ok := m[key]
	return ok
}

func newRegistry() *Registry {
	return &Registry{
		Scopes:    map[string]authgraph.Scope{},
		Perms:     map[string]authgraph.Perm{},
		Groups:    map[string]authgraph.Group{},
		Entities:  map[string]authgraph.Entity{},
		Abilities: map[string]authgraph.Ability{},
	}
}

// Apply applies an already-parsed Scenario to cat.
func Apply(ctx context.Context, cat *authgraph.Catalog, sc Scenario) (*Registry, error) {
	reg := newRegistry()

	for _, sd := range sc.Scopes {
		var parent *authgraph.Scope
		if sd.SubsetOf != "" {
			p, ok := reg.Scopes[sd.SubsetOf]
			if !ok {
				return nil, fmt.Errorf("fixture: scope %q: unknown subset_of %q", sd.Name, sd.SubsetOf)
			}
			parent = &p
		}
		s, err := cat.CreateScope(ctx, sd.Name, parent)
		if err != nil {
			return nil, fmt.Errorf("fixture: creating scope %q: %w", sd.Name, err)
		}
		reg.Scopes[sd.Name] = s
	}

	for _, pd := range sc.Perms {
		var scope *authgraph.Scope
		if pd.Scope != "" {
			sv, ok := reg.Scopes[pd.Scope]
			if !ok {
				return nil, fmt.Errorf("fixture: perm %q: unknown scope %q", pd.Name, pd.Scope)
			}
			scope = &sv
		}
		p, err := cat.CreatePerm(ctx, pd.Name, scope)
		if err != nil {
			return nil, fmt.Errorf("fixture: creating perm %q: %w", pd.Name, err)
		}
		reg.Perms[pd.Name] = p
	}

	// Groups may inherit from a group declared earlier in the document;
	// create in document order so forward references fail loudly.
	for _, gd := range sc.Groups {
		g, err := cat.CreateGroup(ctx, gd.Name, false)
		if err != nil {
			return nil, fmt.Errorf("fixture: creating group %q: %w", gd.Name, err)
		}
		if gd.Scope != "" {
			sv, ok := reg.Scopes[gd.Scope]
			if !ok {
				return nil, fmt.Errorf("fixture: group %q: unknown scope %q", gd.Name, gd.Scope)
			}
			if err := g.SetScope(ctx, sv); err != nil {
				return nil, fmt.Errorf("fixture: scoping group %q: %w", gd.Name, err)
			}
		}
		if gd.Inherits != "" {
			parent, ok := reg.Groups[gd.Inherits]
			if !ok {
				return nil, fmt.Errorf("fixture: group %q: unknown inherits %q", gd.Name, gd.Inherits)
			}
			if err := g.SetInherits(ctx, &parent); err != nil {
				return nil, fmt.Errorf("fixture: group %q inherits %q: %w", gd.Name, gd.Inherits, err)
			}
		}
		reg.Groups[gd.Name] = g
		if gd.Global {
			if err := g.MakeGlobal(ctx, true); err != nil {
				return nil, fmt.Errorf("fixture: making group %q global: %w", gd.Name, err)
			}
		}
	}

	for _, ad := range sc.Abilities {
		var scope *authgraph.Scope
		if ad.Scope != "" {
			sv, ok := reg.Scopes[ad.Scope]
			if !ok {
				return nil, fmt.Errorf("fixture: ability %q: unknown scope %q", ad.Name, ad.Scope)
			}
			scope = &sv
		}
		a, err := cat.CreateAbility(ctx, ad.Name, scope)
		if err != nil {
			return nil, fmt.Errorf("fixture: creating ability %q: %w", ad.Name, err)
		}
		for _, permName := range ad.Supports {
			p, ok := reg.Perms[permName]
			if !ok {
				return nil, fmt.Errorf("fixture: ability %q: unknown supported perm %q", ad.Name, permName)
			}
			if err := a.AddPermSupport(ctx, p); err != nil {
				return nil, fmt.Errorf("fixture: ability %q supports %q: %w", ad.Name, permName, err)
			}
		}
		reg.Abilities[ad.Name] = a
	}

	for _, ed := range sc.Entities {
		e, err := cat.CreateEntity(ctx, ed.Name)
		if err != nil {
			return nil, fmt.Errorf("fixture: creating entity %q: %w", ed.Name, err)
		}
		for _, groupName := range ed.Groups {
			g, ok := reg.Groups[groupName]
			if !ok {
				return nil, fmt.Errorf("fixture: entity %q: unknown group %q", ed.Name, groupName)
			}
			if err := e.AddToGroup(ctx, g); err != nil {
				return nil, fmt.Errorf("fixture: adding %q to group %q: %w", ed.Name, groupName, err)
			}
		}
		reg.Entities[ed.Name] = e
	}

	for i, ld := range sc.Links {
		p, ok := reg.Perms[ld.Perm]
		if !ok {
			return nil, fmt.Errorf("fixture: link[%d]: unknown perm %q", i, ld.Perm)
		}

		var scope *authgraph.Scope
		if ld.Scope != "" && ld.Scope != authgraph.AnyScope {
			sv, ok := reg.Scopes[ld.Scope]
			if !ok {
				return nil, fmt.Errorf("fixture: link[%d]: unknown scope %q", i, ld.Scope)
			}
			scope = &sv
		}

		switch {
		case has(reg.Entities, ld.Subject):
			if err := reg.Entities[ld.Subject].LinkPerm(ctx, p, scope, ld.Allow); err != nil {
				return nil, fmt.Errorf("fixture: link[%d]: %w", i, err)
			}
		case has(reg.Groups, ld.Subject):
			if err := reg.Groups[ld.Subject].LinkPerm(ctx, p, ld.Allow); err != nil {
				return nil, fmt.Errorf("fixture: link[%d]: %w", i, err)
			}
		case has(reg.Scopes, ld.Subject):
			if err := reg.Scopes[ld.Subject].LinkPerm(ctx, p, ld.Allow); err != nil {
				return nil, fmt.Errorf("fixture: link[%d]: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("fixture: link[%d]: unknown subject %q", i, ld.Subject)
		}
	}

	return reg, nil
}
