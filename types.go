package authgraph

import "github.com/ashgrove/authgraph/graph"

// Node kinds (spec §3). These are the closed set of labels a Catalog's
// nodes may carry; user-defined Entity subtypes are an optional "subtype"
// property, not a distinct label (spec §9, "Dynamic labels").
const (
	LabelEntity      graph.Label = "Entity"
	LabelGroup       graph.Label = "Group"
	LabelPerm        graph.Label = "Perm"
	LabelScope       graph.Label = "Scope"
	LabelAbility     graph.Label = "Ability"
	LabelAbilityPerm graph.Label = "AbilityPerm"
)

// Edge kinds (spec §3).
const (
	EdgeIsIn      graph.EdgeType = "IS_IN"
	EdgeIsInAuto  graph.EdgeType = "IS_IN_AUTO"
	EdgeInherits  graph.EdgeType = "INHERITS"
	EdgeExistsIn  graph.EdgeType = "EXISTS_IN"
	EdgeSubsetOf  graph.EdgeType = "SUBSET_OF"
	EdgeSupports  graph.EdgeType = "SUPPORTS"
	EdgeAllow     graph.EdgeType = "ALLOW"
	EdgeDeny      graph.EdgeType = "DENY"
	EdgeActivated graph.EdgeType = "ACTIVATED"
	EdgeRelatedTo graph.EdgeType = "RELATED_TO"
	EdgeWorksIn   graph.EdgeType = "WORKS_IN" // aka ACTIVATED_IN
	EdgeEnabled   graph.EdgeType = "ENABLED"
)

// AnyScope is the scope_id sentinel meaning "any scope" on a polarized
// ALLOW/DENY edge (spec §3, §4.2).
const AnyScope = "*"

// membershipEdges are the edges traversable for group membership/
// inheritance during resolution (spec §4.7, "Allowed traversal edges").
var membershipEdges = []graph.EdgeType{EdgeIsIn, EdgeIsInAuto, EdgeInherits}

// resolutionEdges are all edge kinds the Resolver may traverse.
var resolutionEdges = []graph.EdgeType{EdgeIsIn, EdgeIsInAuto, EdgeInherits, EdgeAllow, EdgeDeny}

// maxPathLen is the bounded search depth L from spec §4.7.
const maxPathLen = 16

// props is a small constructor helper for graph.Props literals.
func props(kv ...any) graph.Props {
	p := make(graph.Props, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		p[k] = kv[i+1]
	}
	return p
}
