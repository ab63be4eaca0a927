package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove/authgraph/graph"
)

func TestMemoryStore_CreateAndGetNode(t *testing.T) {
	ctx := context.Background()
	s := graph.NewMemoryStore()

	id, err := s.CreateNode(ctx, "Entity", graph.Props{"name": "adam"})
	require.NoError(t, err)

	n, err := s.GetNode(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, graph.Label("Entity"), n.Label)
	assert.Equal(t, "adam", n.Props["name"])
}

func TestMemoryStore_GetNode_NotFound(t *testing.T) {
	s := graph.NewMemoryStore()
	_, err := s.GetNode(context.Background(), "missing")
	require.ErrorIs(t, err, graph.ErrNotFound)
}

func TestMemoryStore_FindOneAndFindAll(t *testing.T) {
	ctx := context.Background()
	s := graph.NewMemoryStore()

	_, _ = s.CreateNode(ctx, "Entity", graph.Props{"name": "adam"})
	_, _ = s.CreateNode(ctx, "Entity", graph.Props{"name": "ivan"})
	_, _ = s.CreateNode(ctx, "Group", graph.Props{"name": "staff"})

	all, err := s.FindAll(ctx, graph.NodeFilter{Label: "Entity"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, ok, err := s.FindOne(ctx, graph.NodeFilter{Label: "Entity", Props: graph.Props{"name": "ivan"}})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ivan", one.Props["name"])

	_, ok, err = s.FindOne(ctx, graph.NodeFilter{Label: "Entity", Props: graph.Props{"name": "nobody"}})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_CreateEdge_RequiresExistingNodes(t *testing.T) {
	ctx := context.Background()
	s := graph.NewMemoryStore()

	a, err := s.CreateNode(ctx, "Entity", nil)
	require.NoError(t, err)

	err = s.CreateEdge(ctx, a, "IS_IN", "missing", nil)
	require.Error(t, err)
}

func TestMemoryStore_NeighborsAndDeleteEdges(t *testing.T) {
	ctx := context.Background()
	s := graph.NewMemoryStore()

	a, _ := s.CreateNode(ctx, "Entity", nil)
	g, _ := s.CreateNode(ctx, "Group", nil)

	require.NoError(t, s.CreateEdge(ctx, a, "IS_IN", g, nil))

	nbrs, err := s.Neighbors(ctx, a, []graph.EdgeType{"IS_IN"}, graph.Out, nil)
	require.NoError(t, err)
	require.Len(t, nbrs, 1)
	assert.Equal(t, g, nbrs[0].Node.ID)

	inNbrs, err := s.Neighbors(ctx, g, []graph.EdgeType{"IS_IN"}, graph.In, nil)
	require.NoError(t, err)
	require.Len(t, inNbrs, 1)
	assert.Equal(t, a, inNbrs[0].Node.ID)

	require.NoError(t, s.DeleteEdges(ctx, a, []graph.EdgeType{"IS_IN"}, "", nil))

	nbrs, err = s.Neighbors(ctx, a, []graph.EdgeType{"IS_IN"}, graph.Out, nil)
	require.NoError(t, err)
	assert.Empty(t, nbrs)
}

func TestMemoryStore_DeleteNode_RemovesIncidentEdges(t *testing.T) {
	ctx := context.Background()
	s := graph.NewMemoryStore()

	a, _ := s.CreateNode(ctx, "Entity", nil)
	g, _ := s.CreateNode(ctx, "Group", nil)
	require.NoError(t, s.CreateEdge(ctx, a, "IS_IN", g, nil))

	require.NoError(t, s.DeleteNode(ctx, a))

	nbrs, err := s.Neighbors(ctx, g, []graph.EdgeType{"IS_IN"}, graph.In, nil)
	require.NoError(t, err)
	assert.Empty(t, nbrs)
}

func TestMemoryStore_SetNodeProp(t *testing.T) {
	ctx := context.Background()
	s := graph.NewMemoryStore()

	id, _ := s.CreateNode(ctx, "Group", graph.Props{"is_global": false})
	require.NoError(t, s.SetNodeProp(ctx, id, "is_global", true))

	n, err := s.GetNode(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, true, n.Props["is_global"])
}

func TestMemoryStore_Reachable(t *testing.T) {
	ctx := context.Background()
	s := graph.NewMemoryStore()

	a, _ := s.CreateNode(ctx, "Scope", nil)
	b, _ := s.CreateNode(ctx, "Scope", nil)
	c, _ := s.CreateNode(ctx, "Scope", nil)
	require.NoError(t, s.CreateEdge(ctx, a, "SUBSET_OF", b, nil))
	require.NoError(t, s.CreateEdge(ctx, b, "SUBSET_OF", c, nil))

	direct, err := s.Reachable(ctx, a, []graph.EdgeType{"SUBSET_OF"}, false)
	require.NoError(t, err)
	require.Len(t, direct, 1)
	assert.Equal(t, b, direct[0].ID)

	transitive, err := s.Reachable(ctx, a, []graph.EdgeType{"SUBSET_OF"}, true)
	require.NoError(t, err)
	assert.Len(t, transitive, 2)
}

func TestMemoryStore_ShortestPaths(t *testing.T) {
	ctx := context.Background()
	s := graph.NewMemoryStore()

	entity, _ := s.CreateNode(ctx, "Entity", nil)
	group, _ := s.CreateNode(ctx, "Group", nil)
	perm, _ := s.CreateNode(ctx, "Perm", nil)

	require.NoError(t, s.CreateEdge(ctx, entity, "IS_IN", group, nil))
	require.NoError(t, s.CreateEdge(ctx, group, "ALLOW", perm, graph.Props{"scope_id": "*"}))

	paths, err := s.ShortestPaths(ctx, []graph.NodeID{entity}, "Perm", 16,
		[]graph.EdgeType{"IS_IN", "ALLOW"}, nil, nil)
	require.NoError(t, err)

	path, ok := paths[perm]
	require.True(t, ok)
	require.Len(t, path, 2)
	assert.Equal(t, graph.EdgeType("ALLOW"), path[1].Edge.Type)
}
