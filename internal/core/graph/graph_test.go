package graph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/kgrefine/internal/core/model"
)

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	counter := 0
	g.NewEdgeID = func() string {
		counter++
		return fmt.Sprintf("e-%d", counter)
	}
	require.NoError(t, g.AddNode(&model.Node{ID: "p1", Label: "Zhang San", Type: "PERSON"}))
	require.NoError(t, g.AddNode(&model.Node{ID: "p2", Label: "Li Si", Type: "PERSON"}))
	require.NoError(t, g.AddNode(&model.Node{ID: "o1", Label: "Peking University", Type: "ORGANIZATION"}))
	return g
}

func assertConsistent(t *testing.T, g *Graph) {
	t.Helper()
	for nodeID, inc := range g.incidence {
		_, ok := g.nodes[nodeID]
		assert.True(t, ok, "incidence for missing node %s", nodeID)
		for eid := range inc {
			e, ok := g.edges[eid]
			require.True(t, ok, "incidence references missing edge %s", eid)
			assert.True(t, e.SourceID == nodeID || e.TargetID == nodeID)
		}
	}
	for eid, e := range g.edges {
		_, okS := g.incidence[e.SourceID][eid]
		_, okT := g.incidence[e.TargetID][eid]
		assert.True(t, okS && okT, "edge %s missing from incidence", eid)
	}
}

func TestAddEdge_AssignsIDAndWeight(t *testing.T) {
	g := newTestGraph(t)

	e, err := g.AddEdge(&model.Edge{SourceID: "p1", TargetID: "o1", Type: "WORK_FOR"})
	require.NoError(t, err)

	assert.Equal(t, "e-1", e.ID)
	assert.Equal(t, 1.0, e.Weight)
	assert.True(t, g.HasEdge("p1", "o1", "WORK_FOR"))
	assert.False(t, g.HasEdge("o1", "p1", "WORK_FOR"))
	assertConsistent(t, g)
}

func TestAddEdge_Rejections(t *testing.T) {
	g := newTestGraph(t)

	_, err := g.AddEdge(&model.Edge{ID: "x", SourceID: "p1", TargetID: "ghost", Type: "KNOWS"})
	var refErr *ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "ghost", refErr.MissingID)
	assert.ErrorIs(t, err, ErrStructural)

	_, err = g.AddEdge(&model.Edge{ID: "y", SourceID: "p1", TargetID: "p1", Type: "KNOWS"})
	assert.ErrorIs(t, err, ErrSelfLoop)

	_, err = g.AddEdge(&model.Edge{ID: "z", SourceID: "p1", TargetID: "p2", Type: "KNOWS"})
	require.NoError(t, err)
	_, err = g.AddEdge(&model.Edge{ID: "z", SourceID: "p2", TargetID: "p1", Type: "KNOWS"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	// Rejected mutations leave nothing behind.
	assert.Equal(t, 1, g.EdgeCount())
	assertConsistent(t, g)
}

func TestAddNode_Rejections(t *testing.T) {
	g := newTestGraph(t)
	assert.ErrorIs(t, g.AddNode(&model.Node{ID: "p1", Label: "dup"}), ErrDuplicateID)
	assert.ErrorIs(t, g.AddNode(&model.Node{ID: " "}), ErrEmptyID)
	assert.Equal(t, 3, g.NodeCount())
}

func TestRemoveNode_Cascades(t *testing.T) {
	g := newTestGraph(t)
	var removed []string
	g.OnRemove(func(id string) { removed = append(removed, id) })

	_, err := g.AddEdge(&model.Edge{SourceID: "p1", TargetID: "o1", Type: "WORK_FOR"})
	require.NoError(t, err)
	_, err = g.AddEdge(&model.Edge{SourceID: "p2", TargetID: "o1", Type: "WORK_FOR"})
	require.NoError(t, err)
	_, err = g.AddEdge(&model.Edge{SourceID: "p1", TargetID: "p2", Type: "KNOWS"})
	require.NoError(t, err)

	require.NoError(t, g.RemoveNode("o1"))

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.ElementsMatch(t, []string{"e-1", "e-2", "o1"}, removed)
	assert.ErrorIs(t, g.RemoveNode("o1"), ErrNodeNotFound)
	assert.ErrorIs(t, g.RemoveEdge("e-1"), ErrEdgeNotFound)
	assertConsistent(t, g)
}

func TestNeighborsAndIncidentEdges(t *testing.T) {
	g := newTestGraph(t)
	_, _ = g.AddEdge(&model.Edge{SourceID: "p1", TargetID: "o1", Type: "WORK_FOR"})
	_, _ = g.AddEdge(&model.Edge{SourceID: "o1", TargetID: "p1", Type: "EMPLOYS"})
	_, _ = g.AddEdge(&model.Edge{SourceID: "p2", TargetID: "p1", Type: "KNOWS"})

	assert.Equal(t, []string{"o1", "p2"}, g.Neighbors("p1"))
	assert.Len(t, g.IncidentEdges("p1"), 3)
	assert.Empty(t, g.IncidentEdges("missing"))
}

func TestStatistics(t *testing.T) {
	g := newTestGraph(t)
	st := g.Statistics()
	assert.Equal(t, 3, st.NodeCount)
	assert.Equal(t, 0.0, st.Density)
	assert.False(t, st.Connected)
	assert.Equal(t, 3, st.Components)

	_, _ = g.AddEdge(&model.Edge{SourceID: "p1", TargetID: "o1", Type: "WORK_FOR"})
	_, _ = g.AddEdge(&model.Edge{SourceID: "p2", TargetID: "o1", Type: "WORK_FOR", Inferred: true})

	st = g.Statistics()
	assert.Equal(t, 2, st.NodeTypes["PERSON"])
	assert.Equal(t, 2, st.EdgeTypes["WORK_FOR"])
	assert.Equal(t, 1, st.Inferred)
	assert.InDelta(t, 2.0/3.0, st.Density, 1e-9)
	assert.True(t, st.Connected)
}

func TestFromRecords_SkipsInvalid(t *testing.T) {
	g, skipped := FromRecords(
		[]model.Entity{
			{ID: "a", Name: "Alice", Type: "PERSON", Confidence: 0.9},
			{ID: "b", Name: "Acme", Type: "ORGANIZATION"},
			{ID: "a", Name: "Alice again", Type: "PERSON"},
		},
		[]model.Relation{
			{SourceID: "a", TargetID: "b", Type: "WORK_FOR"},
			{SourceID: "a", TargetID: "missing", Type: "WORK_FOR"},
			{SourceID: "a", TargetID: "a", Type: "KNOWS"},
		},
	)

	assert.Equal(t, 3, skipped)
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	n, _ := g.Node("a")
	assert.Equal(t, 0.9, n.Properties[ConfidenceProperty].Num())
}

func TestClone_IsIndependent(t *testing.T) {
	g := newTestGraph(t)
	_, _ = g.AddEdge(&model.Edge{SourceID: "p1", TargetID: "o1", Type: "WORK_FOR"})

	c := g.Clone()
	require.NoError(t, c.RemoveNode("o1"))

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assertConsistent(t, g)
	assertConsistent(t, c)
}
