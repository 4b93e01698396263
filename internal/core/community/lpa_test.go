package community

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/kgrefine/internal/core/graph"
	"github.com/agenthands/kgrefine/internal/core/model"
)

func buildGraph(t *testing.T, ids []string, pairs [][2]string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, id := range ids {
		require.NoError(t, g.AddNode(&model.Node{ID: id, Label: id, Type: "ENTITY"}))
	}
	for _, p := range pairs {
		_, err := g.AddEdge(&model.Edge{SourceID: p[0], TargetID: p[1], Type: "RELATED_TO"})
		require.NoError(t, err)
	}
	return g
}

func TestLPA_DisconnectedComponents(t *testing.T) {
	// Two triangles with no link between them.
	g := buildGraph(t, []string{"1", "2", "3", "4", "5", "6"}, [][2]string{
		{"1", "2"}, {"2", "3"}, {"3", "1"},
		{"4", "5"}, {"5", "6"}, {"6", "4"},
	})

	communities, err := NewLabelPropagationDetector().Detect(g)
	assert.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}}, communities)
}

func TestLPA_BridgeNode(t *testing.T) {
	// Two triangles joined by 3-4; the bridge is weaker than either triangle.
	g := buildGraph(t, []string{"1", "2", "3", "4", "5", "6"}, [][2]string{
		{"1", "2"}, {"2", "3"}, {"3", "1"},
		{"3", "4"},
		{"4", "5"}, {"5", "6"}, {"6", "4"},
	})

	communities, err := NewLabelPropagationDetector().Detect(g)
	assert.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}}, communities)
}

func TestLPA_LargeClique(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5"}
	var pairs [][2]string
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			pairs = append(pairs, [2]string{ids[i], ids[j]})
		}
	}

	communities, err := NewLabelPropagationDetector().Detect(buildGraph(t, ids, pairs))
	assert.NoError(t, err)
	require.Len(t, communities, 1)
	assert.Len(t, communities[0], 5)
}

func TestLPA_EmptyGraph(t *testing.T) {
	communities, err := NewLabelPropagationDetector().Detect(graph.New())
	assert.NoError(t, err)
	assert.Empty(t, communities)
}
