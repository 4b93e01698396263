package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/kgrefine/internal/core/embedding"
	"github.com/agenthands/kgrefine/internal/core/graph"
	"github.com/agenthands/kgrefine/internal/core/model"
)

func blobs() [][]float64 {
	return [][]float64{
		{0, 0}, {0.1, 0.2}, {0.2, 0.1}, {0.1, 0},
		{10, 10}, {10.2, 9.9}, {9.8, 10.1}, {10.1, 10},
	}
}

func TestEstimateK(t *testing.T) {
	assert.Equal(t, 1, EstimateK(1))
	assert.Equal(t, 2, EstimateK(2))
	assert.Equal(t, 2, EstimateK(10))
	assert.Equal(t, 3, EstimateK(11))
	assert.Equal(t, 10, EstimateK(100))
	assert.Equal(t, MaxK, EstimateK(10000))
}

func TestKMeans_SeparatesBlobs(t *testing.T) {
	res, err := KMeans(blobs(), DefaultKMeansOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, res.K)
	for i := 1; i < 4; i++ {
		assert.Equal(t, res.Labels[0], res.Labels[i])
		assert.Equal(t, res.Labels[4], res.Labels[4+i])
	}
	assert.NotEqual(t, res.Labels[0], res.Labels[4])
	assert.Less(t, res.Inertia, 1.0)
}

func TestKMeans_IsDeterministicPerSeed(t *testing.T) {
	a, err := KMeans(blobs(), KMeansOptions{K: 3, Seed: 7})
	require.NoError(t, err)
	b, err := KMeans(blobs(), KMeansOptions{K: 3, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, a.Labels, b.Labels)
}

func TestKMeans_Errors(t *testing.T) {
	_, err := KMeans(nil, DefaultKMeansOptions())
	assert.ErrorIs(t, err, ErrNoData)
	_, err = KMeans(blobs(), KMeansOptions{K: -1})
	assert.ErrorIs(t, err, ErrInvalidK)

	res, err := KMeans([][]float64{{1}, {2}}, KMeansOptions{K: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, res.K)
}

func TestDBSCAN(t *testing.T) {
	rows := append(blobs(), []float64{5, 5})
	labels, err := DBSCAN(rows, DBSCANOptions{Eps: 0.5, MinPoints: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 1, 1, 1, Noise}, labels)

	_, err = DBSCAN(rows, DBSCANOptions{})
	assert.Error(t, err)
}

func TestStandardize(t *testing.T) {
	rows := [][]float64{{1, 5}, {2, 5}, {3, 5}}
	out := Standardize(rows)
	require.Len(t, out, 3)
	assert.InDelta(t, 0, out[1][0], 1e-12)
	assert.InDelta(t, -out[0][0], out[2][0], 1e-12)
	assert.InDelta(t, 1.224744871, out[2][0], 1e-9)
	for _, row := range out {
		assert.Equal(t, 0.0, row[1])
	}
	assert.Equal(t, 1.0, rows[0][0])
}

func TestStructuralFeatures(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(&model.Node{ID: "p", Label: "Zhang San", Type: "PERSON", Properties: model.Properties{"age": model.Number(40)}}))
	require.NoError(t, g.AddNode(&model.Node{ID: "o", Label: "Peking University", Type: "ORGANIZATION"}))
	require.NoError(t, g.AddNode(&model.Node{ID: "c", Label: "Beijing", Type: "LOCATION"}))
	_, err := g.AddEdge(&model.Edge{SourceID: "p", TargetID: "o", Type: "WORK_FOR"})
	require.NoError(t, err)
	_, err = g.AddEdge(&model.Edge{SourceID: "p", TargetID: "o", Type: "STUDIED_AT"})
	require.NoError(t, err)
	_, err = g.AddEdge(&model.Edge{SourceID: "p", TargetID: "c", Type: "LOCATED_IN"})
	require.NoError(t, err)

	v := StructuralFeatures(g)
	require.Equal(t, []string{"p", "o", "c"}, v.IDs)
	assert.Equal(t, []float64{3, 1, 3, 2}, v.Rows[0])
	assert.Equal(t, []float64{2, 0, 2, 1}, v.Rows[1])
}

func TestEmbeddingFeatures_ExcludesFailures(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(&model.Node{ID: "a", Label: "Zhang San", Type: "PERSON"}))
	require.NoError(t, g.AddNode(&model.Node{ID: "b", Label: "", Type: ""}))

	cache, err := embedding.NewCache(16, embedding.WithGenerator(embedding.TextGenerator{}, 1))
	require.NoError(t, err)

	v := EmbeddingFeatures(g, cache)
	assert.Equal(t, []string{"a"}, v.IDs)
	assert.Len(t, v.Rows[0], 16)
}

func TestDBSCAN_BorderRowVisitedBeforeItsCore(t *testing.T) {
	// row 0 alone is not dense but sits next to the core row 1
	rows := [][]float64{{0}, {1}, {2}, {3}, {10}}
	labels, err := DBSCAN(rows, DBSCANOptions{Eps: 1, MinPoints: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, Noise}, labels)
}
