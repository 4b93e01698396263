// Package cluster groups nodes by their feature vectors with k-means and
// DBSCAN.
package cluster

import (
	"errors"
	"log"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/agenthands/kgrefine/internal/core/embedding"
	"github.com/agenthands/kgrefine/internal/core/graph"
)

var ErrNoData = errors.New("cluster: no feature vectors")

// Vectors pairs node ids with their feature rows.
type Vectors struct {
	IDs  []string
	Rows [][]float64
}

func (v Vectors) Len() int { return len(v.IDs) }

// StructuralFeatures describes each node by its degree, property count,
// number of distinct incident relation types and number of distinct
// neighbour types.
func StructuralFeatures(g *graph.Graph) Vectors {
	var v Vectors
	for _, n := range g.Nodes() {
		edges := g.IncidentEdges(n.ID)
		relTypes := make(map[string]struct{})
		for _, e := range edges {
			relTypes[e.Type] = struct{}{}
		}
		nbrTypes := make(map[string]struct{})
		for _, id := range g.Neighbors(n.ID) {
			if nb, ok := g.Node(id); ok {
				nbrTypes[nb.Type] = struct{}{}
			}
		}
		v.IDs = append(v.IDs, n.ID)
		v.Rows = append(v.Rows, []float64{
			float64(len(edges)),
			float64(len(n.Properties)),
			float64(len(relTypes)),
			float64(len(nbrTypes)),
		})
	}
	return v
}

// EmbeddingFeatures uses the cached embedding of each node. Nodes that
// cannot be embedded are logged and left out.
func EmbeddingFeatures(g *graph.Graph, cache *embedding.Cache) Vectors {
	var v Vectors
	for _, n := range g.Nodes() {
		vec, err := cache.Get(embedding.NodeSubject(n), embedding.NodeContext(g, n.ID))
		if err != nil {
			log.Printf("Warning: excluding node %q from analysis: %v", n.ID, err)
			continue
		}
		v.IDs = append(v.IDs, n.ID)
		v.Rows = append(v.Rows, vec)
	}
	return v
}

// Standardize rescales every column to zero mean and unit variance.
// Constant columns become zero. The input is not modified.
func Standardize(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return nil
	}
	r, c := len(rows), len(rows[0])
	if c == 0 {
		return make([][]float64, r)
	}
	m := mat.NewDense(r, c, nil)
	for i, row := range rows {
		m.SetRow(i, row)
	}

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		mean, std := stat.PopMeanStdDev(col, nil)
		for i := range col {
			if std == 0 {
				m.Set(i, j, 0)
				continue
			}
			m.Set(i, j, (col[i]-mean)/std)
		}
	}

	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
