package community

import (
	"sort"

	"github.com/agenthands/kgrefine/internal/core/graph"
)

// LabelPropagationDetector implements community detection using the Label
// Propagation Algorithm (LPA), with neighbours weighted by edge weight.
type LabelPropagationDetector struct {
	MaxIterations int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{
		MaxIterations: 20,
	}
}

func (d *LabelPropagationDetector) Detect(g *graph.Graph) ([][]string, error) {
	if g.NodeCount() == 0 {
		return nil, nil
	}

	// Parallel edges add up.
	adj := make(map[string]map[string]float64, g.NodeCount())
	labels := make(map[string]string, g.NodeCount())
	var order []string
	for _, n := range g.Nodes() {
		adj[n.ID] = make(map[string]float64)
		labels[n.ID] = n.ID
		order = append(order, n.ID)
	}
	for _, e := range g.Edges() {
		adj[e.SourceID][e.TargetID] += e.Weight
		adj[e.TargetID][e.SourceID] += e.Weight
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changed := 0
		for _, u := range order {
			neighbors := adj[u]
			if len(neighbors) == 0 {
				continue
			}

			weights := make(map[string]float64)
			best := 0.0
			for v, w := range neighbors {
				weights[labels[v]] += w
				if weights[labels[v]] > best {
					best = weights[labels[v]]
				}
			}

			// Ties go to the lexicographically largest label.
			var candidates []string
			for label, w := range weights {
				if w == best {
					candidates = append(candidates, label)
				}
			}
			sort.Strings(candidates)
			winner := candidates[len(candidates)-1]

			if labels[u] != winner {
				labels[u] = winner
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	return group(g, labels), nil
}
