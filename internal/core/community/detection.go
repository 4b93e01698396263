// Package community finds groups of densely connected nodes.
package community

import (
	"fmt"

	"github.com/agenthands/kgrefine/internal/core/graph"
)

// MinSize is the smallest group reported as a community.
const MinSize = 2

// Detector partitions the graph into communities of node ids. Communities
// are ordered by their first member and members follow graph insertion
// order.
type Detector interface {
	Detect(g *graph.Graph) ([][]string, error)
}

// NewDetector returns the detector registered under name: "lpa" or
// "components".
func NewDetector(name string) (Detector, error) {
	switch name {
	case "", "lpa":
		return NewLabelPropagationDetector(), nil
	case "components":
		return ComponentDetector{}, nil
	default:
		return nil, fmt.Errorf("unknown community algorithm %q", name)
	}
}

// ComponentDetector reports connected components.
type ComponentDetector struct{}

func (ComponentDetector) Detect(g *graph.Graph) ([][]string, error) {
	var out [][]string
	for _, comp := range g.Components() {
		if len(comp) >= MinSize {
			out = append(out, comp)
		}
	}
	return out, nil
}

// group collects ids sharing a label, keeping insertion order.
func group(g *graph.Graph, labels map[string]string) [][]string {
	index := make(map[string]int)
	var out [][]string
	for _, n := range g.Nodes() {
		label := labels[n.ID]
		i, ok := index[label]
		if !ok {
			i = len(out)
			index[label] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], n.ID)
	}

	kept := out[:0]
	for _, c := range out {
		if len(c) >= MinSize {
			kept = append(kept, c)
		}
	}
	return kept
}
