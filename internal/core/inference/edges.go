package inference

import (
	"log"

	"github.com/google/uuid"

	"github.com/agenthands/kgrefine/internal/core/graph"
	"github.com/agenthands/kgrefine/internal/core/model"
)

// EvidenceProperty holds the evidence of an inferred edge.
const EvidenceProperty = "evidence"

// ToEdges turns proposals into inferred edges with fresh ids. The edge weight
// is the proposal confidence.
func ToEdges(proposals []model.InferredEdge) []*model.Edge {
	edges := make([]*model.Edge, 0, len(proposals))
	for _, p := range proposals {
		evidence := make([]model.Value, len(p.Evidence))
		for i, ev := range p.Evidence {
			evidence[i] = model.String(ev)
		}
		edges = append(edges, &model.Edge{
			ID:       uuid.New().String(),
			SourceID: p.SourceID,
			TargetID: p.TargetID,
			Type:     p.RelationType,
			Properties: model.Properties{
				graph.ConfidenceProperty: model.Number(p.Confidence),
				EvidenceProperty:         model.List(evidence...),
			},
			Weight:          p.Confidence,
			Inferred:        true,
			InferenceMethod: p.Method,
			Confidence:      p.Confidence,
		})
	}
	return edges
}

// Commit adds the edges to g. Edges the graph rejects are logged and
// skipped; the number added is returned.
func Commit(g *graph.Graph, edges []*model.Edge) int {
	added := 0
	for _, e := range edges {
		if g.HasEdge(e.SourceID, e.TargetID, e.Type) {
			continue
		}
		if _, err := g.AddEdge(e); err != nil {
			log.Printf("Warning: skipping inferred edge %s -[%s]-> %s: %v", e.SourceID, e.Type, e.TargetID, err)
			continue
		}
		added++
	}
	return added
}
