package graph

import (
	"log"

	"github.com/agenthands/kgrefine/internal/core/model"
)

// ConfidenceProperty is the property key under which record confidences are
// kept on nodes and edges.
const ConfidenceProperty = model.ConfidenceProperty

// FromRecords builds a graph from extraction records. Records that violate
// the graph invariants are logged and skipped; the count of skipped records
// is returned alongside the graph.
func FromRecords(entities []model.Entity, relations []model.Relation) (*Graph, int) {
	g := New()
	skipped := 0
	for _, ent := range entities {
		props := ent.Attributes.Clone()
		if ent.Confidence > 0 {
			if props == nil {
				props = make(model.Properties)
			}
			props[ConfidenceProperty] = model.Number(ent.Confidence)
		}
		err := g.AddNode(&model.Node{
			ID:         ent.ID,
			Label:      ent.Name,
			Type:       ent.Type,
			Properties: props,
		})
		if err != nil {
			log.Printf("Warning: skipping entity %q: %v", ent.ID, err)
			skipped++
		}
	}
	for _, rel := range relations {
		props := rel.Attributes.Clone()
		if rel.Confidence > 0 {
			if props == nil {
				props = make(model.Properties)
			}
			props[ConfidenceProperty] = model.Number(rel.Confidence)
		}
		_, err := g.AddEdge(&model.Edge{
			ID:         rel.ID,
			SourceID:   rel.SourceID,
			TargetID:   rel.TargetID,
			Type:       rel.Type,
			Properties: props,
			Weight:     rel.Weight,
		})
		if err != nil {
			log.Printf("Warning: skipping relation %s-[%s]->%s: %v", rel.SourceID, rel.Type, rel.TargetID, err)
			skipped++
		}
	}
	return g, skipped
}
