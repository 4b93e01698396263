package similarity

import "github.com/agenthands/kgrefine/internal/core/model"

// Weights configures the composite entity score.
type Weights struct {
	Label       float64
	Type        float64
	JaroWinkler float64
	Properties  float64
}

var DefaultWeights = Weights{Label: 0.4, Type: 0.2, JaroWinkler: 0.2, Properties: 0.2}

// Breakdown is the composite score with its per-dimension parts.
type Breakdown struct {
	Label       float64 `json:"label"`
	Type        float64 `json:"type"`
	JaroWinkler float64 `json:"jaro_winkler"`
	Properties  float64 `json:"properties"`
	Total       float64 `json:"total"`
}

func EntitySimilarity(a, b *model.Node) Breakdown {
	return WeightedEntitySimilarity(a, b, DefaultWeights)
}

func WeightedEntitySimilarity(a, b *model.Node, w Weights) Breakdown {
	var bd Breakdown
	bd.Label = TextSimilarity(a.Label, b.Label)
	if a.Type == b.Type {
		bd.Type = 1
	}
	bd.JaroWinkler = JaroWinkler(Fold(a.Label), Fold(b.Label))
	bd.Properties = PropertySimilarity(a.Properties, b.Properties)

	sum := w.Label + w.Type + w.JaroWinkler + w.Properties
	if sum <= 0 {
		return bd
	}
	bd.Total = clamp01((w.Label*bd.Label + w.Type*bd.Type + w.JaroWinkler*bd.JaroWinkler + w.Properties*bd.Properties) / sum)
	return bd
}
