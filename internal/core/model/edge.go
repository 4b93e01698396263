package model

// DefaultEdgeWeight is assigned to edges inserted with a zero weight.
const DefaultEdgeWeight = 1.0

type Edge struct {
	ID         string     `json:"id"`
	SourceID   string     `json:"source_id"`
	TargetID   string     `json:"target_id"`
	Type       string     `json:"type"` // relation label, e.g. WORK_FOR
	Properties Properties `json:"properties,omitempty"`
	Weight     float64    `json:"weight"`

	// Set only on derived edges.
	Inferred        bool    `json:"inferred,omitempty"`
	InferenceMethod string  `json:"inference_method,omitempty"`
	Confidence      float64 `json:"confidence,omitempty"`
}

func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	c := *e
	c.Properties = e.Properties.Clone()
	return &c
}

// Other returns the endpoint opposite to id.
func (e *Edge) Other(id string) string {
	if e.SourceID == id {
		return e.TargetID
	}
	return e.SourceID
}
