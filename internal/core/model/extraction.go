package model

// Entity is the record handed over by the extraction collaborator.
type Entity struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Attributes Properties `json:"attributes,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
}

type Relation struct {
	ID         string     `json:"id,omitempty"`
	SourceID   string     `json:"source_id"`
	TargetID   string     `json:"target_id"`
	Type       string     `json:"type"`
	Attributes Properties `json:"attributes,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	Weight     float64    `json:"weight,omitempty"`
}

// Document is the on-disk shape of an extraction batch.
type Document struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// InferredEdge is a relation proposed by the inference engine. It only
// becomes an Edge once the caller commits it.
type InferredEdge struct {
	SourceID     string   `json:"source_id"`
	TargetID     string   `json:"target_id"`
	RelationType string   `json:"relation_type"`
	Confidence   float64  `json:"confidence"`
	Method       string   `json:"method"`
	Evidence     []string `json:"evidence,omitempty"`
}
