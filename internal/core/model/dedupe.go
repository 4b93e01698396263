package model

// AlignmentResult describes one group of duplicate nodes and how they are
// folded into a single canonical node.
type AlignmentResult struct {
	CanonicalEntity   *Node      `json:"canonical_entity"`
	DuplicateEntities []*Node    `json:"duplicate_entities"`
	Confidence        float64    `json:"confidence"`
	Reason            string     `json:"reason"` // name of the matching strategy
	MergedProperties  Properties `json:"merged_properties"`

	// Conflicts lists the keys whose values disagreed and were kept as lists.
	Conflicts []string `json:"conflicts,omitempty"`
}

// DuplicateIDs lists the ids removed by this result.
func (r AlignmentResult) DuplicateIDs() []string {
	ids := make([]string, len(r.DuplicateEntities))
	for i, d := range r.DuplicateEntities {
		ids[i] = d.ID
	}
	return ids
}
