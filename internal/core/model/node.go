package model

// Position is an optional layout hint carried through from the collaborator
// that produced the node.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Node struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties,omitempty"`
	Position   *Position  `json:"position,omitempty"`
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Properties = n.Properties.Clone()
	if n.Position != nil {
		p := *n.Position
		c.Position = &p
	}
	return &c
}
