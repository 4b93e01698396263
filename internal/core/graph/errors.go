package graph

import (
	"errors"
	"fmt"
)

// ErrStructural is wrapped by every rejected mutation. A rejected mutation
// is never partially applied.
var ErrStructural = errors.New("graph: structural violation")

var (
	ErrEmptyID      = fmt.Errorf("%w: empty id", ErrStructural)
	ErrDuplicateID  = fmt.Errorf("%w: duplicate id", ErrStructural)
	ErrSelfLoop     = fmt.Errorf("%w: self-loop", ErrStructural)
	ErrNodeNotFound = fmt.Errorf("%w: node not found", ErrStructural)
	ErrEdgeNotFound = fmt.Errorf("%w: edge not found", ErrStructural)
)

// ReferenceError is returned by AddEdge when an endpoint does not exist.
type ReferenceError struct {
	EdgeID    string
	MissingID string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("graph: edge %q references missing node %q", e.EdgeID, e.MissingID)
}

func (e *ReferenceError) Unwrap() error { return ErrStructural }
