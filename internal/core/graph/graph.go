// Package graph is the in-memory knowledge graph the refinement stages run
// over. A Graph is owned by one pipeline run and is not safe for concurrent
// mutation.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/agenthands/kgrefine/internal/core/model"
)

type Graph struct {
	nodes     map[string]*model.Node
	edges     map[string]*model.Edge
	incidence map[string]map[string]struct{} // node id -> incident edge ids

	nodeOrder []string
	edgeOrder []string

	onRemove []func(id string)

	// NewEdgeID generates ids for edges inserted without one.
	NewEdgeID func() string
}

func New() *Graph {
	return &Graph{
		nodes:     make(map[string]*model.Node),
		edges:     make(map[string]*model.Edge),
		incidence: make(map[string]map[string]struct{}),
		NewEdgeID: func() string { return uuid.New().String() },
	}
}

// OnRemove registers a callback invoked with the id of every removed node
// or edge, after the removal has been applied.
func (g *Graph) OnRemove(fn func(id string)) {
	g.onRemove = append(g.onRemove, fn)
}

// AddNode stores a copy of n.
func (g *Graph) AddNode(n *model.Node) error {
	if n == nil || strings.TrimSpace(n.ID) == "" {
		return ErrEmptyID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("add node %q: %w", n.ID, ErrDuplicateID)
	}
	g.nodes[n.ID] = n.Clone()
	g.incidence[n.ID] = make(map[string]struct{})
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return nil
}

// AddEdge stores a copy of e, assigning an id when it has none and the
// default weight when its weight is zero. The stored edge is returned.
func (g *Graph) AddEdge(e *model.Edge) (*model.Edge, error) {
	if e == nil {
		return nil, ErrEmptyID
	}
	stored := e.Clone()
	if stored.ID == "" {
		stored.ID = g.NewEdgeID()
	}
	if _, exists := g.edges[stored.ID]; exists {
		return nil, fmt.Errorf("add edge %q: %w", stored.ID, ErrDuplicateID)
	}
	if _, ok := g.nodes[stored.SourceID]; !ok {
		return nil, &ReferenceError{EdgeID: stored.ID, MissingID: stored.SourceID}
	}
	if _, ok := g.nodes[stored.TargetID]; !ok {
		return nil, &ReferenceError{EdgeID: stored.ID, MissingID: stored.TargetID}
	}
	if stored.SourceID == stored.TargetID {
		return nil, fmt.Errorf("add edge %q on %q: %w", stored.ID, stored.SourceID, ErrSelfLoop)
	}
	if stored.Weight == 0 {
		stored.Weight = model.DefaultEdgeWeight
	}

	g.edges[stored.ID] = stored
	g.incidence[stored.SourceID][stored.ID] = struct{}{}
	g.incidence[stored.TargetID][stored.ID] = struct{}{}
	g.edgeOrder = append(g.edgeOrder, stored.ID)
	return stored, nil
}

// RemoveNode removes the node and, first, every edge incident to it.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("remove node %q: %w", id, ErrNodeNotFound)
	}
	for _, edgeID := range g.sortedIncidence(id) {
		if err := g.RemoveEdge(edgeID); err != nil {
			return err
		}
	}
	delete(g.nodes, id)
	delete(g.incidence, id)
	g.nodeOrder = without(g.nodeOrder, id)
	g.notifyRemoved(id)
	return nil
}

func (g *Graph) RemoveEdge(id string) error {
	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("remove edge %q: %w", id, ErrEdgeNotFound)
	}
	delete(g.incidence[e.SourceID], id)
	delete(g.incidence[e.TargetID], id)
	delete(g.edges, id)
	g.edgeOrder = without(g.edgeOrder, id)
	g.notifyRemoved(id)
	return nil
}

// Node returns the stored node. Callers must not mutate it.
func (g *Graph) Node(id string) (*model.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the stored edge. Callers must not mutate it.
func (g *Graph) Edge(id string) (*model.Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*model.Node {
	out := make([]*model.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []*model.Edge {
	out := make([]*model.Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, g.edges[id])
	}
	return out
}

// NodesByType buckets nodes by type, preserving insertion order inside each
// bucket. The returned type list is ordered by first appearance.
func (g *Graph) NodesByType() ([]string, map[string][]*model.Node) {
	var types []string
	buckets := make(map[string][]*model.Node)
	for _, n := range g.Nodes() {
		if _, seen := buckets[n.Type]; !seen {
			types = append(types, n.Type)
		}
		buckets[n.Type] = append(buckets[n.Type], n)
	}
	return types, buckets
}

// IncidentEdges returns the edges touching id, in insertion order.
func (g *Graph) IncidentEdges(id string) []*model.Edge {
	inc, ok := g.incidence[id]
	if !ok {
		return nil
	}
	out := make([]*model.Edge, 0, len(inc))
	for _, eid := range g.edgeOrder {
		if _, ok := inc[eid]; ok {
			out = append(out, g.edges[eid])
		}
	}
	return out
}

// Neighbors returns the distinct nodes adjacent to id in either direction.
func (g *Graph) Neighbors(id string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range g.IncidentEdges(id) {
		other := e.Other(id)
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		out = append(out, other)
	}
	return out
}

// HasEdge reports whether an edge source -[relType]-> target exists.
func (g *Graph) HasEdge(source, target, relType string) bool {
	for eid := range g.incidence[source] {
		e := g.edges[eid]
		if e.SourceID == source && e.TargetID == target && e.Type == relType {
			return true
		}
	}
	return false
}

// Clone returns an independent copy. Removal callbacks are not copied.
func (g *Graph) Clone() *Graph {
	c := New()
	c.NewEdgeID = g.NewEdgeID
	for _, n := range g.Nodes() {
		_ = c.AddNode(n)
	}
	for _, e := range g.Edges() {
		_, _ = c.AddEdge(e)
	}
	return c
}

func (g *Graph) notifyRemoved(id string) {
	for _, fn := range g.onRemove {
		fn(id)
	}
}

func (g *Graph) sortedIncidence(id string) []string {
	ids := make([]string, 0, len(g.incidence[id]))
	for eid := range g.incidence[id] {
		ids = append(ids, eid)
	}
	sort.Strings(ids)
	return ids
}

func without(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
