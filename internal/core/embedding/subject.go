package embedding

import (
	"encoding/json"
	"hash/fnv"
	"sort"
	"strconv"

	"github.com/agenthands/kgrefine/internal/core/graph"
	"github.com/agenthands/kgrefine/internal/core/model"
)

// Subject is the content of a node or edge that an embedding is built from.
type Subject struct {
	ID         string
	Label      string
	Type       string
	Properties model.Properties
}

func NodeSubject(n *model.Node) Subject {
	return Subject{ID: n.ID, Label: n.Label, Type: n.Type, Properties: n.Properties}
}

// EdgeSubject embeds a relation by its type, keyed by the edge id.
func EdgeSubject(e *model.Edge) Subject {
	return Subject{ID: e.ID, Label: e.Type, Type: "RELATION", Properties: e.Properties}
}

// Context is the optional graph neighbourhood mixed into an embedding.
type Context struct {
	NeighborLabels []string
	RelationTypes  []string
}

func (c Context) IsEmpty() bool {
	return len(c.NeighborLabels) == 0 && len(c.RelationTypes) == 0
}

// NodeContext collects the labels of id's neighbours and the types of its
// incident edges.
func NodeContext(g *graph.Graph, id string) Context {
	var ctx Context
	for _, nb := range g.Neighbors(id) {
		if n, ok := g.Node(nb); ok {
			ctx.NeighborLabels = append(ctx.NeighborLabels, n.Label)
		}
	}
	seen := make(map[string]bool)
	for _, e := range g.IncidentEdges(id) {
		if !seen[e.Type] {
			seen[e.Type] = true
			ctx.RelationTypes = append(ctx.RelationTypes, e.Type)
		}
	}
	return ctx
}

// Fingerprint derives the cache key from the subject and its context. It
// depends only on content: property and context order do not matter.
func Fingerprint(s Subject, ctx Context) string {
	neighbors := append([]string(nil), ctx.NeighborLabels...)
	relations := append([]string(nil), ctx.RelationTypes...)
	sort.Strings(neighbors)
	sort.Strings(relations)

	// encoding/json emits map keys sorted, which keeps the encoding canonical.
	payload, err := json.Marshal(struct {
		ID         string           `json:"i"`
		Label      string           `json:"l"`
		Type       string           `json:"t"`
		Properties model.Properties `json:"p"`
		Neighbors  []string         `json:"n"`
		Relations  []string         `json:"r"`
	}{s.ID, s.Label, s.Type, s.Properties, neighbors, relations})
	if err != nil {
		payload = []byte(s.ID + "\x00" + s.Label + "\x00" + s.Type)
	}

	h := fnv.New64a()
	h.Write(payload)
	return strconv.FormatUint(h.Sum64(), 36)
}
