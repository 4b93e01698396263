// Package inference proposes relations that the graph implies but does not
// assert. Proposals are returned to the caller; the graph is never mutated.
package inference

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/kgrefine/internal/core/graph"
	"github.com/agenthands/kgrefine/internal/core/model"
)

// Config bounds the search and sets the acceptance thresholds.
type Config struct {
	// ConfidenceThreshold applies to rule and path proposals.
	ConfidenceThreshold float64
	// TypeThreshold applies to type-table proposals.
	TypeThreshold float64
	// MaxPathDepth is the maximum number of hops between a candidate pair.
	MaxPathDepth int
	// MaxPaths caps how many paths are examined per pair.
	MaxPaths int
}

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.5,
		TypeThreshold:       0.6,
		MaxPathDepth:        3,
		MaxPaths:            5,
	}
}

type Engine struct {
	Config    Config
	Rules     []Rule
	Patterns  []Pattern
	TypeHints map[TypePair][]TypeHint
}

func NewEngine(cfg Config) *Engine {
	if cfg.MaxPathDepth <= 0 {
		cfg.MaxPathDepth = 3
	}
	if cfg.MaxPaths <= 0 {
		cfg.MaxPaths = 5
	}
	return &Engine{
		Config:    cfg,
		Rules:     DefaultRules(),
		Patterns:  DefaultPatterns(),
		TypeHints: DefaultTypeHints(),
	}
}

type triple struct {
	source, target, relType string
}

// run holds the per-call indexes.
type run struct {
	g        *graph.Graph
	existing map[triple]struct{}
	relevant map[string]bool
	patterns map[string]string
}

// Infer scores every candidate pair and returns the accepted proposals in
// candidate order. A candidate pair is an ordered pair of distinct nodes
// within MaxPathDepth hops of each other.
func (e *Engine) Infer(g *graph.Graph) []model.InferredEdge {
	r := e.newRun(g)
	proposed := make(map[triple]struct{})

	var out []model.InferredEdge
	for _, src := range g.Nodes() {
		for _, tgt := range e.reachable(g, src.ID) {
			if r.connected(src.ID, tgt) {
				continue
			}
			best, ok := e.best(r, src, tgt)
			if !ok {
				continue
			}
			t := triple{best.SourceID, best.TargetID, best.RelationType}
			if _, dup := proposed[t]; dup {
				continue
			}
			proposed[t] = struct{}{}
			if Symmetric[t.relType] {
				proposed[triple{t.target, t.source, t.relType}] = struct{}{}
			}
			out = append(out, best)
		}
	}
	return out
}

func (e *Engine) newRun(g *graph.Graph) *run {
	r := &run{
		g:        g,
		existing: make(map[triple]struct{}, g.EdgeCount()),
		relevant: make(map[string]bool),
		patterns: make(map[string]string, len(e.Patterns)),
	}
	for _, edge := range g.Edges() {
		r.existing[triple{edge.SourceID, edge.TargetID, edge.Type}] = struct{}{}
	}
	// A rule's own conclusion also connects a pair, so a committed proposal
	// does not invite a weaker one of another type on the next run.
	for _, rule := range e.Rules {
		r.relevant[rule.First.Type] = true
		r.relevant[rule.Second.Type] = true
		r.relevant[rule.Infers] = true
	}
	for _, p := range e.Patterns {
		r.patterns[signature(p.Steps)] = p.Infers
	}
	return r
}

// connected reports whether a rule-relevant relation already links a and b
// in either direction.
func (r *run) connected(a, b string) bool {
	for rel := range r.relevant {
		if r.exists(a, b, rel) || r.exists(b, a, rel) {
			return true
		}
	}
	return false
}

func (r *run) exists(source, target, relType string) bool {
	_, ok := r.existing[triple{source, target, relType}]
	return ok
}

// asserted reports whether the proposal's triple is already in the graph,
// in either direction for symmetric relations.
func (r *run) asserted(p model.InferredEdge) bool {
	if r.exists(p.SourceID, p.TargetID, p.RelationType) {
		return true
	}
	return Symmetric[p.RelationType] && r.exists(p.TargetID, p.SourceID, p.RelationType)
}

// best runs the three strategies and keeps the most confident proposal that
// clears its method threshold and is not already asserted. Ties go to the
// earlier strategy.
func (e *Engine) best(r *run, src *model.Node, tgt string) (model.InferredEdge, bool) {
	var candidates []model.InferredEdge
	if p, ok := e.ruleBased(r, src.ID, tgt); ok {
		candidates = append(candidates, p)
	}
	if p, ok := e.pathBased(r, src.ID, tgt); ok {
		candidates = append(candidates, p)
	}
	if p, ok := e.typeBased(r, src, tgt); ok {
		candidates = append(candidates, p)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	for _, p := range candidates {
		if p.Confidence < e.threshold(p.Method) || r.asserted(p) {
			continue
		}
		return p, true
	}
	return model.InferredEdge{}, false
}

func (e *Engine) threshold(method string) float64 {
	if method == MethodType {
		return e.Config.TypeThreshold
	}
	return e.Config.ConfidenceThreshold
}

// ruleBased fires the most confident rule with a literal two-hop match.
func (e *Engine) ruleBased(r *run, a, b string) (model.InferredEdge, bool) {
	var best model.InferredEdge
	found := false
	for _, rule := range e.Rules {
		if found && rule.Confidence <= best.Confidence {
			continue
		}
		first, second, ok := twoHop(r.g, a, b, rule)
		if !ok {
			continue
		}
		best = model.InferredEdge{
			SourceID:     a,
			TargetID:     b,
			RelationType: rule.Infers,
			Confidence:   rule.Confidence,
			Method:       MethodRule,
			Evidence:     []string{first, second},
		}
		found = true
	}
	return best, found
}

// twoHop finds edges a -First- x -Second- b and returns their ids.
func twoHop(g *graph.Graph, a, b string, rule Rule) (string, string, bool) {
	for _, e1 := range g.IncidentEdges(a) {
		if !matches(e1, a, rule.First) {
			continue
		}
		x := e1.Other(a)
		if x == b {
			continue
		}
		for _, e2 := range g.IncidentEdges(x) {
			if e2.ID == e1.ID || !matches(e2, x, rule.Second) {
				continue
			}
			if e2.Other(x) == b {
				return e1.ID, e2.ID, true
			}
		}
	}
	return "", "", false
}

// matches reports whether walking edge from node follows step.
func matches(edge *model.Edge, from string, step Step) bool {
	if edge.Type != step.Type {
		return false
	}
	if step.Forward {
		return edge.SourceID == from
	}
	return edge.TargetID == from
}

// pathBased searches up to MaxPaths simple paths from a to b and proposes
// the relation of the shortest path whose relation sequence is a known
// pattern.
func (e *Engine) pathBased(r *run, a, b string) (model.InferredEdge, bool) {
	var best model.InferredEdge
	found := false
	for _, p := range e.paths(r.g, a, b) {
		rel, ok := r.patterns[signature(p.steps)]
		if !ok {
			continue
		}
		conf := PathConfidence(len(p.steps))
		if found && conf <= best.Confidence {
			continue
		}
		best = model.InferredEdge{
			SourceID:     a,
			TargetID:     b,
			RelationType: rel,
			Confidence:   conf,
			Method:       MethodPath,
			Evidence:     []string{p.describe()},
		}
		found = true
	}
	return best, found
}

type path struct {
	nodes []string
	steps []Step
}

func (p path) describe() string {
	var sb strings.Builder
	sb.WriteString(p.nodes[0])
	for i, s := range p.steps {
		sb.WriteString(s.String())
		sb.WriteString(p.nodes[i+1])
	}
	return sb.String()
}

// paths runs a depth-first search from a and collects simple paths that end
// at b, stopping after MaxPaths.
func (e *Engine) paths(g *graph.Graph, a, b string) []path {
	var found []path
	visited := map[string]bool{a: true}
	cur := path{nodes: []string{a}}

	var walk func(at string)
	walk = func(at string) {
		if len(found) >= e.Config.MaxPaths || len(cur.steps) >= e.Config.MaxPathDepth {
			return
		}
		for _, edge := range g.IncidentEdges(at) {
			if len(found) >= e.Config.MaxPaths {
				return
			}
			next := edge.Other(at)
			if visited[next] {
				continue
			}
			cur.nodes = append(cur.nodes, next)
			cur.steps = append(cur.steps, Step{Type: edge.Type, Forward: edge.SourceID == at})
			if next == b {
				found = append(found, path{
					nodes: append([]string(nil), cur.nodes...),
					steps: append([]Step(nil), cur.steps...),
				})
			} else {
				visited[next] = true
				walk(next)
				visited[next] = false
			}
			cur.nodes = cur.nodes[:len(cur.nodes)-1]
			cur.steps = cur.steps[:len(cur.steps)-1]
		}
	}
	walk(a)
	return found
}

// typeBased proposes the top entry of the type table for the pair.
func (e *Engine) typeBased(r *run, src *model.Node, tgt string) (model.InferredEdge, bool) {
	target, ok := r.g.Node(tgt)
	if !ok {
		return model.InferredEdge{}, false
	}
	hints := e.TypeHints[TypePair{Source: src.Type, Target: target.Type}]
	if len(hints) == 0 {
		return model.InferredEdge{}, false
	}
	top := hints[0]
	return model.InferredEdge{
		SourceID:     src.ID,
		TargetID:     tgt,
		RelationType: top.Relation,
		Confidence:   top.Confidence,
		Method:       MethodType,
		Evidence:     []string{fmt.Sprintf("%s->%s", src.Type, target.Type)},
	}, true
}

// reachable lists the nodes within MaxPathDepth undirected hops of id, in
// breadth-first order.
func (e *Engine) reachable(g *graph.Graph, id string) []string {
	depth := map[string]int{id: 0}
	queue := []string{id}
	var out []string
	for len(queue) > 0 {
		at := queue[0]
		queue = queue[1:]
		if depth[at] >= e.Config.MaxPathDepth {
			continue
		}
		for _, nb := range g.Neighbors(at) {
			if _, seen := depth[nb]; seen {
				continue
			}
			depth[nb] = depth[at] + 1
			queue = append(queue, nb)
			out = append(out, nb)
		}
	}
	return out
}
