// Package dedupe merges nodes that describe the same real-world entity.
package dedupe

import (
	"fmt"
	"log"

	"github.com/agenthands/kgrefine/internal/core/graph"
	"github.com/agenthands/kgrefine/internal/core/model"
	"github.com/agenthands/kgrefine/internal/core/similarity"
)

// DefaultThreshold is the minimum ladder score for two nodes to be grouped.
const DefaultThreshold = 0.8

type Resolver struct {
	Threshold float64
	Ladder    similarity.LadderOptions
}

func NewResolver(threshold float64) *Resolver {
	return &Resolver{
		Threshold: threshold,
		Ladder:    similarity.DefaultLadderOptions(),
	}
}

// FindDuplicates groups same-type nodes whose ladder score reaches the
// threshold. Each node ends up in at most one group. Types are visited in
// order of first appearance and nodes in insertion order, so the result is
// deterministic.
func (r *Resolver) FindDuplicates(g *graph.Graph) []model.AlignmentResult {
	var results []model.AlignmentResult

	types, buckets := g.NodesByType()
	for _, typ := range types {
		nodes := buckets[typ]
		if len(nodes) < 2 {
			continue
		}
		ladder := similarity.DefaultLadder(r.ladderOptions(nodes))

		consumed := make([]bool, len(nodes))
		for i, a := range nodes {
			if consumed[i] {
				continue
			}
			group := []*model.Node{a}
			confidence, reason := 1.0, ""
			for j := i + 1; j < len(nodes); j++ {
				if consumed[j] {
					continue
				}
				b := nodes[j]
				m, err := similarity.Evaluate(ladder, a, b)
				if err != nil {
					log.Printf("Warning: similarity failed for %q/%q, treating as 0: %v", a.ID, b.ID, err)
					continue
				}
				if m.Score < r.Threshold {
					continue
				}
				consumed[j] = true
				group = append(group, b)
				if reason == "" || m.Score < confidence {
					confidence, reason = m.Score, m.Reason
				}
			}
			if len(group) < 2 {
				continue
			}
			consumed[i] = true
			results = append(results, alignment(group, confidence, reason))
		}
	}
	return results
}

func (r *Resolver) ladderOptions(nodes []*model.Node) similarity.LadderOptions {
	opts := r.Ladder
	opts.Corpus = make([]string, 0, len(nodes))
	for _, n := range nodes {
		opts.Corpus = append(opts.Corpus, n.Label)
	}
	return opts
}

func alignment(group []*model.Node, confidence float64, reason string) model.AlignmentResult {
	canonical := SelectCanonical(group)
	ordered := []*model.Node{canonical}
	var dups []*model.Node
	for _, n := range group {
		if n.ID != canonical.ID {
			dups = append(dups, n)
			ordered = append(ordered, n)
		}
	}
	return model.AlignmentResult{
		CanonicalEntity:   canonical,
		DuplicateEntities: dups,
		Confidence:        confidence,
		Reason:            reason,
		MergedProperties:  MergeProperties(ordered),
		Conflicts:         ConflictingKeys(ordered),
	}
}

// SelectCanonical picks the node with the longest label, then the most
// properties, then the largest id.
func SelectCanonical(group []*model.Node) *model.Node {
	var best *model.Node
	for _, n := range group {
		if best == nil || richer(n, best) {
			best = n
		}
	}
	return best
}

func richer(a, b *model.Node) bool {
	la, lb := len([]rune(a.Label)), len([]rune(b.Label))
	if la != lb {
		return la > lb
	}
	if len(a.Properties) != len(b.Properties) {
		return len(a.Properties) > len(b.Properties)
	}
	return a.ID > b.ID
}

// ApplyAlignmentResults builds a new graph in which every duplicate is folded
// into its canonical node. Edges are redirected to the canonical ids and
// edges that would become self-loops are dropped.
func ApplyAlignmentResults(g *graph.Graph, results []model.AlignmentResult) (*graph.Graph, error) {
	redirect := make(map[string]string)
	merged := make(map[string]model.Properties)
	for _, res := range results {
		merged[res.CanonicalEntity.ID] = res.MergedProperties
		for _, d := range res.DuplicateEntities {
			redirect[d.ID] = res.CanonicalEntity.ID
		}
	}

	out := graph.New()
	out.NewEdgeID = g.NewEdgeID
	for _, n := range g.Nodes() {
		if _, dup := redirect[n.ID]; dup {
			continue
		}
		if props, ok := merged[n.ID]; ok {
			n = n.Clone()
			n.Properties = props
		}
		if err := out.AddNode(n); err != nil {
			return nil, fmt.Errorf("failed to rebuild node %q: %w", n.ID, err)
		}
	}

	dropped := 0
	for _, e := range g.Edges() {
		src, tgt := resolveID(redirect, e.SourceID), resolveID(redirect, e.TargetID)
		if src == tgt {
			dropped++
			continue
		}
		if src != e.SourceID || tgt != e.TargetID {
			e = e.Clone()
			e.SourceID, e.TargetID = src, tgt
		}
		if _, err := out.AddEdge(e); err != nil {
			return nil, fmt.Errorf("failed to rebuild edge %q: %w", e.ID, err)
		}
	}
	if dropped > 0 {
		log.Printf("Dropped %d edges collapsed into self-loops by merging", dropped)
	}
	return out, nil
}

func resolveID(redirect map[string]string, id string) string {
	if to, ok := redirect[id]; ok {
		return to
	}
	return id
}

// Resolve runs FindDuplicates and ApplyAlignmentResults until a pass finds
// nothing, so resolving the output again is a no-op. Every pass that merges
// removes at least one node, which bounds the loop. The returned graph is
// always a new graph, even when nothing was merged.
func (r *Resolver) Resolve(g *graph.Graph) (*graph.Graph, []model.AlignmentResult, error) {
	var all []model.AlignmentResult
	current := g
	for pass := 1; ; pass++ {
		results := r.FindDuplicates(current)
		if len(results) == 0 {
			if current == g {
				current = g.Clone()
			}
			return current, all, nil
		}
		next, err := ApplyAlignmentResults(current, results)
		if err != nil {
			return nil, nil, fmt.Errorf("resolution pass %d: %w", pass, err)
		}
		log.Printf("Resolution pass %d merged %d groups (%d -> %d nodes)", pass, len(results), current.NodeCount(), next.NodeCount())
		all = append(all, results...)
		current = next
	}
}
