package inference

import (
	"math"
	"strings"
)

// Inference methods reported on proposals.
const (
	MethodRule = "rule"
	MethodPath = "path"
	MethodType = "type"
)

// Step is one hop of a path: the relation type and whether the edge points
// along the walk (A -[r]-> X) or against it (A <-[r]- X).
type Step struct {
	Type    string
	Forward bool
}

func Out(relType string) Step { return Step{Type: relType, Forward: true} }
func In(relType string) Step  { return Step{Type: relType, Forward: false} }

func (s Step) String() string {
	if s.Forward {
		return "-" + s.Type + "->"
	}
	return "<-" + s.Type + "-"
}

func signature(steps []Step) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, "")
}

// Rule infers A -[Infers]-> B from a literal two-hop path A -First- X -Second- B.
type Rule struct {
	First      Step
	Second     Step
	Infers     string
	Confidence float64
}

func DefaultRules() []Rule {
	return []Rule{
		{First: Out("WORK_FOR"), Second: Out("SUBSIDIARY_OF"), Infers: "WORK_FOR", Confidence: 0.8},
		{First: Out("WORK_FOR"), Second: In("WORK_FOR"), Infers: "COLLEAGUE", Confidence: 0.7},
		{First: Out("LOCATED_IN"), Second: Out("LOCATED_IN"), Infers: "LOCATED_IN", Confidence: 0.75},
		{First: Out("PART_OF"), Second: Out("PART_OF"), Infers: "PART_OF", Confidence: 0.75},
		{First: Out("SUBSIDIARY_OF"), Second: Out("SUBSIDIARY_OF"), Infers: "SUBSIDIARY_OF", Confidence: 0.7},
		{First: Out("MEMBER_OF"), Second: In("MEMBER_OF"), Infers: "ASSOCIATE", Confidence: 0.6},
	}
}

// Pattern maps a relation sequence found by path search to a relation.
type Pattern struct {
	Steps  []Step
	Infers string
}

func DefaultPatterns() []Pattern {
	return []Pattern{
		{Steps: []Step{Out("WORK_FOR"), In("WORK_FOR")}, Infers: "COLLEAGUE"},
		{Steps: []Step{Out("MEMBER_OF"), In("MEMBER_OF")}, Infers: "ASSOCIATE"},
		{Steps: []Step{Out("WORK_FOR"), Out("SUBSIDIARY_OF")}, Infers: "WORK_FOR"},
		{Steps: []Step{Out("WORK_FOR"), Out("SUBSIDIARY_OF"), Out("SUBSIDIARY_OF")}, Infers: "WORK_FOR"},
		{Steps: []Step{Out("WORK_FOR"), Out("LOCATED_IN")}, Infers: "LOCATED_IN"},
		{Steps: []Step{Out("LOCATED_IN"), Out("LOCATED_IN")}, Infers: "LOCATED_IN"},
		{Steps: []Step{Out("LOCATED_IN"), Out("LOCATED_IN"), Out("LOCATED_IN")}, Infers: "LOCATED_IN"},
		{Steps: []Step{Out("PART_OF"), Out("PART_OF")}, Infers: "PART_OF"},
		{Steps: []Step{Out("PART_OF"), Out("PART_OF"), Out("PART_OF")}, Infers: "PART_OF"},
	}
}

// TypeHint is one plausible relation for an ordered pair of node types.
type TypeHint struct {
	Relation   string
	Confidence float64
}

// TypePair keys the type table.
type TypePair struct {
	Source string
	Target string
}

// DefaultTypeHints ranks plausible relations per ordered type pair, best
// first.
func DefaultTypeHints() map[TypePair][]TypeHint {
	hints := make(map[TypePair][]TypeHint)
	hints[TypePair{"PERSON", "ORGANIZATION"}] = []TypeHint{{"WORK_FOR", 0.6}, {"MEMBER_OF", 0.5}}
	hints[TypePair{"PERSON", "PERSON"}] = []TypeHint{{"KNOWS", 0.6}, {"COLLEAGUE", 0.5}}
	hints[TypePair{"PERSON", "LOCATION"}] = []TypeHint{{"LOCATED_IN", 0.5}}
	hints[TypePair{"ORGANIZATION", "LOCATION"}] = []TypeHint{{"LOCATED_IN", 0.6}}
	hints[TypePair{"ORGANIZATION", "ORGANIZATION"}] = []TypeHint{{"PARTNER_OF", 0.5}}
	hints[TypePair{"LOCATION", "LOCATION"}] = []TypeHint{{"PART_OF", 0.5}}
	return hints
}

// Symmetric relation types hold in both directions, so A-[r]->B also
// counts as B-[r]->A when checking for existing triples.
var Symmetric = map[string]bool{
	"COLLEAGUE":  true,
	"ASSOCIATE":  true,
	"KNOWS":      true,
	"PARTNER_OF": true,
}

// PathConfidence decays with path length: 0.8 for a single hop, 0.1 less per
// extra hop, never below 0.1.
func PathConfidence(length int) float64 {
	c := math.Round((0.8-0.1*float64(length-1))*100) / 100
	return math.Max(c, 0.1)
}
