package similarity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/kgrefine/internal/core/model"
)

// ErrEmptyInput is returned by label strategies when a label is blank.
var ErrEmptyInput = errors.New("similarity: empty label")

// Reasons reported by the default ladder.
const (
	ReasonExact           = "exact match"
	ReasonCaseInsensitive = "case-insensitive match"
	ReasonNormalized      = "normalized match"
	ReasonAbbreviation    = "abbreviation match"
	ReasonSemantic        = "semantic similarity"
	ReasonPartial         = "partial match"
	ReasonProperty        = "property similarity"
)

// Strategy is one rung of the duplicate-detection ladder. A strategy fires
// when its score reaches its own cutoff.
type Strategy interface {
	Name() string
	Cutoff() float64
	Score(a, b *model.Node) (float64, error)
}

type labelStrategy struct {
	name   string
	cutoff float64
	score  func(a, b string) float64
}

func (s labelStrategy) Name() string    { return s.name }
func (s labelStrategy) Cutoff() float64 { return s.cutoff }

func (s labelStrategy) Score(a, b *model.Node) (float64, error) {
	if strings.TrimSpace(a.Label) == "" || strings.TrimSpace(b.Label) == "" {
		return 0, fmt.Errorf("%s on %q/%q: %w", s.name, a.ID, b.ID, ErrEmptyInput)
	}
	return s.score(a.Label, b.Label), nil
}

// NewLabelStrategy wraps a string similarity function as a ladder rung.
func NewLabelStrategy(name string, cutoff float64, fn func(a, b string) float64) Strategy {
	return labelStrategy{name: name, cutoff: cutoff, score: fn}
}

// propertyStrategy compares the attribute sets of two nodes. The record
// confidence is bookkeeping about the extraction, not an attribute of the
// entity, so it is left out.
type propertyStrategy struct {
	cutoff float64
}

func (s propertyStrategy) Name() string    { return ReasonProperty }
func (s propertyStrategy) Cutoff() float64 { return s.cutoff }

func (s propertyStrategy) Score(a, b *model.Node) (float64, error) {
	return PropertySimilarity(attributes(a.Properties), attributes(b.Properties)), nil
}

func attributes(p model.Properties) model.Properties {
	if _, ok := p[model.ConfidenceProperty]; !ok {
		return p
	}
	out := p.Clone()
	delete(out, model.ConfidenceProperty)
	return out
}

// LadderOptions tunes the default ladder.
type LadderOptions struct {
	SemanticCutoff float64
	PartialCutoff  float64
	// Corpus fits the tf-idf rung; the rung is left out when the corpus is
	// degenerate.
	Corpus []string
}

func DefaultLadderOptions() LadderOptions {
	return LadderOptions{SemanticCutoff: 0.8, PartialCutoff: 0.8}
}

// DefaultLadder builds the ordered ladder: exact, case-insensitive,
// normalized, abbreviation, tf-idf (when it can be fitted), edit distance and
// finally the property-set fallback.
func DefaultLadder(opts LadderOptions) []Strategy {
	ladder := []Strategy{
		NewLabelStrategy(ReasonExact, ExactScore, ExactMatch),
		NewLabelStrategy(ReasonCaseInsensitive, CaseInsensitiveScore, CaseInsensitiveMatch),
		NewLabelStrategy(ReasonNormalized, NormalizedScore, NormalizedMatch),
		NewLabelStrategy(ReasonAbbreviation, ContainmentScore, Abbreviation),
	}
	if vec, err := NewTFIDF(opts.Corpus); err == nil {
		ladder = append(ladder, NewLabelStrategy(ReasonSemantic, opts.SemanticCutoff, vec.Similarity))
	}
	ladder = append(ladder,
		NewLabelStrategy(ReasonPartial, opts.PartialCutoff, func(a, b string) float64 {
			return EditSimilarity(Normalize(a), Normalize(b))
		}),
		propertyStrategy{cutoff: 0},
	)
	return ladder
}

// Match is the outcome of running the ladder on a pair.
type Match struct {
	Score  float64
	Reason string
}

// Evaluate walks the ladder in order and returns the first rung that fires.
// An error from any rung aborts the evaluation of the pair.
func Evaluate(ladder []Strategy, a, b *model.Node) (Match, error) {
	for _, s := range ladder {
		score, err := s.Score(a, b)
		if err != nil {
			return Match{}, err
		}
		if score >= s.Cutoff() {
			return Match{Score: score, Reason: s.Name()}, nil
		}
	}
	return Match{}, nil
}
