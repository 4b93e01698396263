package embedding

import (
	"errors"
	"hash/fnv"
	"math"

	"github.com/agenthands/kgrefine/internal/core/similarity"
)

// ErrNoSignal is returned by a generator that has nothing to encode for a
// subject; the cache then averages over the remaining generators.
var ErrNoSignal = errors.New("embedding: no signal for subject")

// Generator produces one partial embedding of length dim.
type Generator interface {
	Name() string
	Generate(s Subject, ctx Context, dim int) ([]float64, error)
}

// TextGenerator hashes label, type and property tokens into a sublinear
// term-frequency vector.
type TextGenerator struct{}

func (TextGenerator) Name() string { return "text" }

func (TextGenerator) Generate(s Subject, _ Context, dim int) ([]float64, error) {
	counts := make(map[string]float64)
	for _, tok := range similarity.Tokenize(s.Label) {
		counts[tok]++
	}
	if s.Type != "" {
		counts["type:"+similarity.Fold(s.Type)]++
	}
	for _, key := range s.Properties.Keys() {
		for _, v := range s.Properties[key].Scalars() {
			for _, tok := range similarity.Tokenize(v.String()) {
				counts[key+"="+tok] += 0.5
			}
		}
	}
	if len(counts) == 0 {
		return nil, ErrNoSignal
	}
	vec := make([]float64, dim)
	for tok, tf := range counts {
		addHashed(vec, tok, 1+math.Log(1+tf))
	}
	return normalize(vec), nil
}

// NeighborhoodGenerator encodes the relation types and neighbour labels of
// the subject's context.
type NeighborhoodGenerator struct{}

func (NeighborhoodGenerator) Name() string { return "neighborhood" }

func (NeighborhoodGenerator) Generate(_ Subject, ctx Context, dim int) ([]float64, error) {
	if ctx.IsEmpty() {
		return nil, ErrNoSignal
	}
	vec := make([]float64, dim)
	for _, rel := range ctx.RelationTypes {
		addHashed(vec, "rel:"+similarity.Fold(rel), 1)
	}
	for _, label := range ctx.NeighborLabels {
		for _, tok := range similarity.Tokenize(label) {
			addHashed(vec, "nbr:"+tok, 0.5)
		}
	}
	return normalize(vec), nil
}

// StructuralGenerator is the fallback: a handful of size features followed
// by a hashed one-hot of the type.
type StructuralGenerator struct{}

func (StructuralGenerator) Name() string { return "structural" }

func (StructuralGenerator) Generate(s Subject, ctx Context, dim int) ([]float64, error) {
	features := []float64{
		math.Log1p(float64(len([]rune(s.Label)))),
		math.Log1p(float64(len(s.Properties))),
		math.Log1p(float64(len(ctx.NeighborLabels))),
		math.Log1p(float64(len(ctx.RelationTypes))),
	}
	vec := make([]float64, dim)
	copy(vec, features)
	if rest := dim - len(features); rest > 0 {
		vec[len(features)+int(hash32(s.Type)%uint32(rest))] = 1
	}
	return normalize(vec), nil
}

func addHashed(vec []float64, token string, weight float64) {
	h := hash32(token)
	idx := int(h % uint32(len(vec)))
	if h&(1<<31) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

func hash32(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

func normalize(vec []float64) []float64 {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return vec
	}
	n := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= n
	}
	return vec
}

// fit pads with zeros or truncates v to dim.
func fit(v []float64, dim int) []float64 {
	if len(v) == dim {
		return v
	}
	out := make([]float64, dim)
	copy(out, v)
	return out
}
