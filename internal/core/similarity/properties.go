package similarity

import (
	"math"

	"github.com/agenthands/kgrefine/internal/core/model"
)

// Weights of the property-set score.
const (
	keyOverlapWeight = 0.3
	valueWeight      = 0.7
)

// PropertySimilarity combines the Jaccard index of the key sets with the mean
// similarity of the values under shared keys:
// 0.3*keyOverlap + 0.7*meanValueSimilarity.
func PropertySimilarity(a, b model.Properties) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	var total float64
	for k, va := range a {
		vb, ok := b[k]
		if !ok {
			continue
		}
		shared++
		total += ValueSimilarity(va, vb)
	}
	union := len(a) + len(b) - shared
	keyOverlap := float64(shared) / float64(union)
	if shared == 0 {
		return keyOverlapWeight * keyOverlap
	}
	return keyOverlapWeight*keyOverlap + valueWeight*(total/float64(shared))
}

// ValueSimilarity compares two property values: equal values score 1,
// numbers by relative difference, text by TextSimilarity, and lists by
// recursively matching their items.
func ValueSimilarity(a, b model.Value) float64 {
	if a.Equal(b) {
		return 1
	}
	switch {
	case a.IsNull() || b.IsNull():
		return 0
	case a.Kind() == model.KindList || b.Kind() == model.KindList:
		return listSimilarity(a.Scalars(), b.Scalars())
	case a.Kind() == model.KindNumber && b.Kind() == model.KindNumber:
		return NumericSimilarity(a.Num(), b.Num())
	case a.Kind() == model.KindBool && b.Kind() == model.KindBool:
		return 0
	default:
		return TextSimilarity(a.String(), b.String())
	}
}

// NumericSimilarity is 1 - |x-y| / max(|x|, |y|), clamped to [0, 1].
func NumericSimilarity(x, y float64) float64 {
	scale := math.Max(math.Abs(x), math.Abs(y))
	if scale == 0 {
		return 1
	}
	return clamp01(1 - math.Abs(x-y)/scale)
}

// listSimilarity averages, in both directions, the best match each item
// finds on the other side.
func listSimilarity(a, b []model.Value) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	best := func(from, to []model.Value) float64 {
		var sum float64
		for _, x := range from {
			var top float64
			for _, y := range to {
				if s := ValueSimilarity(x, y); s > top {
					top = s
				}
			}
			sum += top
		}
		return sum / float64(len(from))
	}
	return (best(a, b) + best(b, a)) / 2
}
