package similarity

import (
	"errors"
	"math"
)

// ErrDegenerateCorpus is returned when a corpus has too few distinct terms to
// fit a vectorizer.
var ErrDegenerateCorpus = errors.New("similarity: corpus cannot be vectorized")

// TFIDF is a term-frequency / inverse-document-frequency vectorizer fitted on
// a fixed corpus. It uses the smoothed idf ln((1+N)/(1+df)) + 1.
type TFIDF struct {
	idf  map[string]float64
	docs int
}

func NewTFIDF(corpus []string) (*TFIDF, error) {
	df := make(map[string]int)
	docs := 0
	for _, doc := range corpus {
		terms := toSet(Tokenize(doc))
		if len(terms) == 0 {
			continue
		}
		docs++
		for term := range terms {
			df[term]++
		}
	}
	if len(df) < 2 {
		return nil, ErrDegenerateCorpus
	}

	idf := make(map[string]float64, len(df))
	for term, n := range df {
		idf[term] = math.Log(float64(1+docs)/float64(1+n)) + 1
	}
	return &TFIDF{idf: idf, docs: docs}, nil
}

// Vector returns the L2-normalized tf-idf vector of s. Terms outside the
// fitted vocabulary get the idf of a term seen in no document.
func (t *TFIDF) Vector(s string) map[string]float64 {
	vec := make(map[string]float64)
	for _, term := range Tokenize(s) {
		vec[term]++
	}
	unseen := math.Log(float64(1+t.docs)) + 1
	var norm float64
	for term, tf := range vec {
		w, ok := t.idf[term]
		if !ok {
			w = unseen
		}
		vec[term] = tf * w
		norm += vec[term] * vec[term]
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}

// Similarity is the cosine of the two tf-idf vectors.
func (t *TFIDF) Similarity(a, b string) float64 {
	va, vb := t.Vector(a), t.Vector(b)
	if len(va) == 0 || len(vb) == 0 {
		return 0
	}
	var dot float64
	for term, w := range va {
		dot += w * vb[term]
	}
	return clamp01(dot)
}

// TextSimilarity fits a vectorizer on the pair and returns the tf-idf cosine,
// falling back to token Jaccard when the pair cannot be vectorized.
func TextSimilarity(a, b string) float64 {
	vec, err := NewTFIDF([]string{a, b})
	if err != nil {
		return TokenJaccard(a, b)
	}
	return vec.Similarity(a, b)
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x) || x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
