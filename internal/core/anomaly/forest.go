// Package anomaly flags outlying nodes with an isolation forest.
package anomaly

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MinSamples is the smallest batch that is scored at all.
const MinSamples = 10

const eulerGamma = 0.5772156649

type Config struct {
	Trees         int
	SampleSize    int
	Contamination float64
	Seed          int64
}

func DefaultConfig() Config {
	return Config{Trees: 100, SampleSize: 256, Contamination: 0.1, Seed: 42}
}

type node struct {
	feature     int
	split       float64
	left, right *node
	size        int // leaf only
}

// Forest is a fitted isolation forest.
type Forest struct {
	trees      []*node
	sampleSize int
}

// Fit grows cfg.Trees isolation trees, each on a random subsample of rows.
func Fit(rows [][]float64, cfg Config) *Forest {
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 256
	}
	psi := cfg.SampleSize
	if psi > len(rows) {
		psi = len(rows)
	}
	limit := int(math.Ceil(math.Log2(float64(psi))))
	rng := rand.New(rand.NewSource(cfg.Seed))

	f := &Forest{sampleSize: psi}
	for t := 0; t < cfg.Trees; t++ {
		perm := rng.Perm(len(rows))[:psi]
		sample := make([][]float64, psi)
		for i, idx := range perm {
			sample[i] = rows[idx]
		}
		f.trees = append(f.trees, grow(sample, 0, limit, rng))
	}
	return f
}

func grow(rows [][]float64, depth, limit int, rng *rand.Rand) *node {
	if depth >= limit || len(rows) <= 1 {
		return &node{size: len(rows)}
	}

	// only features that still vary can split
	dims := len(rows[0])
	col := make([]float64, len(rows))
	var candidates []int
	for j := 0; j < dims; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		if floats.Max(col) > floats.Min(col) {
			candidates = append(candidates, j)
		}
	}
	if len(candidates) == 0 {
		return &node{size: len(rows)}
	}

	feature := candidates[rng.Intn(len(candidates))]
	for i, r := range rows {
		col[i] = r[feature]
	}
	lo, hi := floats.Min(col), floats.Max(col)
	split := lo + rng.Float64()*(hi-lo)

	var left, right [][]float64
	for _, r := range rows {
		if r[feature] < split {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return &node{
		feature: feature,
		split:   split,
		left:    grow(left, depth+1, limit, rng),
		right:   grow(right, depth+1, limit, rng),
	}
}

func pathLength(x []float64, n *node, depth int) float64 {
	if n.left == nil {
		return float64(depth) + averagePath(n.size)
	}
	if x[n.feature] < n.split {
		return pathLength(x, n.left, depth+1)
	}
	return pathLength(x, n.right, depth+1)
}

// averagePath is the expected path length of an unsuccessful search in a
// binary search tree of n points.
func averagePath(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	h := math.Log(float64(n-1)) + eulerGamma
	return 2*h - 2*float64(n-1)/float64(n)
}

// Score returns the anomaly score of x in (0, 1]; higher is more anomalous.
func (f *Forest) Score(x []float64) float64 {
	lengths := make([]float64, len(f.trees))
	for i, t := range f.trees {
		lengths[i] = pathLength(x, t, 0)
	}
	c := averagePath(f.sampleSize)
	if c == 0 {
		return 0.5
	}
	return math.Pow(2, -stat.Mean(lengths, nil)/c)
}

// Result is a flagged node and its score.
type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Detect flags the ceil(contamination*n) highest-scoring rows. Batches with
// fewer than MinSamples rows are not scored and yield no anomalies.
func Detect(ids []string, rows [][]float64, cfg Config) []Result {
	n := len(rows)
	if n < MinSamples || cfg.Contamination <= 0 {
		return nil
	}
	flag := int(math.Ceil(cfg.Contamination * float64(n)))
	if flag > n {
		flag = n
	}

	f := Fit(rows, cfg)
	scored := make([]Result, n)
	for i, r := range rows {
		scored[i] = Result{ID: ids[i], Score: f.Score(r)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	return scored[:flag]
}
