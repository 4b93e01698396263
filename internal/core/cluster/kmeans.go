package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

var ErrInvalidK = errors.New("cluster: k must be positive")

// MaxK caps the estimated cluster count.
const MaxK = 20

// KMeansOptions configures a k-means run.
type KMeansOptions struct {
	K             int // 0 estimates k from the row count
	MaxIterations int
	Seed          int64
}

func DefaultKMeansOptions() KMeansOptions {
	return KMeansOptions{MaxIterations: 100, Seed: 42}
}

// KMeansResult holds one label per input row.
type KMeansResult struct {
	K          int         `json:"k"`
	Labels     []int       `json:"labels"`
	Centroids  [][]float64 `json:"centroids"`
	Iterations int         `json:"iterations"`
	Inertia    float64     `json:"inertia"`
}

// EstimateK returns 2 for ten rows or fewer and floor(sqrt(n)) capped at
// MaxK otherwise. It never exceeds n.
func EstimateK(n int) int {
	k := 2
	if n > 10 {
		k = int(math.Sqrt(float64(n)))
	}
	if k > MaxK {
		k = MaxK
	}
	if k > n {
		k = n
	}
	return k
}

// KMeans partitions rows with Lloyd's algorithm from k-means++ seeds.
func KMeans(rows [][]float64, opts KMeansOptions) (KMeansResult, error) {
	n := len(rows)
	if n == 0 {
		return KMeansResult{}, ErrNoData
	}
	k := opts.K
	if k == 0 {
		k = EstimateK(n)
	}
	if k < 0 {
		return KMeansResult{}, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	if k > n {
		k = n
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 100
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	centroids := seedPlusPlus(rows, k, rng)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	iter := 0
	for iter < opts.MaxIterations {
		iter++
		changed := assign(rows, centroids, labels)
		update(rows, centroids, labels)
		if changed == 0 {
			break
		}
	}

	var inertia float64
	for i, row := range rows {
		d := floats.Distance(row, centroids[labels[i]], 2)
		inertia += d * d
	}
	return KMeansResult{K: k, Labels: labels, Centroids: centroids, Iterations: iter, Inertia: inertia}, nil
}

// seedPlusPlus picks the first centroid uniformly and each next one with
// probability proportional to its squared distance from the chosen ones.
func seedPlusPlus(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(rows)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), rows[rng.Intn(n)]...))

	minDist := make([]float64, n)
	for i, row := range rows {
		d := floats.Distance(row, centroids[0], 2)
		minDist[i] = d * d
	}
	for len(centroids) < k {
		total := floats.Sum(minDist)
		idx := n - 1
		if total > 0 {
			target := rng.Float64() * total
			cum := 0.0
			for i, d := range minDist {
				cum += d
				if cum >= target {
					idx = i
					break
				}
			}
		} else {
			idx = rng.Intn(n)
		}
		c := append([]float64(nil), rows[idx]...)
		centroids = append(centroids, c)
		for i, row := range rows {
			d := floats.Distance(row, c, 2)
			if d*d < minDist[i] {
				minDist[i] = d * d
			}
		}
	}
	return centroids
}

func assign(rows, centroids [][]float64, labels []int) int {
	changed := 0
	for i, row := range rows {
		best, bestDist := 0, math.Inf(1)
		for c, centroid := range centroids {
			if d := floats.Distance(row, centroid, 2); d < bestDist {
				best, bestDist = c, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed++
		}
	}
	return changed
}

// update moves each centroid to the mean of its members. Empty clusters keep
// their previous centroid.
func update(rows, centroids [][]float64, labels []int) {
	dim := len(rows[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, row := range rows {
		floats.Add(sums[labels[i]], row)
		counts[labels[i]]++
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		centroids[c] = sums[c]
	}
}
