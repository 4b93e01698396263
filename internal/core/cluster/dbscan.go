package cluster

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Noise labels rows that belong to no dense region.
const Noise = -1

type DBSCANOptions struct {
	Eps       float64
	MinPoints int
}

func DefaultDBSCANOptions() DBSCANOptions {
	return DBSCANOptions{Eps: 0.5, MinPoints: 3}
}

// DBSCAN labels rows by density reachability. Clusters are numbered from 0
// in order of discovery; rows in no cluster get Noise.
func DBSCAN(rows [][]float64, opts DBSCANOptions) ([]int, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	if opts.Eps <= 0 || opts.MinPoints <= 0 {
		return nil, fmt.Errorf("cluster: invalid dbscan options eps=%v min_points=%d", opts.Eps, opts.MinPoints)
	}

	const unvisited = -2
	labels := make([]int, len(rows))
	for i := range labels {
		labels[i] = unvisited
	}

	next := 0
	for i := range rows {
		if labels[i] != unvisited {
			continue
		}
		seeds := regionQuery(rows, i, opts.Eps)
		if len(seeds) < opts.MinPoints {
			labels[i] = Noise
			continue
		}
		id := next
		next++
		labels[i] = id
		for q := 0; q < len(seeds); q++ {
			j := seeds[q]
			if labels[j] == Noise {
				labels[j] = id
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = id
			if nb := regionQuery(rows, j, opts.Eps); len(nb) >= opts.MinPoints {
				seeds = append(seeds, nb...)
			}
		}
	}
	return labels, nil
}

// regionQuery returns the rows within eps of row i, i included.
func regionQuery(rows [][]float64, i int, eps float64) []int {
	var out []int
	for j, row := range rows {
		if floats.Distance(rows[i], row, 2) <= eps {
			out = append(out, j)
		}
	}
	return out
}

// Assign maps ids to labels.
func Assign(ids []string, labels []int) map[string]int {
	out := make(map[string]int, len(ids))
	for i, id := range ids {
		out[id] = labels[i]
	}
	return out
}
