// SPDX-License-Identifier: MIT

package birch

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// group is an active cluster of the global step.
type group struct {
	centroid []float64
	weight   float64
	members  []int
}

// wardCost is the square root of the increase in within-cluster variance
// caused by merging a and b. The root orders merges identically and stays
// finite for every pair of finite centroids closer than ~1e308.
func wardCost(a, b *group) float64 {
	return math.Sqrt(a.weight*b.weight/(a.weight+b.weight)) * dist(a.centroid, b.centroid)
}

// ward agglomerates weighted points with Ward linkage until k groups remain
// and returns the group label of every point. Labels follow the lowest point
// index of each surviving group. When k >= len(points) every point is its own
// group.
//
// Ward linkage is reducible, so a cached nearest neighbour per group only
// needs recomputing when it pointed at one of the two merged groups.
//
// Complexity: O(m²·d) on average for m points of dimension d.
func ward(points [][]float64, weights []float64, k int) []int {
	m := len(points)
	labels := make([]int, m)
	if k >= m {
		for i := range labels {
			labels[i] = i
		}

		return labels
	}

	gs := make([]*group, m)
	for i := range points {
		gs[i] = &group{
			centroid: append([]float64(nil), points[i]...),
			weight:   weights[i],
			members:  []int{i},
		}
	}

	nn := make([]int, m)
	nnCost := make([]float64, m)
	// nearest always settles on some other active group, even when every
	// cost is +Inf.
	nearest := func(i int) {
		nn[i] = -1
		for j, g := range gs {
			if j == i || g == nil {
				continue
			}
			if c := wardCost(gs[i], g); nn[i] < 0 || c < nnCost[i] {
				nn[i], nnCost[i] = j, c
			}
		}
	}
	for i := range gs {
		nearest(i)
	}

	var (
		a, b, i int
		best    float64
		c       float64
	)
	for active := m; active > k; active-- {
		a = -1
		for i = range gs {
			if gs[i] != nil && (a < 0 || nnCost[i] < best) {
				a, best = i, nnCost[i]
			}
		}
		b = nn[a]
		if b < a {
			a, b = b, a
		}

		// Fold b into a.
		ga, gb := gs[a], gs[b]
		w := ga.weight + gb.weight
		floats.Scale(ga.weight/w, ga.centroid)
		floats.AddScaled(ga.centroid, gb.weight/w, gb.centroid)
		ga.weight = w
		ga.members = append(ga.members, gb.members...)
		gs[b] = nil

		for i = range gs {
			if gs[i] == nil {
				continue
			}
			if i == a || nn[i] == a || nn[i] == b {
				nearest(i)

				continue
			}
			if c = wardCost(gs[i], ga); c < nnCost[i] {
				nn[i], nnCost[i] = a, c
			}
		}
	}

	label := 0
	for _, g := range gs {
		if g == nil {
			continue
		}
		for _, p := range g.members {
			labels[p] = label
		}
		label++
	}

	return labels
}
