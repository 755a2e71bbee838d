// SPDX-License-Identifier: MIT

package birch

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// feature is a clustering feature: the sample count N, the linear sum LS and
// the scatter of the samples it summarizes. Features that live in non-leaf
// nodes carry the child node they summarize.
//
// The scatter is the sum of squared distances to the centroid, n·radius².
// It replaces the sum of squared norms SS, which overflows on large samples.
type feature struct {
	n        float64
	ls       []float64
	scatter  float64
	centroid []float64
	child    *node
}

// newFeature summarizes the single sample x. x is copied.
func newFeature(x []float64) *feature {
	return &feature{
		n:        1,
		ls:       append([]float64(nil), x...),
		centroid: append([]float64(nil), x...),
	}
}

// summarize builds the feature covering every subcluster of nd.
func summarize(nd *node) *feature {
	first := nd.subclusters[0]
	f := &feature{
		n:        first.n,
		ls:       append([]float64(nil), first.ls...),
		scatter:  first.scatter,
		centroid: append([]float64(nil), first.centroid...),
		child:    nd,
	}
	for _, s := range nd.subclusters[1:] {
		f.merge(s)
	}

	return f
}

// merge absorbs o into f. o is not modified.
func (f *feature) merge(o *feature) {
	f.scatter = f.unionScatter(o)
	n := f.n + o.n
	floats.Add(f.ls, o.ls)
	// convex update, stays finite where ls/n would not
	floats.Scale(f.n/n, f.centroid)
	floats.AddScaled(f.centroid, o.n/n, o.centroid)
	f.n = n
}

// unionScatter is the scatter of the union of f and o. It is +Inf when the
// centroids are too far apart to represent, never NaN.
func (f *feature) unionScatter(o *feature) float64 {
	d := dist(f.centroid, o.centroid)

	return f.scatter + o.scatter + f.n*o.n/(f.n+o.n)*d*d
}

// mergedRadius returns the radius of the union of f and o.
func (f *feature) mergedRadius(o *feature) float64 {
	return math.Sqrt(f.unionScatter(o) / (f.n + o.n))
}

// dist is the Euclidean distance between a and b. It is compared unsquared
// so rows of magnitude beyond 1e154 still order correctly.
func dist(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// closest returns the index of the feature whose centroid is nearest to x.
// Ties resolve to the lowest index. fs must be non-empty.
func closest(fs []*feature, x []float64) int {
	var (
		best  = 0
		bestD = dist(fs[0].centroid, x)
		d     float64
		i     int
	)
	for i = 1; i < len(fs); i++ {
		if d = dist(fs[i].centroid, x); d < bestD {
			best, bestD = i, d
		}
	}

	return best
}
