// SPDX-License-Identifier: MIT

package birch

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Cluster groups the rows of X into at most nClusters clusters and returns
// one label per row. Labels are dense, starting at 0, and numbered in order
// of first appearance over the rows.
//
// Stage 1: insert every row once into a CF-tree whose leaf subclusters have
// radius at most threshold.
// Stage 2: agglomerate the leaf subcluster centroids with Ward linkage,
// weighted by subcluster size, down to nClusters. With fewer subclusters than
// nClusters each subcluster is its own cluster.
// Stage 3: label each row with the cluster of its nearest subcluster centroid.
//
// Errors: ErrEmptyInput, ErrInvalidClusterCount, ErrInvalidThreshold,
// ErrInvalidBranching, ErrNonFiniteInput.
func Cluster(X mat.Matrix, nClusters int, threshold float64, opts ...Option) ([]int, error) {
	o := gatherOptions(opts...)
	if X == nil {
		return nil, birchErrorf(opCluster, ErrEmptyInput)
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, birchErrorf(opCluster, ErrEmptyInput)
	}
	if nClusters < 1 {
		return nil, birchErrorf(opCluster, ErrInvalidClusterCount)
	}
	if !(threshold >= 0) || math.IsInf(threshold, 1) {
		return nil, birchErrorf(opCluster, ErrInvalidThreshold)
	}
	if o.branching < 2 {
		return nil, birchErrorf(opCluster, ErrInvalidBranching)
	}

	rows := make([][]float64, r)
	var i, j int
	for i = 0; i < r; i++ {
		rows[i] = make([]float64, c)
		mat.Row(rows[i], i, X)
		for j = 0; j < c; j++ {
			if math.IsNaN(rows[i][j]) || math.IsInf(rows[i][j], 0) {
				return nil, birchErrorf(opCluster, ErrNonFiniteInput)
			}
		}
	}

	// Stage 1
	t := newTree(threshold, o.branching)
	for i = 0; i < r; i++ {
		t.add(rows[i])
	}

	// Stage 2
	subs := t.leaves()
	centroids := make([][]float64, len(subs))
	weights := make([]float64, len(subs))
	for i, s := range subs {
		centroids[i] = s.centroid
		weights[i] = s.n
	}
	global := ward(centroids, weights, nClusters)

	// Stage 3
	labels := make([]int, r)
	dense := make(map[int]int, nClusters)
	for i = 0; i < r; i++ {
		g := global[closest(subs, rows[i])]
		l, ok := dense[g]
		if !ok {
			l = len(dense)
			dense[g] = l
		}
		labels[i] = l
	}

	return labels, nil
}

// Clusterer adapts Cluster to the partition.Clusterer collaborator.
// A zero BranchingFactor selects DefaultBranchingFactor.
type Clusterer struct {
	BranchingFactor int
}

// Cluster implements partition.Clusterer.
func (b Clusterer) Cluster(X mat.Matrix, nClusters int, threshold float64) ([]int, error) {
	if b.BranchingFactor == 0 {
		return Cluster(X, nClusters, threshold)
	}

	return Cluster(X, nClusters, threshold, WithBranchingFactor(b.BranchingFactor))
}
