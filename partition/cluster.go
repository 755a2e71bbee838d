// SPDX-License-Identifier: MIT

package partition

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Cluster asks the clusterer for floor(n/pointsPerExpert) clusters of the rows
// of X and returns one group per distinct label, in ascending label order,
// each holding its indices in ascending order. The group count is whatever
// the clusterer found and may differ from the target.
//
// The clusterer defaults to BIRCH with DefaultThreshold; see WithClusterer
// and WithThreshold.
//
// Errors: ErrEmptyDataset, ErrInvalidGroupSize, ErrClusteringFailure.
func Cluster(X mat.Matrix, pointsPerExpert int, opts ...Option) ([]Group, error) {
	n, err := validate(opCluster, X, pointsPerExpert)
	if err != nil {
		return nil, err
	}
	o := gatherOptions(opts...)

	target := n / pointsPerExpert
	if target < 1 {
		return nil, partitionErrorf(opCluster, fmt.Errorf("%w: target cluster count %d", ErrClusteringFailure, target))
	}

	labels, err := o.clusterer.Cluster(X, target, o.threshold)
	if err != nil {
		return nil, partitionErrorf(opCluster, fmt.Errorf("%w: %w", ErrClusteringFailure, err))
	}
	if len(labels) != n {
		return nil, partitionErrorf(opCluster, fmt.Errorf("%w: %d labels for %d samples", ErrClusteringFailure, len(labels), n))
	}

	return groupByLabel(labels)
}

// groupByLabel emits one group per distinct label, ascending by label.
func groupByLabel(labels []int) ([]Group, error) {
	byLabel := make(map[int]Group)
	var i, l int
	for i, l = range labels {
		if l < 0 {
			return nil, partitionErrorf(opCluster, fmt.Errorf("%w: negative label %d at sample %d", ErrClusteringFailure, l, i))
		}
		byLabel[l] = append(byLabel[l], i)
	}

	keys := make([]int, 0, len(byLabel))
	for l = range byLabel {
		keys = append(keys, l)
	}
	slices.Sort(keys)

	groups := make([]Group, len(keys))
	for i, l = range keys {
		groups[i] = byLabel[l]
	}

	return groups, nil
}
