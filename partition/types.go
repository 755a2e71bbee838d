// SPDX-License-Identifier: MIT

package partition

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidGroupSize is returned when pointsPerExpert is not in [1, n].
	ErrInvalidGroupSize = errors.New("partition: points per expert must be in [1, n_samples]")

	// ErrClusteringFailure is returned when the target cluster count is below
	// one or the clusterer fails or returns unusable labels.
	ErrClusteringFailure = errors.New("partition: clustering failed")

	// ErrEmptyDataset is returned for a nil dataset or one without rows.
	ErrEmptyDataset = errors.New("partition: empty dataset")

	// ErrUnknownStrategy is returned for a Strategy outside the defined set.
	ErrUnknownStrategy = errors.New("partition: unknown strategy")
)

const (
	opPartition = "Partition"
	opRandom    = "Random"
	opCluster   = "Cluster"
)

func partitionErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// Group is the set of sample indices assigned to one expert.
type Group []int

// Strategy selects how indices are grouped.
type Strategy int

const (
	// StrategyCluster groups samples by clustering labels.
	StrategyCluster Strategy = iota
	// StrategyRandom chunks a random permutation of the indices.
	StrategyRandom
)

// String returns the lower-case strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyCluster:
		return "cluster"
	case StrategyRandom:
		return "random"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy resolves "cluster" or "random" (case-insensitive).
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cluster":
		return StrategyCluster, nil
	case "random":
		return StrategyRandom, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Clusterer assigns one label per row of X, aiming for nClusters clusters
// with the given merge threshold. Labels must be non-negative.
type Clusterer interface {
	Cluster(X mat.Matrix, nClusters int, threshold float64) ([]int, error)
}
