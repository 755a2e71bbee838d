// SPDX-License-Identifier: MIT

package partition

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Partition dispatches to Cluster or Random.
func Partition(X mat.Matrix, pointsPerExpert int, s Strategy, opts ...Option) ([]Group, error) {
	switch s {
	case StrategyCluster:
		return Cluster(X, pointsPerExpert, opts...)
	case StrategyRandom:
		return Random(X, pointsPerExpert, opts...)
	default:
		return nil, partitionErrorf(opPartition, fmt.Errorf("%w: %s", ErrUnknownStrategy, s))
	}
}
