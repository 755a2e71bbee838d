// SPDX-License-Identifier: MIT

package partition

import (
	"gonum.org/v1/gonum/mat"
)

// Random shuffles the row indices of X and chunks the permutation into groups
// of pointsPerExpert. A chunk whose successor would be shorter than
// pointsPerExpert absorbs the remaining indices and is the last group, so
// every group holds between pointsPerExpert and 2·pointsPerExpert−1 indices.
//
// Only the row count of X is used. The permutation comes from WithRand, or
// from WithSeed (default seed when unset).
//
// Errors: ErrEmptyDataset, ErrInvalidGroupSize.
func Random(X mat.Matrix, pointsPerExpert int, opts ...Option) ([]Group, error) {
	n, err := validate(opRandom, X, pointsPerExpert)
	if err != nil {
		return nil, err
	}
	o := gatherOptions(opts...)

	return chunk(permRange(n, o.generator()), pointsPerExpert), nil
}

// chunk slices perm into consecutive groups of size ppe, folding a short tail
// into the last group.
func chunk(perm []int, ppe int) []Group {
	n := len(perm)
	groups := make([]Group, 0, n/ppe)

	var i int
	for i = 0; i < n; i += ppe {
		if n-(i+ppe) < ppe {
			groups = append(groups, Group(perm[i:]))

			break
		}
		groups = append(groups, Group(perm[i:i+ppe:i+ppe]))
	}

	return groups
}

// validate returns the row count of X after checking pointsPerExpert.
func validate(op string, X mat.Matrix, pointsPerExpert int) (int, error) {
	if X == nil {
		return 0, partitionErrorf(op, ErrEmptyDataset)
	}
	n, _ := X.Dims()
	if n == 0 {
		return 0, partitionErrorf(op, ErrEmptyDataset)
	}
	if pointsPerExpert <= 0 || pointsPerExpert > n {
		return 0, partitionErrorf(op, ErrInvalidGroupSize)
	}

	return n, nil
}
