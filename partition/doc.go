// SPDX-License-Identifier: MIT

// Package partition splits the row indices of a training set into
// expert-sized groups.
//
// 🚀 Strategies
//
//	StrategyCluster  floor(n/pointsPerExpert) clusters are requested from a
//	                 Clusterer (BIRCH, threshold 0.2 by default). One group per
//	                 distinct label, ascending by label, indices ascending.
//	                 Group count and sizes depend on the data.
//	StrategyRandom   a uniform permutation of 0..n-1 cut into chunks of
//	                 pointsPerExpert; a short tail is folded into the last
//	                 chunk instead of becoming its own group.
//
// 📏 Guarantees
//
//   - Both strategies return pairwise disjoint groups whose union is 0..n-1.
//   - Random groups hold between pointsPerExpert and 2·pointsPerExpert−1 indices.
//   - Randomness comes only from WithRand or WithSeed; the same seed gives the
//     same groups.
//
// ⚠️ Errors
//
//	ErrEmptyDataset      nil dataset or zero rows
//	ErrInvalidGroupSize  pointsPerExpert <= 0 or > n
//	ErrClusteringFailure clusterer failed, target < 1, or unusable labels
//	ErrUnknownStrategy   Strategy outside the defined set
//
// Example:
//
//	groups, err := partition.Partition(X, 500, partition.StrategyRandom, partition.WithSeed(7))
//	if err != nil {
//		return err
//	}
//	for _, g := range groups {
//		// train one expert on the rows in g
//	}
package partition
