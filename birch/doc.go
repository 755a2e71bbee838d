// SPDX-License-Identifier: MIT

// Package birch implements BIRCH clustering (Balanced Iterative Reducing and
// Clustering using Hierarchies, Zhang, Ramakrishnan & Livny, 1996).
//
// 🚀 What it does
//
//	Samples are streamed once into a CF-tree. Each leaf entry is a clustering
//	feature CF = (N, LS, SS) that absorbs a new sample while its radius
//	sqrt(SS/N − |LS/N|²) stays within the threshold. Nodes holding more than
//	the branching factor entries split around their farthest pair.
//	A global step then merges the leaf centroids with Ward linkage until the
//	requested number of clusters remains.
//
// ⚙️ Defaults
//
//	threshold         0.2 (DefaultThreshold)
//	branching factor  50  (DefaultBranchingFactor, WithBranchingFactor)
//
// 📏 Guarantees
//
//   - Deterministic: the same rows in the same order give the same labels.
//   - Labels are dense and numbered by first appearance.
//   - Fewer clusters than requested are returned when the tree holds fewer
//     subclusters or a cluster ends up nearest to no sample.
//
// Example:
//
//	labels, err := birch.Cluster(X, 4, birch.DefaultThreshold)
//	if err != nil {
//		return err
//	}
package birch
