// Package rbcm fuses the predictions of a committee of Gaussian-process
// experts into one calibrated predictive distribution, using the robust
// Bayesian Committee Machine with differential-entropy weights.
//
// 🚀 What is rbcm?
//
//	A small, dependency-light toolkit that brings together:
//		• Partitioning: random equal-size groups or BIRCH-driven clusters
//		• Fusion: per-location, per-expert trust weights and the rBCM combine
//		• Committees: train one expert per group, predict and fuse in parallel
//		• A service (rbcm-srv) and a CLI (rbcm) over the same documents
//
// ✨ Why choose rbcm?
//
//   - Deterministic – seeded partitions, fusion identical for any worker count
//   - Typed errors – bad input and unstable variances come back as sentinels
//   - Pure Go – gonum for numerics, no cgo
//
// Under the hood, everything is organized under a few subpackages:
//
//	partition/  split training rows into expert groups (random, cluster)
//	birch/      BIRCH CF-tree clustering used by the cluster strategy
//	fusion/     trust weights (differential entropy, BCM) and the rBCM combine
//	committee/  fit experts per group, collect their predictions and fuse them
//
// Quick sketch, one location and two experts:
//
//	expert A: 5 ± 1 ─┐
//	                 ├─ rBCM, prior σ=3 ─▶ 5.42, var 0.87
//	expert B: 7 ± 2 ─┘
//
//	go get github.com/katalvlaran/rbcm
package rbcm
