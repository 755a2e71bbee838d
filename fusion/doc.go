// SPDX-License-Identifier: MIT

// Package fusion merges the predictive distributions of many regression
// experts into a single predictive distribution per query location using the
// robust Bayesian Committee Machine (rBCM) rule.
//
// 🚀 What is rBCM fusion?
//
//	Every expert was trained on its own slice of the data and reports, for
//	each query location, a predicted mean (one value per output feature) and
//	a predictive standard deviation. Each expert is weighted by how much more
//	confident it is than the shared prior; with differential-entropy weights
//
//	  β[l,e]   = ½·(log σ²_prior − log σ²[l,e])
//	  σ⁻²[l]   = Σ_e β[l,e]/σ²[l,e] + (1 − Σ_e β[l,e])/σ²_prior
//	  μ[l,f]   = σ²[l] · Σ_e β[l,e]/σ²[l,e] · pred[l,f,e]
//
//	The β weights are not normalized and may be negative or exceed 1.
//
// ✨ Key features:
//   - Fuse / FuseWith: zero-std floor + weighting + combination in one call.
//   - Combine: gonum row kernels, optionally data-parallel across locations.
//   - CombineReference: explicit nested loops kept as a correctness oracle.
//   - Beta: the weight matrix for any Weighter (DifferentialEntropy, BCM).
//   - Caller data is never mutated; every call is a pure function.
//   - Non-positive or non-finite fused variances surface as
//     ErrNumericalInstability instead of a misleading result.
//
// ⚙️ Usage:
//
//	pred, _ := fusion.NewTensorFrom([][][]float64{{{5, 7}}})
//	sigma := mat.NewDense(1, 2, []float64{1, 2})
//	res, err := fusion.Fuse(pred, sigma, 3.0)
//	// res.Mean is (locations × features), res.Var is per location.
//
// Performance:
//
//   - Time:   O(L·F·E)
//   - Memory: O(L·E) for the owned variance/weight copies plus the result.
//
// Reference: Deisenroth & Ng, "Distributed Gaussian Processes", ICML 2015, §4.
package fusion
