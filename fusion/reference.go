// SPDX-License-Identifier: MIT

package fusion

import (
	"gonum.org/v1/gonum/mat"
)

// CombineReference computes the same result as Combine with explicit nested
// loops over locations, features and experts. It is slow and allocation
// heavy, and exists so tests can cross-check the production kernel.
//
// Equations, per location l:
//
//	left[l]  = Σ_e β[l,e] · (1/σ²[l,e])
//	right[l] = (1/σ²_prior) · (1 − Σ_e β[l,e])
//	σ²[l]    = 1 / (left[l] + right[l])
//	μ[l,f]   = σ²[l] · Σ_e β[l,e] · (1/σ²[l,e]) · pred[l,f,e]
//
// Errors and options are those of Combine (WithWorkers is ignored).
func CombineReference(pred *Tensor, variance, beta mat.Matrix, priorVar float64, opts ...Option) (*Result, error) {
	v, b, err := validateCombine(opReference, pred, variance, beta, priorVar)
	if err != nil {
		return nil, err
	}
	numLocations, numFeatures, numExperts := pred.Dims()
	invPrior := 1 / priorVar

	invVar := mat.NewDense(numLocations, numExperts, nil)
	var loc, feat, exp int
	for loc = 0; loc < numLocations; loc++ {
		for exp = 0; exp < numExperts; exp++ {
			invVar.Set(loc, exp, 1/v.At(loc, exp))
		}
	}

	left := make([]float64, numLocations)
	right := make([]float64, numLocations)
	for loc = 0; loc < numLocations; loc++ {
		var dot, betaSum float64
		for exp = 0; exp < numExperts; exp++ {
			dot += b.At(loc, exp) * invVar.At(loc, exp)
			betaSum += b.At(loc, exp)
		}
		left[loc] = dot
		right[loc] = invPrior * (1 - betaSum)
	}

	res := &Result{
		Mean: mat.NewDense(numLocations, numFeatures, nil),
		Var:  make([]float64, numLocations),
	}
	for loc = 0; loc < numLocations; loc++ {
		res.Var[loc] = 1 / (left[loc] + right[loc])
	}

	var p float64
	for loc = 0; loc < numLocations; loc++ {
		for feat = 0; feat < numFeatures; feat++ {
			var sum float64
			for exp = 0; exp < numExperts; exp++ {
				if p, err = pred.At(loc, feat, exp); err != nil {
					return nil, fusionErrorf(opReference, err)
				}
				sum += b.At(loc, exp) * invVar.At(loc, exp) * p
			}
			res.Mean.Set(loc, feat, sum)
		}
	}

	for loc = 0; loc < numLocations; loc++ {
		for feat = 0; feat < numFeatures; feat++ {
			res.Mean.Set(loc, feat, res.Var[loc]*res.Mean.At(loc, feat))
		}
	}

	return checkStability(opReference, res, gatherOptions(opts...))
}
