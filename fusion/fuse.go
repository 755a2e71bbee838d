// SPDX-License-Identifier: MIT

package fusion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Fuse combines per-expert predictions into one predictive distribution per
// location with differential-entropy weights.
//
// Implementation:
//   - Stage 1: validate prior and shapes (predictions L×F×E, sigma L×E).
//   - Stage 2: copy sigma, floor exact zeros, square into variances.
//   - Stage 3: β = ½·(log σ²_prior − log σ²) for every (location, expert).
//   - Stage 4: Combine.
//
// Inputs:
//   - pred: (locations × features × experts) predicted means.
//   - sigma: (locations × experts) predictive standard deviations, ≥ 0.
//   - priorStd: standard deviation of the shared prior, > 0.
//
// Errors:
//   - ErrNilInput, ErrShapeMismatch, ErrInvalidPrior, ErrInvalidUncertainty.
//   - ErrNumericalInstability unless WithAllowUnstable is given.
//
// Complexity: O(L·F·E) time, O(L·E + L·F) memory.
func Fuse(pred *Tensor, sigma mat.Matrix, priorStd float64, opts ...Option) (*Result, error) {
	return FuseWith(pred, sigma, priorStd, DifferentialEntropy, opts...)
}

// FuseWith is Fuse with a caller-chosen weighting scheme.
func FuseWith(pred *Tensor, sigma mat.Matrix, priorStd float64, w Weighter, opts ...Option) (*Result, error) {
	if pred == nil {
		return nil, fusionErrorf(opFuse, ErrNilInput)
	}
	if err := validateSigma(opFuse, pred, sigma); err != nil {
		return nil, err
	}
	o := gatherOptions(opts...)
	beta, variance, priorVar, err := weigh(opFuse, sigma, priorStd, w, o)
	if err != nil {
		return nil, err
	}

	return combine(opFuse, pred, variance, beta, priorVar, o)
}

// Beta returns the (locations × experts) weight matrix for sigma under w.
// Zero standard deviations are floored exactly as in Fuse; sigma is not modified.
func Beta(sigma mat.Matrix, priorStd float64, w Weighter, opts ...Option) (*mat.Dense, error) {
	if sigma == nil {
		return nil, fusionErrorf(opBeta, ErrNilInput)
	}
	beta, _, _, err := weigh(opBeta, sigma, priorStd, w, gatherOptions(opts...))

	return beta, err
}

// Combine fuses predictions given precomputed variances and β weights. Any
// measure of confidence can be supplied as beta.
//
// Implementation:
//   - Stage 1: validate shapes; variances must be finite and > 0.
//   - Stage 2: split locations into Options.workers chunks; per chunk
//     W = β ⊙ (1/σ²), s_W = W·1, s_β = β·1 (gonum MulElem/MulVec),
//     σ⁻²[l] = s_W[l] + (1 − s_β[l])/σ²_prior, μ[l,:] = σ²[l]·P_l·W[l,:]
//     where P_l is the (features × experts) slab of location l.
//   - Stage 3: reject non-positive or non-finite fused variances.
//
// Complexity: O(L·F·E) time.
func Combine(pred *Tensor, variance, beta mat.Matrix, priorVar float64, opts ...Option) (*Result, error) {
	v, b, err := validateCombine(opCombine, pred, variance, beta, priorVar)
	if err != nil {
		return nil, err
	}

	return combine(opCombine, pred, v, b, priorVar, gatherOptions(opts...))
}

// validateSigma checks sigma against the prediction tensor.
func validateSigma(op string, pred *Tensor, sigma mat.Matrix) error {
	if sigma == nil {
		return fusionErrorf(op, ErrNilInput)
	}
	l, _, e := pred.Dims()
	r, c := sigma.Dims()
	if r != l || c != e {
		return fmt.Errorf("%s: sigma is %d×%d, predictions have %d locations and %d experts: %w",
			op, r, c, l, e, ErrShapeMismatch)
	}

	return nil
}

// validatePrior checks that a prior standard deviation or variance is finite and > 0.
func validatePrior(op string, p float64) error {
	if !(p > 0) || math.IsInf(p, 1) {
		return fmt.Errorf("%s: %g: %w", op, p, ErrInvalidPrior)
	}

	return nil
}

// weigh floors and squares sigma into an owned variance copy and derives β.
func weigh(op string, sigma mat.Matrix, priorStd float64, w Weighter, o Options) (beta, variance *mat.Dense, priorVar float64, err error) {
	if err = validatePrior(op, priorStd); err != nil {
		return nil, nil, 0, err
	}
	if w == nil {
		w = DifferentialEntropy
	}
	if variance, err = floorVariance(op, sigma, o.zeroFloor); err != nil {
		return nil, nil, 0, err
	}
	priorVar = priorStd * priorStd
	if priorVar == 0 || math.IsInf(priorVar, 1) {
		return nil, nil, 0, fmt.Errorf("%s: %g squares outside float64 range: %w", op, priorStd, ErrInvalidPrior)
	}

	beta = mat.NewDense(variance.RawMatrix().Rows, variance.RawMatrix().Cols, nil)
	beta.Apply(func(_, _ int, v float64) float64 {
		return w(v, priorVar)
	}, variance)

	return beta, variance, priorVar, nil
}

// floorVariance copies sigma and squares it. Variances that are zero,
// including those of stds too small to square, become floor².
func floorVariance(op string, sigma mat.Matrix, floor float64) (*mat.Dense, error) {
	r, c := sigma.Dims()
	out := mat.NewDense(r, c, nil)

	var i, j int
	var s, v float64
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			s = sigma.At(i, j)
			if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
				return nil, fmt.Errorf("%s: sigma[%d,%d] = %g: %w", op, i, j, s, ErrInvalidUncertainty)
			}
			if v = s * s; v == 0 {
				v = floor * floor
			}
			if v == 0 || math.IsInf(v, 1) {
				return nil, fmt.Errorf("%s: sigma[%d,%d] = %g squares outside float64 range: %w", op, i, j, s, ErrInvalidUncertainty)
			}
			out.Set(i, j, v)
		}
	}

	return out, nil
}

// validateCombine checks Combine inputs and returns owned dense copies.
func validateCombine(op string, pred *Tensor, variance, beta mat.Matrix, priorVar float64) (*mat.Dense, *mat.Dense, error) {
	if pred == nil || variance == nil || beta == nil {
		return nil, nil, fusionErrorf(op, ErrNilInput)
	}
	if err := validatePrior(op, priorVar); err != nil {
		return nil, nil, err
	}
	l, _, e := pred.Dims()
	if r, c := variance.Dims(); r != l || c != e {
		return nil, nil, fmt.Errorf("%s: variance is %d×%d, want %d×%d: %w", op, r, c, l, e, ErrShapeMismatch)
	}
	if r, c := beta.Dims(); r != l || c != e {
		return nil, nil, fmt.Errorf("%s: beta is %d×%d, want %d×%d: %w", op, r, c, l, e, ErrShapeMismatch)
	}

	v := mat.DenseCopyOf(variance)
	var i, j int
	for i = 0; i < l; i++ {
		for j = 0; j < e; j++ {
			if x := v.At(i, j); !(x > 0) || math.IsInf(x, 1) {
				return nil, nil, fmt.Errorf("%s: variance[%d,%d] = %g: %w", op, i, j, x, ErrInvalidUncertainty)
			}
		}
	}

	return v, mat.DenseCopyOf(beta), nil
}

// checkStability collects unstable locations and turns them into an error
// unless the caller opted in to unstable results.
func checkStability(op string, res *Result, o Options) (*Result, error) {
	for l, v := range res.Var {
		if !(v > 0) || math.IsInf(v, 1) {
			res.Unstable = append(res.Unstable, l)
		}
	}
	if len(res.Unstable) == 0 || o.allowUnstable {
		return res, nil
	}
	first := res.Unstable[0]

	return nil, fmt.Errorf("%s: location %d: variance %g (%d unstable locations): %w",
		op, first, res.Var[first], len(res.Unstable), ErrNumericalInstability)
}
