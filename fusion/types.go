// SPDX-License-Identifier: MIT

// Package fusion: sentinel errors, result type and weighting schemes.
package fusion

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Every message is prefixed with "fusion: ..." so it can be grepped in logs.
// Call sites wrap these with operation context; callers match via errors.Is.
var (
	// ErrShapeMismatch indicates that the predictions, sigma and beta inputs
	// disagree on the number of locations or experts.
	ErrShapeMismatch = errors.New("fusion: shape mismatch")

	// ErrInvalidPrior indicates a prior standard deviation that is not a
	// finite, strictly positive number.
	ErrInvalidPrior = errors.New("fusion: prior std must be finite and > 0")

	// ErrNumericalInstability indicates a fused variance that is ≤ 0, NaN or ±Inf.
	// It happens when the β weights overshoot the prior's share of precision.
	ErrNumericalInstability = errors.New("fusion: fused variance is not finite and positive")

	// ErrInvalidUncertainty indicates a negative, NaN or infinite standard
	// deviation (or a non-positive variance handed straight to Combine).
	ErrInvalidUncertainty = errors.New("fusion: uncertainty must be finite and non-negative")

	// ErrBadShape indicates a tensor dimension that is not strictly positive.
	ErrBadShape = errors.New("fusion: dimensions must be > 0")

	// ErrOutOfRange indicates a tensor index outside its bounds.
	ErrOutOfRange = errors.New("fusion: index out of range")

	// ErrNilInput indicates a nil tensor or matrix argument.
	ErrNilInput = errors.New("fusion: nil input")
)

// Operation tags used in error wrapping.
const (
	opFuse      = "Fuse"
	opBeta      = "Beta"
	opCombine   = "Combine"
	opReference = "CombineReference"
	opTensor    = "Tensor"
)

// fusionErrorf attaches an operation tag to a sentinel.
func fusionErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// Result is the fused predictive distribution.
type Result struct {
	// Mean is (locations × features).
	Mean *mat.Dense

	// Var holds one fused variance per location.
	Var []float64

	// Unstable lists locations whose fused variance is ≤ 0 or non-finite.
	// It is only ever non-empty when WithAllowUnstable was given.
	Unstable []int
}

// Std returns the fused standard deviation per location.
// Non-positive variances yield NaN.
func (r *Result) Std() []float64 {
	out := make([]float64, len(r.Var))
	for i, v := range r.Var {
		out[i] = math.Sqrt(v)
	}

	return out
}

// Weighter maps an expert variance and the prior variance to a β weight.
type Weighter func(variance, priorVariance float64) float64

// DifferentialEntropy is the rBCM weight: the difference in differential
// entropy between the prior and the expert's predictive distribution,
// ½·(log σ²_prior − log σ²).
func DifferentialEntropy(variance, priorVariance float64) float64 {
	return 0.5 * (math.Log(priorVariance) - math.Log(variance))
}

// BCM is the classic Bayesian Committee Machine: every expert has β = 1,
// so the prior correction becomes (1 − M)/σ²_prior for M experts.
func BCM(_, _ float64) float64 {
	return 1
}

// WeighterFor resolves a weighting scheme by name ("differential_entropy",
// "bcm"). The empty name selects DifferentialEntropy.
func WeighterFor(name string) (Weighter, error) {
	switch name {
	case "", "differential_entropy":
		return DifferentialEntropy, nil
	case "bcm":
		return BCM, nil
	default:
		return nil, fmt.Errorf("fusion: unknown weighting %q", name)
	}
}
