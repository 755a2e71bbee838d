// SPDX-License-Identifier: MIT

package fusion_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/rbcm/fusion"
)

// randomInputs builds predictions in [-10,10) and std in [0.05,3.05).
func randomInputs(rng *rand.Rand, l, f, e int) (*fusion.Tensor, *mat.Dense) {
	pred, err := fusion.NewTensor(l, f, e)
	if err != nil {
		panic(err)
	}
	sigma := mat.NewDense(l, e, nil)
	var i, j, k int
	for i = 0; i < l; i++ {
		for k = 0; k < e; k++ {
			sigma.Set(i, k, 0.05+3*rng.Float64())
			for j = 0; j < f; j++ {
				_ = pred.Set(i, j, k, 20*rng.Float64()-10)
			}
		}
	}

	return pred, sigma
}

// square returns the element-wise square of m.
func square(m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.MulElem(m, m)

	return &out
}

// TestCombine_MatchesReference cross-checks the production kernel against the
// nested-loop oracle on randomized shapes, weights and worker counts.
func TestCombine_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	shapes := [][3]int{{1, 1, 1}, {1, 3, 2}, {5, 1, 4}, {13, 4, 7}, {64, 2, 16}, {3, 9, 1}}

	for _, s := range shapes {
		pred, sigma := randomInputs(rng, s[0], s[1], s[2])
		prior := 0.5 + 3*rng.Float64()
		beta, err := fusion.Beta(sigma, prior, fusion.DifferentialEntropy)
		require.NoError(t, err)
		variance := square(sigma)

		want, err := fusion.CombineReference(pred, variance, beta, prior*prior)
		require.NoError(t, err)

		for _, workers := range []int{1, 2, 3, 8} {
			got, err := fusion.Combine(pred, variance, beta, prior*prior, fusion.WithWorkers(workers))
			require.NoError(t, err, "shape %v workers %d", s, workers)
			assert.InDeltaSlice(t, want.Var, got.Var, tol, "variance, shape %v workers %d", s, workers)
			assert.True(t, mat.EqualApprox(want.Mean, got.Mean, tol), "mean, shape %v workers %d", s, workers)
		}
	}
}

// TestCombine_ArbitraryBeta checks both forms agree for weights that are not
// derived from the variances.
func TestCombine_ArbitraryBeta(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	pred, sigma := randomInputs(rng, 9, 3, 4)
	variance := square(sigma)
	beta := mat.NewDense(9, 4, nil)
	beta.Apply(func(_, _ int, _ float64) float64 {
		return rng.Float64() * 0.2
	}, beta)

	want, err := fusion.CombineReference(pred, variance, beta, 2, fusion.WithAllowUnstable())
	require.NoError(t, err)
	got, err := fusion.Combine(pred, variance, beta, 2, fusion.WithAllowUnstable(), fusion.WithWorkers(4))
	require.NoError(t, err)

	assert.InDeltaSlice(t, want.Var, got.Var, tol)
	assert.True(t, mat.EqualApprox(want.Mean, got.Mean, tol))
	assert.Equal(t, want.Unstable, got.Unstable)
}

// TestFuse_MatchesReference runs the full pipeline with zero std entries
// against the oracle fed with the floored variances.
func TestFuse_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	pred, sigma := randomInputs(rng, 20, 2, 6)
	sigma.Set(0, 0, 0)
	sigma.Set(7, 3, 0)

	floored := mat.DenseCopyOf(sigma)
	floored.Set(0, 0, fusion.DefaultZeroFloor)
	floored.Set(7, 3, fusion.DefaultZeroFloor)
	beta, err := fusion.Beta(floored, 1.7, fusion.DifferentialEntropy)
	require.NoError(t, err)

	want, err := fusion.CombineReference(pred, square(floored), beta, 1.7*1.7)
	require.NoError(t, err)
	got, err := fusion.Fuse(pred, sigma, 1.7, fusion.WithWorkers(3))
	require.NoError(t, err)

	for l := range want.Var {
		assert.InEpsilon(t, want.Var[l], got.Var[l], tol, "variance at %d", l)
	}
	for l := 0; l < 20; l++ {
		for f := 0; f < 2; f++ {
			assert.InDelta(t, want.Mean.At(l, f), got.Mean.At(l, f), tol, "mean at (%d,%d)", l, f)
		}
	}
}

// TestCombine_Validation covers shape, prior and variance checks.
func TestCombine_Validation(t *testing.T) {
	pred, err := fusion.NewTensor(2, 1, 2)
	require.NoError(t, err)
	ok := mat.NewDense(2, 2, []float64{1, 1, 1, 1})

	_, err = fusion.Combine(pred, mat.NewDense(2, 3, nil), ok, 1)
	assert.ErrorIs(t, err, fusion.ErrShapeMismatch)
	_, err = fusion.Combine(pred, ok, mat.NewDense(1, 2, nil), 1)
	assert.ErrorIs(t, err, fusion.ErrShapeMismatch)
	_, err = fusion.Combine(pred, ok, ok, 0)
	assert.ErrorIs(t, err, fusion.ErrInvalidPrior)
	_, err = fusion.Combine(pred, mat.NewDense(2, 2, []float64{1, 0, 1, 1}), ok, 1)
	assert.ErrorIs(t, err, fusion.ErrInvalidUncertainty)
	_, err = fusion.CombineReference(pred, ok, nil, 1)
	assert.ErrorIs(t, err, fusion.ErrNilInput)
}
