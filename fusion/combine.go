// SPDX-License-Identifier: MIT

// Package fusion - production combination kernel.
//
// Locations never interact: each fused row depends only on that location's
// slab of predictions, its row of variances and β, and the shared prior.
// The kernel therefore processes contiguous location chunks independently and
// writes into disjoint rows of the result, so chunks may run concurrently.
package fusion

import (
	"gonum.org/v1/gonum/mat"
	"golang.org/x/sync/errgroup"
)

// kernel holds the read-only inputs shared by all chunks and the result
// they write into.
type kernel struct {
	pred     *Tensor
	variance *mat.Dense
	beta     *mat.Dense
	invPrior float64
	ones     *mat.VecDense
	out      *Result
}

// combine runs the kernel over all locations, chunked by o.workers.
// Inputs are already validated and owned by the caller of combine.
func combine(op string, pred *Tensor, variance, beta *mat.Dense, priorVar float64, o Options) (*Result, error) {
	l, f, e := pred.Dims()

	ones := make([]float64, e)
	for i := range ones {
		ones[i] = 1
	}
	k := &kernel{
		pred:     pred,
		variance: variance,
		beta:     beta,
		invPrior: 1 / priorVar,
		ones:     mat.NewVecDense(e, ones),
		out: &Result{
			Mean: mat.NewDense(l, f, nil),
			Var:  make([]float64, l),
		},
	}

	workers := o.workers
	if workers > l {
		workers = l
	}
	if workers <= 1 {
		k.run(0, l)

		return checkStability(op, k.out, o)
	}

	chunk := (l + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < l; lo += chunk {
		lo, hi := lo, min(lo+chunk, l)
		g.Go(func() error {
			k.run(lo, hi)

			return nil
		})
	}
	_ = g.Wait()

	return checkStability(op, k.out, o)
}

// run combines locations [lo, hi).
//
// Stage 1: W = β ⊙ (1/σ²) for the chunk.
// Stage 2: s_W = W·1 and s_β = β·1.
// Stage 3: per location, σ²[l] = 1/(s_W + (1 − s_β)/σ²_prior) and
// μ[l,:] = σ²[l] · P_l · W[l,:].
func (k *kernel) run(lo, hi int) {
	_, e := k.beta.Dims()
	n := hi - lo
	b := k.beta.Slice(lo, hi, 0, e)

	var w mat.Dense
	w.Apply(func(_, _ int, v float64) float64 {
		return 1 / v
	}, k.variance.Slice(lo, hi, 0, e))
	w.MulElem(&w, b)

	sumW := mat.NewVecDense(n, nil)
	sumW.MulVec(&w, k.ones)
	sumB := mat.NewVecDense(n, nil)
	sumB.MulVec(b, k.ones)

	var i, loc int
	var fusedVar float64
	for i = 0; i < n; i++ {
		loc = lo + i
		fusedVar = 1 / (sumW.AtVec(i) + k.invPrior*(1-sumB.AtVec(i)))
		k.out.Var[loc] = fusedVar

		row := k.out.Mean.RowView(loc).(*mat.VecDense)
		row.MulVec(k.pred.Location(loc), w.RowView(i))
		row.ScaleVec(fusedVar, row)
	}
}
