// SPDX-License-Identifier: MIT

// Package fusion_test - benchmarks for the combination kernels.
//
// Policy:
//   - Inputs are built once outside the timer with a fixed seed.
//   - The oracle is benchmarked on the same inputs for comparison.
package fusion_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/katalvlaran/rbcm/fusion"
)

func benchFuse(b *testing.B, l, f, e, workers int) {
	pred, sigma := randomInputs(rand.New(rand.NewSource(42)), l, f, e)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := fusion.Fuse(pred, sigma, 2.0, fusion.WithWorkers(workers)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFuse measures the production kernel across worker counts.
func BenchmarkFuse(b *testing.B) {
	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("L4096_F2_E16_w%d", workers), func(b *testing.B) {
			benchFuse(b, 4096, 2, 16, workers)
		})
	}
}

// BenchmarkCombineReference measures the nested-loop oracle.
func BenchmarkCombineReference(b *testing.B) {
	pred, sigma := randomInputs(rand.New(rand.NewSource(42)), 4096, 2, 16)
	beta, err := fusion.Beta(sigma, 2.0, fusion.DifferentialEntropy)
	if err != nil {
		b.Fatal(err)
	}
	variance := square(sigma)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err = fusion.CombineReference(pred, variance, beta, 4.0); err != nil {
			b.Fatal(err)
		}
	}
}
