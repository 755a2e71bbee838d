// SPDX-License-Identifier: MIT

// Package fusion - dense 3-D prediction storage (row-major) & safe accessors.
//
// Purpose:
//   - Hold every expert's predicted mean for every (location, feature) pair in
//     one flat buffer with the explicit index formula (l*features+f)*experts+e.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Expose per-location (features × experts) gonum views without copying so
//     the combination kernels can use mat.VecDense.MulVec.
package fusion

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// tensorErrorf wraps an error with the accessor name and coordinates.
func tensorErrorf(method string, l, f, e int, err error) error {
	return fmt.Errorf("Tensor.%s(%d,%d,%d): %w", method, l, f, e, err)
}

// Tensor is a (locations × features × experts) array of float64 values.
// Element (l, f, e) is the mean predicted by expert e for output feature f at
// query location l.
type Tensor struct {
	l, f, e int       // locations, features, experts
	data    []float64 // flat backing storage, len == l*f*e
}

// NewTensor allocates a zeroed tensor.
// Returns ErrBadShape if any dimension is ≤ 0.
func NewTensor(locations, features, experts int) (*Tensor, error) {
	if locations <= 0 || features <= 0 || experts <= 0 {
		return nil, fusionErrorf(opTensor, ErrBadShape)
	}

	return &Tensor{
		l:    locations,
		f:    features,
		e:    experts,
		data: make([]float64, locations*features*experts),
	}, nil
}

// NewTensorFrom copies a nested [location][feature][expert] slice into a new
// tensor. Ragged input yields ErrShapeMismatch; empty input yields ErrBadShape.
func NewTensorFrom(values [][][]float64) (*Tensor, error) {
	if len(values) == 0 || len(values[0]) == 0 || len(values[0][0]) == 0 {
		return nil, fusionErrorf(opTensor, ErrBadShape)
	}
	t, err := NewTensor(len(values), len(values[0]), len(values[0][0]))
	if err != nil {
		return nil, err
	}

	var l, f int
	for l = 0; l < t.l; l++ {
		if len(values[l]) != t.f {
			return nil, fmt.Errorf("%s: location %d has %d features, want %d: %w",
				opTensor, l, len(values[l]), t.f, ErrShapeMismatch)
		}
		for f = 0; f < t.f; f++ {
			if len(values[l][f]) != t.e {
				return nil, fmt.Errorf("%s: location %d feature %d has %d experts, want %d: %w",
					opTensor, l, f, len(values[l][f]), t.e, ErrShapeMismatch)
			}
			copy(t.data[t.offset(l, f, 0):], values[l][f])
		}
	}

	return t, nil
}

// Dims returns (locations, features, experts).
func (t *Tensor) Dims() (locations, features, experts int) {
	return t.l, t.f, t.e
}

// offset computes the flat index without bounds checks.
func (t *Tensor) offset(l, f, e int) int {
	return (l*t.f+f)*t.e + e
}

// indexOf validates (l, f, e) and returns its flat index.
func (t *Tensor) indexOf(method string, l, f, e int) (int, error) {
	if l < 0 || l >= t.l || f < 0 || f >= t.f || e < 0 || e >= t.e {
		return 0, tensorErrorf(method, l, f, e, ErrOutOfRange)
	}

	return t.offset(l, f, e), nil
}

// At returns the element at (l, f, e).
func (t *Tensor) At(l, f, e int) (float64, error) {
	idx, err := t.indexOf("At", l, f, e)
	if err != nil {
		return 0, err
	}

	return t.data[idx], nil
}

// Set assigns v at (l, f, e).
func (t *Tensor) Set(l, f, e int, v float64) error {
	idx, err := t.indexOf("Set", l, f, e)
	if err != nil {
		return err
	}
	t.data[idx] = v

	return nil
}

// Location returns the (features × experts) slab of location l as a gonum
// matrix that shares storage with t. Mutating it mutates the tensor.
// It panics if l is out of range, like mat.Dense.RowView.
func (t *Tensor) Location(l int) *mat.Dense {
	if l < 0 || l >= t.l {
		panic(tensorErrorf("Location", l, 0, 0, ErrOutOfRange))
	}
	off := t.offset(l, 0, 0)

	return mat.NewDense(t.f, t.e, t.data[off:off+t.f*t.e])
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)

	return &Tensor{l: t.l, f: t.f, e: t.e, data: data}
}

// Slices returns the contents as a freshly allocated nested slice.
func (t *Tensor) Slices() [][][]float64 {
	out := make([][][]float64, t.l)
	var l, f int
	for l = 0; l < t.l; l++ {
		out[l] = make([][]float64, t.f)
		for f = 0; f < t.f; f++ {
			row := make([]float64, t.e)
			copy(row, t.data[t.offset(l, f, 0):t.offset(l, f, 0)+t.e])
			out[l][f] = row
		}
	}

	return out
}
