// SPDX-License-Identifier: MIT

package fusion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/rbcm/fusion"
)

// TestNewTensor_BadShape rejects non-positive dimensions.
func TestNewTensor_BadShape(t *testing.T) {
	for _, d := range [][3]int{{0, 1, 1}, {1, 0, 1}, {1, 1, 0}, {-1, 2, 2}} {
		_, err := fusion.NewTensor(d[0], d[1], d[2])
		assert.ErrorIs(t, err, fusion.ErrBadShape, "dims %v", d)
	}
}

// TestNewTensorFrom_Ragged rejects inconsistent nested slices.
func TestNewTensorFrom_Ragged(t *testing.T) {
	_, err := fusion.NewTensorFrom([][][]float64{{{1, 2}}, {{1, 2}, {3, 4}}})
	assert.ErrorIs(t, err, fusion.ErrShapeMismatch)

	_, err = fusion.NewTensorFrom([][][]float64{{{1, 2}, {3}}})
	assert.ErrorIs(t, err, fusion.ErrShapeMismatch)

	_, err = fusion.NewTensorFrom(nil)
	assert.ErrorIs(t, err, fusion.ErrBadShape)
}

// TestTensor_Layout checks indexing, the shared Location view and Clone.
func TestTensor_Layout(t *testing.T) {
	in := [][][]float64{
		{{1, 2, 3}, {4, 5, 6}},
		{{7, 8, 9}, {10, 11, 12}},
	}
	tt, err := fusion.NewTensorFrom(in)
	require.NoError(t, err)

	l, f, e := tt.Dims()
	assert.Equal(t, [3]int{2, 2, 3}, [3]int{l, f, e})

	v, err := tt.At(1, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)

	_, err = tt.At(2, 0, 0)
	assert.ErrorIs(t, err, fusion.ErrOutOfRange)
	assert.ErrorIs(t, tt.Set(0, 2, 0, 1), fusion.ErrOutOfRange)

	slab := tt.Location(1)
	assert.Equal(t, 11.0, slab.At(1, 1))
	slab.Set(0, 0, -7)
	v, _ = tt.At(1, 0, 0)
	assert.Equal(t, -7.0, v, "Location must share storage")

	c := tt.Clone()
	require.NoError(t, c.Set(0, 0, 0, 100))
	v, _ = tt.At(0, 0, 0)
	assert.Equal(t, 1.0, v, "Clone must not share storage")

	assert.Panics(t, func() { tt.Location(5) })
	assert.Equal(t, []float64{4, 5, 6}, tt.Slices()[0][1])
}
