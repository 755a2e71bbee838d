// SPDX-License-Identifier: MIT

package api_test

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/rbcm/fusion"
	"github.com/katalvlaran/rbcm/internal/api"
	"github.com/katalvlaran/rbcm/partition"
)

func TestFuse_TwoExpertDocument(t *testing.T) {
	res, err := api.Fuse(&api.FuseRequest{
		Predictions: [][][]float64{{{5, 7}}},
		Sigma:       [][]float64{{1, 2}},
		PriorStd:    3,
	})
	require.NoError(t, err)

	b1, b2 := math.Log(3), math.Log(1.5)
	wantVar := 1 / (b1 + b2/4 + (1-b1-b2)/9)
	assert.InDelta(t, wantVar, float64(res.Variance[0]), 1e-9)
	assert.InDelta(t, wantVar*(b1*5+b2/4*7), float64(res.Mean[0][0]), 1e-9)
	assert.Empty(t, res.Unstable)
}

func TestFuse_RequestErrors(t *testing.T) {
	tests := []struct {
		name string
		req  *api.FuseRequest
		want error
	}{
		{name: "nil", req: nil, want: api.ErrInvalidRequest},
		{name: "weighting", req: &api.FuseRequest{Predictions: [][][]float64{{{1}}}, Sigma: [][]float64{{1}}, PriorStd: 1, Weighting: "poe"}, want: api.ErrInvalidRequest},
		{name: "empty predictions", req: &api.FuseRequest{Sigma: [][]float64{{1}}, PriorStd: 1}, want: fusion.ErrBadShape},
		{name: "ragged sigma", req: &api.FuseRequest{Predictions: [][][]float64{{{1, 1}}, {{1, 1}}}, Sigma: [][]float64{{1, 1}, {1}}, PriorStd: 1}, want: api.ErrInvalidRequest},
		{name: "shape", req: &api.FuseRequest{Predictions: [][][]float64{{{1, 1}}}, Sigma: [][]float64{{1, 1, 1}}, PriorStd: 1}, want: fusion.ErrShapeMismatch},
		{name: "prior", req: &api.FuseRequest{Predictions: [][][]float64{{{1}}}, Sigma: [][]float64{{1}}, PriorStd: 0}, want: fusion.ErrInvalidPrior},
		{name: "bcm unstable", req: &api.FuseRequest{Predictions: [][][]float64{{{1, 1}}}, Sigma: [][]float64{{2, 2}}, PriorStd: 1, Weighting: "bcm"}, want: fusion.ErrNumericalInstability},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := api.Fuse(tc.req)
			require.ErrorIs(t, err, tc.want)
			assert.True(t, api.IsClientError(err))
		})
	}
}

func TestFuse_AllowUnstable(t *testing.T) {
	res, err := api.Fuse(&api.FuseRequest{
		Predictions:   [][][]float64{{{1, 1}}},
		Sigma:         [][]float64{{2, 2}},
		PriorStd:      1,
		Weighting:     "bcm",
		AllowUnstable: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, res.Unstable)
}

// overflowDoc fuses two BCM experts whose summed predictions overflow while
// the fused variance turns negative.
func overflowDoc() *api.FuseRequest {
	return &api.FuseRequest{
		Predictions:   [][][]float64{{{1e308, 1e308}}},
		Sigma:         [][]float64{{1, 1}},
		PriorStd:      0.5,
		Weighting:     "bcm",
		AllowUnstable: true,
	}
}

func TestFuse_NonFiniteEncodesNull(t *testing.T) {
	res, err := api.Fuse(overflowDoc())
	require.NoError(t, err)
	assert.Equal(t, []int{0}, res.Unstable)
	assert.True(t, math.IsInf(float64(res.Mean[0][0]), -1))

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mean": [[null]], "variance": [-0.5], "unstable": [0]}`, string(b))

	var back api.FuseResponse
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, math.IsNaN(float64(back.Mean[0][0])))
	assert.Equal(t, -0.5, float64(back.Variance[0]))
}

func TestFloat_JSON(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		b, err := json.Marshal(api.Float(v))
		require.NoError(t, err)
		assert.Equal(t, "null", string(b))
	}
	b, err := json.Marshal([]api.Float{1.5, 0})
	require.NoError(t, err)
	assert.Equal(t, "[1.5,0]", string(b))

	var f api.Float
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &f))
}

func TestPartition_Document(t *testing.T) {
	x := make([][]float64, 10)
	for i := range x {
		x[i] = []float64{float64(i)}
	}

	res, err := api.Partition(&api.PartitionRequest{X: x, PointsPerExpert: 10, Strategy: "random", Seed: 4})
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, res.Groups[0])

	again, err := api.Partition(&api.PartitionRequest{X: x, PointsPerExpert: 3, Strategy: "random", Seed: 4})
	require.NoError(t, err)
	assert.Len(t, again.Groups, 3)

	th := 0.6
	res, err = api.Partition(&api.PartitionRequest{X: x, PointsPerExpert: 5, Strategy: "cluster", Threshold: &th})
	require.NoError(t, err)
	assert.Len(t, res.Groups, 2)
}

func TestPartition_RequestErrors(t *testing.T) {
	x := [][]float64{{1}, {2}}
	neg := -1.0

	tests := []struct {
		name string
		req  *api.PartitionRequest
		want error
	}{
		{name: "strategy", req: &api.PartitionRequest{X: x, PointsPerExpert: 1, Strategy: "kmeans"}, want: partition.ErrUnknownStrategy},
		{name: "empty", req: &api.PartitionRequest{PointsPerExpert: 1, Strategy: "random"}, want: api.ErrInvalidRequest},
		{name: "ragged", req: &api.PartitionRequest{X: [][]float64{{1, 2}, {1}}, PointsPerExpert: 1, Strategy: "random"}, want: api.ErrInvalidRequest},
		{name: "group size", req: &api.PartitionRequest{X: x, PointsPerExpert: 3, Strategy: "cluster"}, want: partition.ErrInvalidGroupSize},
		{name: "threshold", req: &api.PartitionRequest{X: x, PointsPerExpert: 1, Strategy: "cluster", Threshold: &neg}, want: api.ErrInvalidRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := api.Partition(tc.req)
			require.ErrorIs(t, err, tc.want)
			assert.True(t, api.IsClientError(err))
		})
	}
}

func TestIsClientError_Other(t *testing.T) {
	assert.False(t, api.IsClientError(errors.New("disk on fire")))
}

func TestDecodeYAML(t *testing.T) {
	doc := `
predictions:
  - [[5, 7]]
sigma:
  - [1, 2]
priorStd: 3
`
	var req api.FuseRequest
	require.NoError(t, api.DecodeYAML(strings.NewReader(doc), &req))
	assert.Equal(t, [][][]float64{{{5, 7}}}, req.Predictions)
	assert.Equal(t, 3.0, req.PriorStd)

	var fromJSON api.PartitionRequest
	require.NoError(t, api.DecodeYAML(strings.NewReader(`{"x": [[1], [2]], "pointsPerExpert": 1, "strategy": "random"}`), &fromJSON))
	assert.Equal(t, 1, fromJSON.PointsPerExpert)

	err := api.DecodeYAML(strings.NewReader("bogus: 1\n"), &req)
	assert.ErrorIs(t, err, api.ErrInvalidRequest)
	err = api.DecodeYAML(strings.NewReader(""), &req)
	assert.ErrorIs(t, err, api.ErrInvalidRequest)
}
