// SPDX-License-Identifier: MIT

// Package api defines the fuse and partition documents shared by the HTTP
// service and the CLI, and runs them against the library.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/rbcm/fusion"
	"github.com/katalvlaran/rbcm/partition"
)

// ErrInvalidRequest is returned for structurally unusable documents.
var ErrInvalidRequest = errors.New("api: invalid request")

// FuseRequest asks for the fusion of expert predictions.
// Predictions is locations × features × experts, Sigma locations × experts.
type FuseRequest struct {
	Predictions   [][][]float64 `json:"predictions" yaml:"predictions"`
	Sigma         [][]float64   `json:"sigma" yaml:"sigma"`
	PriorStd      float64       `json:"priorStd" yaml:"priorStd"`
	Weighting     string        `json:"weighting,omitempty" yaml:"weighting,omitempty"`
	AllowUnstable bool          `json:"allowUnstable,omitempty" yaml:"allowUnstable,omitempty"`
}

// FuseResponse holds the fused mean (locations × features) and variance.
// Non-finite values, possible only at the locations listed in Unstable or
// after overflow, encode as null.
type FuseResponse struct {
	Mean     [][]Float `json:"mean" yaml:"mean"`
	Variance []Float   `json:"variance" yaml:"variance"`
	Unstable []int     `json:"unstable,omitempty" yaml:"unstable,omitempty"`
}

// Float is a float64 whose NaN and ±Inf values encode as JSON null.
// null decodes back to NaN.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}

	return json.Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = Float(math.NaN())

		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Float(v)

	return nil
}

// PartitionRequest asks for index groups over the rows of X.
// Threshold applies to the cluster strategy; nil selects the default.
type PartitionRequest struct {
	X               [][]float64 `json:"x" yaml:"x"`
	PointsPerExpert int         `json:"pointsPerExpert" yaml:"pointsPerExpert"`
	Strategy        string      `json:"strategy" yaml:"strategy"`
	Seed            int64       `json:"seed,omitempty" yaml:"seed,omitempty"`
	Threshold       *float64    `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// PartitionResponse holds one index list per group.
type PartitionResponse struct {
	Groups [][]int `json:"groups" yaml:"groups"`
}

// Fuse runs the request through fusion.FuseWith. opts are applied before
// the request's own settings.
func Fuse(req *FuseRequest, opts ...fusion.Option) (*FuseResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidRequest)
	}
	w, err := fusion.WeighterFor(req.Weighting)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	pred, err := fusion.NewTensorFrom(req.Predictions)
	if err != nil {
		return nil, fmt.Errorf("%w: predictions: %w", ErrInvalidRequest, err)
	}
	sigma, err := denseFrom("sigma", req.Sigma)
	if err != nil {
		return nil, err
	}
	if req.AllowUnstable {
		opts = append(opts, fusion.WithAllowUnstable())
	}

	res, err := fusion.FuseWith(pred, sigma, req.PriorStd, w, opts...)
	if err != nil {
		return nil, err
	}

	l, f := res.Mean.Dims()
	out := &FuseResponse{
		Mean:     make([][]Float, l),
		Variance: make([]Float, l),
		Unstable: res.Unstable,
	}
	for i := 0; i < l; i++ {
		out.Variance[i] = Float(res.Var[i])
		out.Mean[i] = make([]Float, f)
		for j := range out.Mean[i] {
			out.Mean[i][j] = Float(res.Mean.At(i, j))
		}
	}

	return out, nil
}

// Partition runs the request through partition.Partition. opts are applied
// before the request's own settings.
func Partition(req *PartitionRequest, opts ...partition.Option) (*PartitionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidRequest)
	}
	s, err := partition.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	X, err := denseFrom("x", req.X)
	if err != nil {
		return nil, err
	}
	opts = append(opts, partition.WithSeed(req.Seed))
	if req.Threshold != nil {
		if t := *req.Threshold; !(t >= 0) || math.IsInf(t, 1) {
			return nil, fmt.Errorf("%w: threshold must be finite and >= 0", ErrInvalidRequest)
		}
		opts = append(opts, partition.WithThreshold(*req.Threshold))
	}

	groups, err := partition.Partition(X, req.PointsPerExpert, s, opts...)
	if err != nil {
		return nil, err
	}
	out := &PartitionResponse{Groups: make([][]int, len(groups))}
	for i, g := range groups {
		out.Groups[i] = []int(g)
	}

	return out, nil
}

// denseFrom builds a matrix from rows, rejecting empty or ragged input.
func denseFrom(name string, rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidRequest, name)
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("%w: %s row %d has %d values, want %d", ErrInvalidRequest, name, i, len(row), c)
		}
		data = append(data, row...)
	}

	return mat.NewDense(len(rows), c, data), nil
}

// IsClientError reports whether err stems from the request content rather
// than from the service.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrInvalidRequest,
		fusion.ErrShapeMismatch,
		fusion.ErrBadShape,
		fusion.ErrInvalidPrior,
		fusion.ErrInvalidUncertainty,
		fusion.ErrNumericalInstability,
		fusion.ErrNilInput,
		partition.ErrInvalidGroupSize,
		partition.ErrEmptyDataset,
		partition.ErrUnknownStrategy,
		partition.ErrClusteringFailure,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// DecodeYAML decodes one YAML (or JSON) document from r into v, rejecting
// unknown fields.
func DecodeYAML(r io.Reader, v any) error {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty document", ErrInvalidRequest)
		}

		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return nil
}
