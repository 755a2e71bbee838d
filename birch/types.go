// SPDX-License-Identifier: MIT

// Package birch: sentinel errors and functional options.
//
// Every message is prefixed with "birch: ...". Public entry points wrap them
// with the operation name; callers match with errors.Is.
package birch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidClusterCount is returned when fewer than one cluster is requested.
	ErrInvalidClusterCount = errors.New("birch: cluster count must be >= 1")

	// ErrEmptyInput is returned for a nil matrix or one without rows or columns.
	ErrEmptyInput = errors.New("birch: empty input")

	// ErrInvalidThreshold is returned for a negative or non-finite radius threshold.
	ErrInvalidThreshold = errors.New("birch: threshold must be finite and >= 0")

	// ErrInvalidBranching is returned when the branching factor is below 2.
	ErrInvalidBranching = errors.New("birch: branching factor must be >= 2")

	// ErrNonFiniteInput is returned when a sample holds NaN or ±Inf.
	ErrNonFiniteInput = errors.New("birch: NaN or Inf in input")
)

const opCluster = "Cluster"

func birchErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// Defaults.
const (
	// DefaultThreshold is the conventional subcluster radius limit.
	DefaultThreshold = 0.2

	// DefaultBranchingFactor bounds the number of subclusters per CF-tree node.
	DefaultBranchingFactor = 50
)

// Option mutates Options.
type Option func(*Options)

// Options is the effective configuration after applying Option setters.
type Options struct {
	branching int
}

// WithBranchingFactor sets the maximum number of subclusters per tree node.
// Values below 2 make Cluster fail with ErrInvalidBranching.
func WithBranchingFactor(b int) Option {
	return func(o *Options) {
		o.branching = b
	}
}

func gatherOptions(opts ...Option) Options {
	o := Options{branching: DefaultBranchingFactor}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
