// SPDX-License-Identifier: MIT

// Package fusion: functional configuration for the combination kernels.
//
// Option constructors panic on nonsensical values (programmer error); public
// entry points accept ...Option and resolve them via gatherOptions.
package fusion

import "math"

// Defaults.
const (
	// DefaultZeroFloor replaces standard deviations that are exactly zero.
	DefaultZeroFloor = 1e-9

	// DefaultWorkers runs the combination serially.
	DefaultWorkers = 1
)

const (
	panicZeroFloorInvalid = "fusion: WithZeroFloor: floor must be finite and > 0"
	panicWorkersInvalid   = "fusion: WithWorkers: workers must be >= 1"
)

// Option mutates Options.
type Option func(*Options)

// Options is the effective configuration after applying Option setters.
type Options struct {
	zeroFloor     float64
	workers       int
	allowUnstable bool
}

// WithZeroFloor sets the value substituted for standard deviations equal to zero.
func WithZeroFloor(floor float64) Option {
	if !(floor > 0) || math.IsInf(floor, 0) {
		panic(panicZeroFloorInvalid)
	}

	return func(o *Options) {
		o.zeroFloor = floor
	}
}

// WithWorkers splits the locations into n chunks combined concurrently.
// Locations never interact, so the result is identical for every n.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) {
		o.workers = n
	}
}

// WithAllowUnstable returns results with non-positive or non-finite fused
// variances instead of ErrNumericalInstability; offending locations are
// reported in Result.Unstable.
func WithAllowUnstable() Option {
	return func(o *Options) {
		o.allowUnstable = true
	}
}

func gatherOptions(opts ...Option) Options {
	o := Options{
		zeroFloor: DefaultZeroFloor,
		workers:   DefaultWorkers,
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
