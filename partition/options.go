// SPDX-License-Identifier: MIT

package partition

import (
	"math"
	"math/rand"

	"github.com/katalvlaran/rbcm/birch"
)

const (
	panicRandNil          = "partition: WithRand: generator must not be nil"
	panicClustererNil     = "partition: WithClusterer: clusterer must not be nil"
	panicThresholdInvalid = "partition: WithThreshold: threshold must be finite and >= 0"
)

// DefaultThreshold is the merge threshold handed to the clusterer.
const DefaultThreshold = birch.DefaultThreshold

// Option mutates Options.
type Option func(*Options)

// Options is the effective configuration after applying Option setters.
type Options struct {
	rng       *rand.Rand
	seed      int64
	clusterer Clusterer
	threshold float64
}

// WithSeed draws the random permutation from a fresh generator seeded with
// seed. Seed 0 selects a fixed default seed. Ignored when WithRand is given.
func WithSeed(seed int64) Option {
	return func(o *Options) {
		o.seed = seed
	}
}

// WithRand draws the random permutation from rng. The generator advances.
func WithRand(rng *rand.Rand) Option {
	if rng == nil {
		panic(panicRandNil)
	}

	return func(o *Options) {
		o.rng = rng
	}
}

// WithClusterer replaces the BIRCH clusterer used by StrategyCluster.
func WithClusterer(c Clusterer) Option {
	if c == nil {
		panic(panicClustererNil)
	}

	return func(o *Options) {
		o.clusterer = c
	}
}

// WithThreshold sets the merge threshold passed to the clusterer.
func WithThreshold(t float64) Option {
	if !(t >= 0) || math.IsInf(t, 1) {
		panic(panicThresholdInvalid)
	}

	return func(o *Options) {
		o.threshold = t
	}
}

func gatherOptions(opts ...Option) Options {
	o := Options{
		clusterer: birch.Clusterer{},
		threshold: DefaultThreshold,
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}

// generator returns the caller's generator or one built from the seed.
func (o Options) generator() *rand.Rand {
	if o.rng != nil {
		return o.rng
	}

	return rngFromSeed(o.seed)
}
