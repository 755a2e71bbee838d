// SPDX-License-Identifier: MIT

package committee

import (
	"math"
	"runtime"

	"github.com/katalvlaran/rbcm/fusion"
	"github.com/katalvlaran/rbcm/internal/logging"
	"github.com/katalvlaran/rbcm/metrics"
	"github.com/katalvlaran/rbcm/partition"
)

const (
	panicWorkersInvalid  = "committee: WithWorkers: workers must be >= 1"
	panicPriorInvalid    = "committee: WithPriorStd: prior std must be finite and > 0"
	panicWeighterNil     = "committee: WithWeighter: weighter must not be nil"
	panicLoggerNil       = "committee: WithLogger: logger must not be nil"
	panicMetricsNil      = "committee: WithMetrics: collector must not be nil"
	panicStrategyUnknown = "committee: WithStrategy: unknown strategy"
)

// Option mutates Options.
type Option func(*Options)

// Options is the effective configuration after applying Option setters.
type Options struct {
	strategy      partition.Strategy
	partitionOpts []partition.Option
	fusionOpts    []fusion.Option
	weighter      fusion.Weighter
	priorStd      float64
	workers       int
	logger        Logger
	metrics       metrics.Collector
}

// WithStrategy selects the partition strategy (default StrategyRandom).
func WithStrategy(s partition.Strategy) Option {
	if s != partition.StrategyCluster && s != partition.StrategyRandom {
		panic(panicStrategyUnknown)
	}

	return func(o *Options) {
		o.strategy = s
	}
}

// WithPartitionOptions forwards options to partition.Partition.
func WithPartitionOptions(opts ...partition.Option) Option {
	return func(o *Options) {
		o.partitionOpts = append(o.partitionOpts, opts...)
	}
}

// WithFusionOptions forwards options to the fusion call in Predict.
func WithFusionOptions(opts ...fusion.Option) Option {
	return func(o *Options) {
		o.fusionOpts = append(o.fusionOpts, opts...)
	}
}

// WithWeighter selects the expert weighting (default fusion.DifferentialEntropy).
func WithWeighter(w fusion.Weighter) Option {
	if w == nil {
		panic(panicWeighterNil)
	}

	return func(o *Options) {
		o.weighter = w
	}
}

// WithPriorStd fixes the prior standard deviation. Without it Fit uses the
// standard deviation of all training targets.
func WithPriorStd(p float64) Option {
	if !(p > 0) || math.IsInf(p, 0) {
		panic(panicPriorInvalid)
	}

	return func(o *Options) {
		o.priorStd = p
	}
}

// WithWorkers bounds how many experts train or predict at once
// (default GOMAXPROCS).
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) {
		o.workers = n
	}
}

// WithLogger sets the logger (default discards). A *zap.SugaredLogger
// satisfies Logger.
func WithLogger(l Logger) Option {
	if l == nil {
		panic(panicLoggerNil)
	}

	return func(o *Options) {
		o.logger = l
	}
}

// WithMetrics sets the metrics collector (default discards), for example
// metrics.NewPrometheus.
func WithMetrics(m metrics.Collector) Option {
	if m == nil {
		panic(panicMetricsNil)
	}

	return func(o *Options) {
		o.metrics = m
	}
}

func gatherOptions(opts ...Option) Options {
	o := Options{
		strategy: partition.StrategyRandom,
		weighter: fusion.DifferentialEntropy,
		workers:  runtime.GOMAXPROCS(0),
		logger:   logging.NewNop(),
		metrics:  metrics.NewNop(),
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
