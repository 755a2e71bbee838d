// SPDX-License-Identifier: MIT

package committee

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/rbcm/fusion"
	"github.com/katalvlaran/rbcm/partition"
)

// fallbackPriorStd is used when the training targets have no spread.
const fallbackPriorStd = 1.0

// Committee partitions a training set, trains one expert per group and fuses
// the experts' predictions. Predict is safe for concurrent use; Fit replaces
// the experts atomically.
type Committee struct {
	trainer         Trainer
	pointsPerExpert int
	o               Options

	mu       sync.RWMutex
	experts  []Expert
	groups   []partition.Group
	priorStd float64
}

// New returns an unfitted committee that trains experts with trainer on
// groups of about pointsPerExpert samples.
func New(trainer Trainer, pointsPerExpert int, opts ...Option) (*Committee, error) {
	if trainer == nil {
		return nil, committeeErrorf(opNew, ErrNilTrainer)
	}
	if pointsPerExpert < 1 {
		return nil, committeeErrorf(opNew, partition.ErrInvalidGroupSize)
	}

	return &Committee{
		trainer:         trainer,
		pointsPerExpert: pointsPerExpert,
		o:               gatherOptions(opts...),
	}, nil
}

// FromExperts returns a committee over already trained experts. Fit is not
// available on it.
func FromExperts(experts []Expert, priorStd float64, opts ...Option) (*Committee, error) {
	if len(experts) == 0 {
		return nil, committeeErrorf(opNew, ErrNoExperts)
	}
	for i, e := range experts {
		if e == nil {
			return nil, committeeErrorf(opNew, fmt.Errorf("expert %d: %w", i, ErrNilExpert))
		}
	}
	if !(priorStd > 0) || math.IsInf(priorStd, 0) {
		return nil, committeeErrorf(opNew, fusion.ErrInvalidPrior)
	}

	return &Committee{
		o:        gatherOptions(opts...),
		experts:  append([]Expert(nil), experts...),
		priorStd: priorStd,
	}, nil
}

// Fit partitions (X, y), trains one expert per group and replaces the current
// experts on success.
//
// Stage 1: validate shapes and partition the rows of X.
// Stage 2: train experts concurrently, bounded by WithWorkers. The first
// failure cancels the remaining trainings.
// Stage 3: resolve the prior standard deviation.
func (c *Committee) Fit(ctx context.Context, X, y mat.Matrix) error {
	if c.trainer == nil {
		return committeeErrorf(opFit, ErrNilTrainer)
	}
	if X == nil || y == nil {
		return committeeErrorf(opFit, ErrNilInput)
	}
	n, _ := X.Dims()
	if yr, _ := y.Dims(); yr != n {
		return committeeErrorf(opFit, fmt.Errorf("%w: X has %d rows, y has %d", fusion.ErrShapeMismatch, n, yr))
	}

	// Stage 1
	start := time.Now()
	groups, err := partition.Partition(X, c.pointsPerExpert, c.o.strategy, c.o.partitionOpts...)
	if err != nil {
		return committeeErrorf(opFit, err)
	}
	c.o.metrics.ObservePartition(c.o.strategy.String(), len(groups), time.Since(start).Seconds())
	c.o.logger.Debugw("partitioned training set",
		"strategy", c.o.strategy.String(),
		"samples", n,
		"groups", len(groups),
	)

	// Stage 2
	experts := make([]Expert, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.o.workers)
	for i, grp := range groups {
		g.Go(func() error {
			e, err := c.trainer.Train(gctx, X, y, grp)
			if err != nil {
				return fmt.Errorf("expert %d: %w", i, err)
			}
			if e == nil {
				return fmt.Errorf("expert %d: %w", i, ErrNilExpert)
			}
			experts[i] = e

			return nil
		})
	}
	if err = g.Wait(); err != nil {
		c.o.logger.Warnw("training failed", "error", err)

		return committeeErrorf(opFit, err)
	}

	// Stage 3
	prior := c.o.priorStd
	if prior == 0 {
		prior = targetStd(y)
	}

	c.mu.Lock()
	c.experts, c.groups, c.priorStd = experts, groups, prior
	c.mu.Unlock()

	c.o.logger.Infow("committee fitted",
		"experts", len(experts),
		"priorStd", prior,
		"elapsed", time.Since(start),
	)

	return nil
}

// targetStd is the standard deviation of every entry of y, or
// fallbackPriorStd when that is not positive.
func targetStd(y mat.Matrix) float64 {
	r, cols := y.Dims()
	values := make([]float64, 0, r*cols)
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			values = append(values, y.At(i, j))
		}
	}
	if len(values) < 2 {
		return fallbackPriorStd
	}
	s := stat.StdDev(values, nil)
	if !(s > 0) || math.IsInf(s, 0) {
		return fallbackPriorStd
	}

	return s
}

// Predict queries every expert at Xq concurrently and fuses their means and
// standard deviations into one result per query row.
func (c *Committee) Predict(ctx context.Context, Xq mat.Matrix) (*fusion.Result, error) {
	if Xq == nil {
		return nil, committeeErrorf(opPredict, ErrNilInput)
	}
	c.mu.RLock()
	experts, prior := c.experts, c.priorStd
	c.mu.RUnlock()
	if len(experts) == 0 {
		return nil, committeeErrorf(opPredict, ErrNotFitted)
	}

	start := time.Now()
	pred, sigma, err := c.collect(ctx, experts, Xq)
	if err != nil {
		c.o.metrics.IncFusionFailure(failureReason(err))

		return nil, committeeErrorf(opPredict, err)
	}

	res, err := fusion.FuseWith(pred, sigma, prior, c.o.weighter, c.o.fusionOpts...)
	if err != nil {
		c.o.metrics.IncFusionFailure(failureReason(err))
		c.o.logger.Warnw("fusion failed", "error", err)

		return nil, committeeErrorf(opPredict, err)
	}

	l, _, e := pred.Dims()
	elapsed := time.Since(start)
	c.o.metrics.ObserveFusion(l, e, elapsed.Seconds())
	c.o.logger.Debugw("fused predictions", "locations", l, "experts", e, "elapsed", elapsed)

	return res, nil
}

// collect gathers every expert's predictions into a tensor and std matrix.
func (c *Committee) collect(ctx context.Context, experts []Expert, Xq mat.Matrix) (*fusion.Tensor, *mat.Dense, error) {
	q, _ := Xq.Dims()
	means := make([]*mat.Dense, len(experts))
	stds := make([][]float64, len(experts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.o.workers)
	for i, ex := range experts {
		g.Go(func() error {
			m, s, err := ex.Predict(gctx, Xq)
			if err != nil {
				return &expertError{index: i, err: err}
			}
			if m == nil {
				return fmt.Errorf("expert %d: %w: nil mean", i, fusion.ErrShapeMismatch)
			}
			if r, _ := m.Dims(); r != q || len(s) != q {
				return fmt.Errorf("expert %d: %w: %d mean rows and %d std values for %d queries",
					i, fusion.ErrShapeMismatch, r, len(s), q)
			}
			means[i], stds[i] = m, s

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	_, f := means[0].Dims()
	for i, m := range means {
		if _, fi := m.Dims(); fi != f {
			return nil, nil, fmt.Errorf("expert %d: %w: %d outputs, expert 0 has %d", i, fusion.ErrShapeMismatch, fi, f)
		}
	}

	pred, err := fusion.NewTensor(q, f, len(experts))
	if err != nil {
		return nil, nil, err
	}
	sigma := mat.NewDense(q, len(experts), nil)
	var loc, feat int
	for e, m := range means {
		for loc = 0; loc < q; loc++ {
			sigma.Set(loc, e, stds[e][loc])
			for feat = 0; feat < f; feat++ {
				if err = pred.Set(loc, feat, e, m.At(loc, feat)); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	return pred, sigma, nil
}

// Experts returns the number of trained experts.
func (c *Committee) Experts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.experts)
}

// Groups returns a copy of the index groups of the last Fit.
func (c *Committee) Groups() []partition.Group {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]partition.Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = append(partition.Group(nil), g...)
	}

	return out
}

// PriorStd returns the prior standard deviation used by Predict.
func (c *Committee) PriorStd() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.priorStd
}

// expertError marks a failure raised by an expert itself.
type expertError struct {
	index int
	err   error
}

func (e *expertError) Error() string { return fmt.Sprintf("expert %d: %v", e.index, e.err) }

func (e *expertError) Unwrap() error { return e.err }

// failureReason maps an error to the fusion failure metric label.
func failureReason(err error) string {
	var ee *expertError
	switch {
	case errors.As(err, &ee):
		return "expert"
	case errors.Is(err, fusion.ErrShapeMismatch), errors.Is(err, fusion.ErrBadShape):
		return "shape"
	case errors.Is(err, fusion.ErrInvalidPrior):
		return "prior"
	case errors.Is(err, fusion.ErrInvalidUncertainty):
		return "uncertainty"
	case errors.Is(err, fusion.ErrNumericalInstability):
		return "instability"
	default:
		return "other"
	}
}
