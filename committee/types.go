// SPDX-License-Identifier: MIT

package committee

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/rbcm/partition"
)

var (
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("committee: not fitted")

	// ErrNoExperts is returned when a committee would hold no experts.
	ErrNoExperts = errors.New("committee: no experts")

	// ErrNilTrainer is returned by New for a nil Trainer.
	ErrNilTrainer = errors.New("committee: nil trainer")

	// ErrNilExpert is returned when a Trainer yields a nil Expert without error.
	ErrNilExpert = errors.New("committee: trainer returned nil expert")

	// ErrNilInput is returned for nil training or query matrices.
	ErrNilInput = errors.New("committee: nil input")
)

const (
	opNew     = "New"
	opFit     = "Fit"
	opPredict = "Predict"
)

func committeeErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// Trainer fits one expert on the rows idx of X and y.
// X is samples × inputs; y is samples × outputs.
type Trainer interface {
	Train(ctx context.Context, X, y mat.Matrix, idx partition.Group) (Expert, error)
}

// TrainerFunc adapts a function to Trainer.
type TrainerFunc func(ctx context.Context, X, y mat.Matrix, idx partition.Group) (Expert, error)

// Train calls f.
func (f TrainerFunc) Train(ctx context.Context, X, y mat.Matrix, idx partition.Group) (Expert, error) {
	return f(ctx, X, y, idx)
}

// Expert predicts at query rows Xq. mean is queries × outputs and std holds
// one non-negative standard deviation per query.
type Expert interface {
	Predict(ctx context.Context, Xq mat.Matrix) (mean *mat.Dense, std []float64, err error)
}

// Logger receives the committee's structured key/value log lines.
// *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}
