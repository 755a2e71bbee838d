// SPDX-License-Identifier: MIT

// Package committee assembles a robust Bayesian Committee Machine from
// caller-supplied experts.
//
// The package only orchestrates. A Trainer turns one index group into an
// Expert; an Expert returns a predictive mean and standard deviation per
// query row. Committee wires partition → train → predict → fuse:
//
//	c, err := committee.New(trainer, 500,
//		committee.WithStrategy(partition.StrategyCluster),
//		committee.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	if err = c.Fit(ctx, X, y); err != nil {
//		return err
//	}
//	res, err := c.Predict(ctx, Xq) // res.Mean, res.Var
//
// Training and prediction run one goroutine per expert, bounded by
// WithWorkers. Experts must be safe for concurrent Predict calls when the
// committee itself is queried concurrently.
package committee
