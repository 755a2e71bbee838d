// SPDX-License-Identifier: MIT

// Command rbcm-srv serves fusion and partitioning over HTTP. It is
// configured through RBCM_* environment variables (see internal/config).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/katalvlaran/rbcm/internal/buildinfo"
	"github.com/katalvlaran/rbcm/internal/config"
	"github.com/katalvlaran/rbcm/internal/handler"
	"github.com/katalvlaran/rbcm/internal/logging"
	"github.com/katalvlaran/rbcm/metrics"
	"github.com/katalvlaran/rbcm/internal/server"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer done()

	if err := run(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "rbcm-srv: %v\n", err)
		done()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	ctx = logging.WithLogger(ctx, logger)

	logger.Infow("starting",
		"name", buildinfo.Info.Name(),
		"tag", buildinfo.Info.Tag(),
		"buildTime", buildinfo.Info.Time(),
		"addr", cfg.Addr,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewPrometheus(reg, cfg.MetricsNamespace)

	srv, err := server.New(cfg.Addr, cfg.ShutdownTimeout)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	if err := srv.ServeHTTPHandler(ctx, handler.New(cfg, logger, collector, reg)); err != nil {
		return fmt.Errorf("server.ServeHTTPHandler: %w", err)
	}
	logger.Infow("stopped")

	return nil
}
