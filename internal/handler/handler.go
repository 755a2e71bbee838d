// SPDX-License-Identifier: MIT

// Package handler exposes fusion and partitioning over HTTP.
//
//	POST /fuse       api.FuseRequest      -> api.FuseResponse
//	POST /partition  api.PartitionRequest -> api.PartitionResponse
//	GET  /health
//	GET  /metrics    Prometheus exposition
//
// Every request gets an X-Request-ID (echoed when the client sent one) and a
// context logger carrying it.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/katalvlaran/rbcm/fusion"
	"github.com/katalvlaran/rbcm/internal/api"
	"github.com/katalvlaran/rbcm/internal/config"
	"github.com/katalvlaran/rbcm/internal/httputil"
	"github.com/katalvlaran/rbcm/internal/logging"
	"github.com/katalvlaran/rbcm/metrics"
	"github.com/katalvlaran/rbcm/partition"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type handler struct {
	cfg     *config.Config
	logger  *zap.SugaredLogger
	metrics metrics.Collector
}

// New returns the service mux. gatherer backs /metrics and may be nil, in
// which case the route is not mounted.
func New(cfg *config.Config, logger *zap.SugaredLogger, m metrics.Collector, gatherer prometheus.Gatherer) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	h := &handler{cfg: cfg, logger: logger, metrics: m}

	mux := http.NewServeMux()
	mux.HandleFunc("/fuse", h.fuse)
	mux.HandleFunc("/partition", h.partition)
	mux.HandleFunc("/health", h.health)
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return h.withRequestID(mux)
}

func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := logging.WithLogger(r.Context(), h.logger.With("requestID", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	httputil.RespJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) fuse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	var req api.FuseRequest
	if !httputil.DecodeJSON(ctx, w, r, h.cfg.MaxBodyBytes, &req) {
		h.metrics.IncFusionFailure("request")

		return
	}
	if len(req.Predictions) > h.cfg.MaxLocations {
		h.metrics.IncFusionFailure("request")
		httputil.RespBadRequest(ctx, w, "too many locations, max allowed is %d", h.cfg.MaxLocations)

		return
	}

	start := time.Now()
	resp, err := runWithDeadline(ctx, func() (*api.FuseResponse, error) {
		return api.Fuse(&req, fusion.WithWorkers(h.cfg.FusionWorkers))
	})
	if err != nil {
		h.metrics.IncFusionFailure(fuseFailureReason(err))
		h.respondErr(ctx, w, err)

		return
	}

	elapsed := time.Since(start)
	experts := 0
	if len(req.Sigma) > 0 {
		experts = len(req.Sigma[0])
	}
	h.metrics.ObserveFusion(len(resp.Variance), experts, elapsed.Seconds())
	logger.Debugw("fused", "locations", len(resp.Variance), "experts", experts, "elapsed", elapsed)
	httputil.RespJSON(ctx, w, http.StatusOK, resp)
}

func (h *handler) partition(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	var req api.PartitionRequest
	if !httputil.DecodeJSON(ctx, w, r, h.cfg.MaxBodyBytes, &req) {
		return
	}
	if len(req.X) > h.cfg.MaxLocations {
		httputil.RespBadRequest(ctx, w, "too many points, max allowed is %d", h.cfg.MaxLocations)

		return
	}

	start := time.Now()
	resp, err := runWithDeadline(ctx, func() (*api.PartitionResponse, error) {
		return api.Partition(&req, partition.WithThreshold(h.cfg.ClusterThreshold))
	})
	if err != nil {
		h.respondErr(ctx, w, err)

		return
	}

	elapsed := time.Since(start)
	s, _ := partition.ParseStrategy(req.Strategy)
	h.metrics.ObservePartition(s.String(), len(resp.Groups), elapsed.Seconds())
	logger.Debugw("partitioned", "points", len(req.X), "groups", len(resp.Groups), "elapsed", elapsed)
	httputil.RespJSON(ctx, w, http.StatusOK, resp)
}

func (h *handler) respondErr(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		httputil.RespError(ctx, w, http.StatusServiceUnavailable, "request timed out")
	case errors.Is(err, context.Canceled):
		logging.FromContext(ctx).Debugw("client went away", "error", err)
	case api.IsClientError(err):
		httputil.RespBadRequest(ctx, w, "%v", err)
	default:
		httputil.RespInternalError(ctx, w, "request failed: %v", err)
	}
}

// runWithDeadline runs fn in its own goroutine and gives up when ctx ends.
// The computation itself is not interrupted; its result is dropped.
func runWithDeadline[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v: v, err: err}
	}()

	select {
	case res := <-ch:
		return res.v, res.err
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

func fuseFailureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.Is(err, fusion.ErrShapeMismatch), errors.Is(err, fusion.ErrBadShape):
		return "shape"
	case errors.Is(err, fusion.ErrInvalidPrior):
		return "prior"
	case errors.Is(err, fusion.ErrInvalidUncertainty):
		return "uncertainty"
	case errors.Is(err, fusion.ErrNumericalInstability):
		return "instability"
	case errors.Is(err, api.ErrInvalidRequest):
		return "request"
	default:
		return "other"
	}
}
