// SPDX-License-Identifier: MIT

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	fusionTotal     prometheus.Counter
	fusionLocations prometheus.Histogram
	fusionExperts   prometheus.Histogram
	fusionDuration  prometheus.Histogram
	fusionFailures  *prometheus.CounterVec

	partitionTotal    *prometheus.CounterVec
	partitionGroups   *prometheus.HistogramVec
	partitionDuration *prometheus.HistogramVec
}

// Compile-time assertion that PrometheusCollector implements Collector.
var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (prometheus.DefaultRegisterer if nil)
//   - namespace: metrics namespace ("rbcm" if empty)
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "rbcm"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.fusionTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "fusion",
			Name:      "requests_total",
			Help:      "Total successful fusion calls.",
		})
		p.fusionLocations = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "fusion",
			Name:      "locations",
			Help:      "Query locations per fusion call.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10), // 1 .. ~262k
		})
		p.fusionExperts = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "fusion",
			Name:      "experts",
			Help:      "Experts per fusion call.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 .. 512
		})
		p.fusionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "fusion",
			Name:      "duration_seconds",
			Help:      "Latency of fusion calls in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs .. ~26s
		})
		p.fusionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "fusion",
			Name:      "failures_total",
			Help:      "Total failed fusion calls by reason.",
		}, []string{"reason"})

		p.partitionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "partition",
			Name:      "requests_total",
			Help:      "Total partition calls by strategy.",
		}, []string{"strategy"})
		p.partitionGroups = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "partition",
			Name:      "groups",
			Help:      "Groups produced per partition call by strategy.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1 .. 2048
		}, []string{"strategy"})
		p.partitionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "partition",
			Name:      "duration_seconds",
			Help:      "Latency of partition calls in seconds by strategy.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"strategy"})

		p.reg.MustRegister(
			p.fusionTotal,
			p.fusionLocations,
			p.fusionExperts,
			p.fusionDuration,
			p.fusionFailures,
			p.partitionTotal,
			p.partitionGroups,
			p.partitionDuration,
		)
	})
}

// ObserveFusion records one successful fusion.
func (p *PrometheusCollector) ObserveFusion(locations, experts int, seconds float64) {
	p.ensureRegistered()
	p.fusionTotal.Inc()
	p.fusionLocations.Observe(float64(locations))
	p.fusionExperts.Observe(float64(experts))
	p.fusionDuration.Observe(seconds)
}

// IncFusionFailure counts a failed fusion by reason.
func (p *PrometheusCollector) IncFusionFailure(reason string) {
	p.ensureRegistered()
	p.fusionFailures.WithLabelValues(reason).Inc()
}

// ObservePartition records one partition call.
func (p *PrometheusCollector) ObservePartition(strategy string, groups int, seconds float64) {
	p.ensureRegistered()
	p.partitionTotal.WithLabelValues(strategy).Inc()
	p.partitionGroups.WithLabelValues(strategy).Observe(float64(groups))
	p.partitionDuration.WithLabelValues(strategy).Observe(seconds)
}
