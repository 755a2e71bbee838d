// SPDX-License-Identifier: MIT

// Package metrics records partition and fusion activity.
//
// NewNop discards everything; NewPrometheus exports counters and histograms
// registered lazily on first use.
package metrics

// Collector receives partition and fusion observations.
type Collector interface {
	// ObserveFusion records one successful fusion over the given batch.
	ObserveFusion(locations, experts int, seconds float64)

	// IncFusionFailure counts a failed fusion by reason
	// (shape, prior, uncertainty, instability, expert, other).
	IncFusionFailure(reason string)

	// ObservePartition records one partition call and the groups it produced.
	ObservePartition(strategy string, groups int, seconds float64)
}
