// SPDX-License-Identifier: MIT

package metrics

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for tests and library use without an
// exporter.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements Collector.
var _ Collector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// ObserveFusion discards the fusion observation.
func (n *NopMetrics) ObserveFusion(_ /* locations */, _ /* experts */ int, _ /* seconds */ float64) {
}

// IncFusionFailure discards the failure.
func (n *NopMetrics) IncFusionFailure(_ /* reason */ string) {}

// ObservePartition discards the partition observation.
func (n *NopMetrics) ObservePartition(_ /* strategy */ string, _ /* groups */ int, _ /* seconds */ float64) {
}
