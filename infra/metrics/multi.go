package metrics

import (
	coremetrics "github.com/cheetahx/dispatch/core/metrics"
)

// MultiSink fans metric records out to several sinks. Optional capabilities
// are forwarded only to the sinks that implement them.
type MultiSink struct {
	sinks []coremetrics.MetricsSink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordCallOutcome forwards to every sink, returning the first error.
func (m *MultiSink) RecordCallOutcome(calls []coremetrics.CallMetric) error {
	var first error
	for _, s := range m.sinks {
		if err := s.RecordCallOutcome(calls); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordStageLatency forwards to capable sinks.
func (m *MultiSink) RecordStageLatency(latencies []coremetrics.StageLatency) error {
	var first error
	for _, s := range m.sinks {
		if sr, ok := s.(coremetrics.StageRecorder); ok {
			if err := sr.RecordStageLatency(latencies); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// RecordDispatchResult forwards to capable sinks.
func (m *MultiSink) RecordDispatchResult(ev coremetrics.DispatchEvent) error {
	var first error
	for _, s := range m.sinks {
		if rr, ok := s.(coremetrics.ResultRecorder); ok {
			if err := rr.RecordDispatchResult(ev); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// RecordPoolSize forwards to capable sinks.
func (m *MultiSink) RecordPoolSize(size int) error {
	var first error
	for _, s := range m.sinks {
		if pr, ok := s.(coremetrics.PoolSizeRecorder); ok {
			if err := pr.RecordPoolSize(size); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
