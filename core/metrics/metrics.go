package metrics

import "time"

// CallMetric is a per-candidate call event to be recorded.
type CallMetric struct {
	OrderID        string
	DriverID       string
	Rank           int
	Outcome        string
	SentimentScore float64
	Duration       time.Duration
	Time           time.Time
}

// MetricsSink records call outcomes for observability purposes.
type MetricsSink interface {
	RecordCallOutcome(calls []CallMetric) error
}

// StageLatency captures how long one pipeline stage took for one order.
type StageLatency struct {
	OrderID string
	Stage   string
	Latency time.Duration
	Time    time.Time
}

// StageRecorder is implemented by sinks able to record stage latencies.
type StageRecorder interface {
	RecordStageLatency(latencies []StageLatency) error
}

// DispatchEvent is the terminal summary of one order's run.
type DispatchEvent struct {
	OrderID        string
	Status         string
	Reason         string
	DriverID       string
	Considered     int
	Called         int
	ProcessingTime time.Duration
	Time           time.Time
}

// ResultRecorder records terminal dispatch events.
type ResultRecorder interface {
	RecordDispatchResult(ev DispatchEvent) error
}

// PoolSizeRecorder records the number of active drivers seen per run.
type PoolSizeRecorder interface {
	RecordPoolSize(size int) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordCallOutcome([]CallMetric) error     { return nil }
func (NopSink) RecordStageLatency([]StageLatency) error  { return nil }
func (NopSink) RecordDispatchResult(DispatchEvent) error { return nil }
func (NopSink) RecordPoolSize(int) error                 { return nil }
