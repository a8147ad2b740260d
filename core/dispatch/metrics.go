package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	pipelineLatency *prometheus.HistogramVec
	ordersProcessed *prometheus.CounterVec
	callOutcomes    *prometheus.CounterVec
	callDuration    *prometheus.HistogramVec
	stageLatency    *prometheus.HistogramVec
	activeDrivers   prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.HistogramVec, *prometheus.HistogramVec, prometheus.Gauge) {
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_pipeline_latency_seconds",
			Help:    "End-to-end latency of one order's dispatch run",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	orders := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_orders_total",
			Help: "Number of orders processed by terminal status",
		},
		[]string{"status", "reason"},
	)
	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_call_outcomes_total",
			Help: "Number of candidate calls by terminal outcome",
		},
		[]string{"outcome"},
	)
	durations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_call_duration_seconds",
			Help:    "Duration of individual candidate calls",
			Buckets: []float64{5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"outcome"},
	)
	stages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_stage_latency_seconds",
			Help:    "Latency of individual pipeline stages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	pool := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_active_drivers",
			Help: "Size of the active driver pool at the last run",
		},
	)
	return lat, orders, calls, durations, stages, pool
}

func init() {
	pipelineLatency, ordersProcessed, callOutcomes, callDuration, stageLatency, activeDrivers = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(pipelineLatency, ordersProcessed, callOutcomes, callDuration, stageLatency, activeDrivers)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	pipelineLatency, ordersProcessed, callOutcomes, callDuration, stageLatency, activeDrivers = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
