package config

import (
	inframetrics "github.com/cheetahx/dispatch/infra/metrics"
)

// MetricsConfig defines where metrics are exposed and forwarded.
type MetricsConfig struct {
	// PromAddr serves the Prometheus endpoint when non-empty.
	PromAddr string `koanf:"prom_addr"`
	// InfluxEnabled additionally forwards dispatch events to InfluxDB.
	InfluxEnabled bool `koanf:"influx_enabled"`
	// Influx configures the InfluxDB client when InfluxEnabled is set.
	Influx inframetrics.InfluxConfig `koanf:"influx"`
}
