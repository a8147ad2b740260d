// Package metrics provides the observability sinks: an InfluxDB writer for
// dispatch analytics and a multiplexer to feed several sinks at once.
package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/cheetahx/dispatch/core/metrics"
	"github.com/cheetahx/dispatch/infra/logger"
)

// InfluxConfig locates the InfluxDB instance.
type InfluxConfig struct {
	URL    string `koanf:"url"`
	Token  string `koanf:"token"`
	Org    string `koanf:"org"`
	Bucket string `koanf:"bucket"`
}

// InfluxSink writes dispatch events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordCallOutcome writes per-candidate call events as line protocol.
func (s *InfluxSink) RecordCallOutcome(calls []coremetrics.CallMetric) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, c := range calls {
		p := write.NewPointWithMeasurement("call_event").
			AddTag("order_id", c.OrderID).
			AddTag("driver_id", c.DriverID).
			AddTag("outcome", c.Outcome).
			AddTag("rank", strconv.Itoa(c.Rank)).
			AddTag("component", "dispatch_pipeline").
			AddField("sentiment_score", round3(c.SentimentScore)).
			AddField("duration_seconds", round3(c.Duration.Seconds())).
			SetTime(c.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordStageLatency writes per-stage latency samples.
func (s *InfluxSink) RecordStageLatency(latencies []coremetrics.StageLatency) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, l := range latencies {
		p := write.NewPointWithMeasurement("stage_latency").
			AddTag("order_id", l.OrderID).
			AddTag("stage", l.Stage).
			AddField("latency_seconds", round3(l.Latency.Seconds())).
			SetTime(l.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordDispatchResult writes the terminal summary of an order.
func (s *InfluxSink) RecordDispatchResult(ev coremetrics.DispatchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("dispatch_result").
		AddTag("order_id", ev.OrderID).
		AddTag("status", ev.Status).
		AddTag("reason", ev.Reason).
		AddTag("driver_id", ev.DriverID).
		AddField("drivers_considered", ev.Considered).
		AddField("drivers_called", ev.Called).
		AddField("processing_seconds", round3(ev.ProcessingTime.Seconds())).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPoolSize writes the active pool size.
func (s *InfluxSink) RecordPoolSize(size int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("driver_pool").
		AddField("active", size).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
