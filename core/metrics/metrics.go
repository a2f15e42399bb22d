// Package metrics defines the sink interface used to record solve outcomes.
// Implementations live under infra/metrics.
package metrics

import "time"

// Config selects and configures the metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SolveEvent describes one completed solver run.
type SolveEvent struct {
	RunID      string
	Horizon    int
	Payoff     float64
	Iterations int
	Converged  bool
	Duration   time.Duration
	Time       time.Time
}

// Sink records solve events. Implementations must be safe for concurrent
// use.
type Sink interface {
	RecordSolve(ev SolveEvent) error
}

// NopSink discards every event.
type NopSink struct{}

// RecordSolve implements Sink.
func (NopSink) RecordSolve(SolveEvent) error { return nil }
