package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/hydrosched/hydrosched/core/metrics"
)

// PromSink records solve outcomes in Prometheus metrics.
type PromSink struct {
	solves   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	payoff   prometheus.Gauge
}

// NewPromSink registers solve metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hydrosched_solves_total",
		Help: "Total number of scheduling solves",
	}, []string{"converged"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hydrosched_solve_duration_seconds",
		Help:    "Wall-clock duration of a scheduling solve",
		Buckets: prometheus.DefBuckets,
	}, []string{"converged"})
	payoff := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hydrosched_last_payoff",
		Help: "Payoff of the most recent converged solve",
	})

	if err := reg.Register(solves); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solves = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(payoff); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			payoff = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{solves: solves, duration: duration, payoff: payoff}, nil
}

// RecordSolve increments the solve counter and observes the duration.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	converged := strconv.FormatBool(ev.Converged)
	s.solves.WithLabelValues(converged).Inc()
	s.duration.WithLabelValues(converged).Observe(ev.Duration.Seconds())
	if ev.Converged {
		s.payoff.Set(ev.Payoff)
	}
	return nil
}
