package metrics

import (
	coremetrics "github.com/hydrosched/hydrosched/core/metrics"
	"github.com/hydrosched/hydrosched/infra/logger"
)

// FromConfig assembles the configured sinks into a single Sink. With no
// sink enabled a NopSink is returned.
func FromConfig(cfg coremetrics.Config, log logger.Logger) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	if cfg.PrometheusEnabled {
		sink, err := NewPromSink(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	switch len(sinks) {
	case 0:
		log.Warnf("no metrics sink enabled")
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
