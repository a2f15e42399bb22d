// Package app wires configuration, transport, metrics and the solver into
// the long-running solve worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hydrosched/hydrosched/config"
	"github.com/hydrosched/hydrosched/core/hydro"
	coremetrics "github.com/hydrosched/hydrosched/core/metrics"
	"github.com/hydrosched/hydrosched/core/solver"
	"github.com/hydrosched/hydrosched/infra/logger"
	"github.com/hydrosched/hydrosched/infra/metrics"
	"github.com/hydrosched/hydrosched/infra/mqtt"
)

// Service consumes solve requests from MQTT and publishes schedules.
type Service struct {
	client      *mqtt.PahoClient
	sink        coremetrics.Sink
	settings    solver.Settings
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	sink, err := metrics.FromConfig(cfg.Metrics, logg)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	return &Service{
		client:      client,
		sink:        sink,
		settings:    cfg.Solver,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Run subscribes to the request topic and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.client.SubscribeRequests(func(req mqtt.SolveRequest) {
		res := s.handle(req)
		if err := s.client.PublishResult(res); err != nil {
			s.log.Errorf("publish result: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// handle solves one request. Every outcome maps to a response: invalid
// scenarios carry only an error, non-converged runs carry the schedule plus
// the solver message.
func (s *Service) handle(req mqtt.SolveRequest) mqtt.SolveResponse {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	res := mqtt.SolveResponse{RequestID: req.RequestID}

	sc, err := req.Scenario.Scenario()
	if err != nil {
		s.log.Warnf("request %s rejected: %v", req.RequestID, err)
		res.Error = err.Error()
		return res
	}

	sched, err := hydro.Solve(sc, s.settings)
	var cerr *hydro.ConvergenceError
	switch {
	case err == nil:
	case errors.As(err, &cerr):
		res.Error = cerr.Error()
	default:
		s.log.Errorf("request %s failed: %v", req.RequestID, err)
		res.Error = err.Error()
		return res
	}

	res.RunID = sched.RunID
	res.Payoff = sched.Payoff
	res.Flows = sched.Flows
	res.Trajectory = sched.Trajectory
	res.Iterations = sched.Iterations
	res.Converged = sched.Converged

	ev := coremetrics.SolveEvent{
		RunID:      sched.RunID,
		Horizon:    sc.Horizon(),
		Payoff:     sched.Payoff,
		Iterations: sched.Iterations,
		Converged:  sched.Converged,
		Duration:   sched.Elapsed,
		Time:       time.Now(),
	}
	if err := s.sink.RecordSolve(ev); err != nil {
		s.log.Errorf("record solve: %v", err)
	}
	s.log.Debugw("solve finished", map[string]any{
		"run_id":     sched.RunID,
		"payoff":     sched.Payoff,
		"iterations": sched.Iterations,
		"converged":  sched.Converged,
	})
	return res
}

// Close releases the MQTT connection.
func (s *Service) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
