package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrosched/hydrosched/core/hydro"
	coremetrics "github.com/hydrosched/hydrosched/core/metrics"
	"github.com/hydrosched/hydrosched/core/solver"
	"github.com/hydrosched/hydrosched/infra/logger"
	"github.com/hydrosched/hydrosched/infra/mqtt"
)

type captureSink struct {
	events []coremetrics.SolveEvent
}

func (c *captureSink) RecordSolve(ev coremetrics.SolveEvent) error {
	c.events = append(c.events, ev)
	return nil
}

func newTestService(sink coremetrics.Sink) *Service {
	return &Service{
		sink:     sink,
		settings: solver.Settings{},
		log:      logger.NopLogger{},
	}
}

func referenceSpec() hydro.ScenarioSpec {
	return hydro.ScenarioSpec{
		Horizon:        50,
		Inflow:         []float64{10},
		Price:          []float64{10},
		StorageMax:     []float64{1000},
		FlowMax:        []float64{50},
		PeriodFlowMax:  150,
		InitialStorage: 100,
		Head:           0.85,
	}
}

func TestHandle_SolvesRequest(t *testing.T) {
	sink := &captureSink{}
	svc := newTestService(sink)

	res := svc.handle(mqtt.SolveRequest{RequestID: "req-1", Scenario: referenceSpec()})

	require.Empty(t, res.Error)
	assert.Equal(t, "req-1", res.RequestID)
	assert.True(t, res.Converged)
	assert.InDelta(t, 3.48, res.Payoff, 0.01)
	assert.Len(t, res.Flows, 50)
	assert.Len(t, res.Trajectory, 50)

	require.Len(t, sink.events, 1)
	assert.Equal(t, res.RunID, sink.events[0].RunID)
	assert.Equal(t, 50, sink.events[0].Horizon)
	assert.True(t, sink.events[0].Converged)
}

func TestHandle_GeneratesRequestID(t *testing.T) {
	svc := newTestService(coremetrics.NopSink{})
	res := svc.handle(mqtt.SolveRequest{Scenario: referenceSpec()})
	assert.NotEmpty(t, res.RequestID)
}

func TestHandle_RejectsInvalidScenario(t *testing.T) {
	sink := &captureSink{}
	svc := newTestService(sink)

	spec := referenceSpec()
	spec.Head = -1
	res := svc.handle(mqtt.SolveRequest{RequestID: "bad", Scenario: spec})

	assert.NotEmpty(t, res.Error)
	assert.False(t, res.Converged)
	assert.Empty(t, res.RunID)
	assert.Empty(t, sink.events, "rejected requests record no metrics")
}

func TestHandle_ReportsNonConvergence(t *testing.T) {
	sink := &captureSink{}
	svc := newTestService(sink)

	spec := referenceSpec()
	spec.PeriodFlowMin = 3000
	spec.PeriodFlowMax = 4000
	res := svc.handle(mqtt.SolveRequest{RequestID: "infeasible", Scenario: spec})

	assert.False(t, res.Converged)
	assert.NotEmpty(t, res.Error)
	assert.NotEmpty(t, res.RunID, "schedule is still reported")
	require.Len(t, sink.events, 1)
	assert.False(t, sink.events[0].Converged)
}
