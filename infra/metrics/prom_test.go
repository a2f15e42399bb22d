package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/hydrosched/hydrosched/core/metrics"
)

func TestPromSink_RecordSolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}

	ev := coremetrics.SolveEvent{
		RunID:      "run1",
		Horizon:    50,
		Payoff:     3.48,
		Iterations: 2,
		Converged:  true,
		Duration:   15 * time.Millisecond,
		Time:       time.Now(),
	}
	if err := sink.RecordSolve(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP hydrosched_solves_total Total number of scheduling solves
# TYPE hydrosched_solves_total counter
hydrosched_solves_total{converged="true"} 1
`
	if err := testutil.CollectAndCompare(sink.solves, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	if c := testutil.CollectAndCount(sink.duration); c == 0 {
		t.Errorf("duration not recorded")
	}

	expectedPayoff := `
# HELP hydrosched_last_payoff Payoff of the most recent converged solve
# TYPE hydrosched_last_payoff gauge
hydrosched_last_payoff 3.48
`
	if err := testutil.CollectAndCompare(sink.payoff, strings.NewReader(expectedPayoff)); err != nil {
		t.Errorf("unexpected payoff metric: %v", err)
	}
}

func TestPromSink_NotConvergedKeepsPayoff(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink := sinkIf.(*PromSink)

	if err := sink.RecordSolve(coremetrics.SolveEvent{Converged: true, Payoff: 2}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordSolve(coremetrics.SolveEvent{Converged: false, Payoff: 99}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.payoff); got != 2 {
		t.Errorf("payoff gauge = %v, want 2", got)
	}
}
