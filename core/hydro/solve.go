package hydro

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hydrosched/hydrosched/core/solver"
)

// Schedule is the outcome of one solve. Flows and Trajectory are always
// populated so a non-converged run can still be inspected, but Converged
// must be checked before treating the schedule as optimal.
type Schedule struct {
	// RunID uniquely identifies the solve.
	RunID string
	// Payoff is the total revenue of the schedule.
	Payoff float64
	// Flows is the release per step (m³).
	Flows []float64
	// Trajectory is the stored volume after each step (m³).
	Trajectory []float64
	// Iterations is the solver iteration count.
	Iterations int
	// Converged reports whether the solver reached an optimum.
	Converged bool
	// Message carries solver detail for non-converged runs.
	Message string
	// Elapsed is the wall-clock solve duration.
	Elapsed time.Duration
}

// ConvergenceError reports a solve that terminated without reaching an
// optimum. The accompanying Schedule is still returned to the caller.
type ConvergenceError struct {
	Status     solver.Status
	Message    string
	Iterations int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("solver stopped after %d iterations: %s (%s)", e.Iterations, e.Status, e.Message)
}

// Solve assembles the optimization problem for the scenario and runs the
// solver from an all-minimum initial guess. Invalid scenarios and non-finite
// evaluations return a nil schedule; a non-converged solve returns both the
// schedule and a *ConvergenceError.
func Solve(sc Scenario, settings solver.Settings) (*Schedule, error) {
	sc.SetDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	p := solver.Problem{
		Objective:   sc.Objective(),
		Grad:        sc.ObjectiveGrad(),
		Constraints: sc.Constraints(),
		Bounds:      sc.Bounds(),
	}
	q0 := make([]float64, sc.Horizon())

	start := time.Now()
	res, err := solver.Minimize(p, q0, settings)
	if err != nil {
		return nil, err
	}

	sched := &Schedule{
		RunID:      uuid.NewString(),
		Payoff:     -res.F,
		Flows:      res.X,
		Trajectory: sc.Trajectory(res.X),
		Iterations: res.Iterations,
		Converged:  res.Converged(),
		Message:    res.Message,
		Elapsed:    time.Since(start),
	}
	if !res.Converged() {
		return sched, &ConvergenceError{Status: res.Status, Message: res.Message, Iterations: res.Iterations}
	}
	return sched, nil
}
