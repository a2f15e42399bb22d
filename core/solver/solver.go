// Package solver minimizes a smooth objective subject to inequality
// constraints and box bounds. Problems are solved by sequential linear
// programming: each iterate linearizes the objective and constraints and
// solves the resulting LP subproblem with the simplex method, stepping under
// an L1 merit function until a KKT point is reached.
package solver

import (
	"errors"
	"fmt"
)

// Constraint is a scalar inequality. A point x is feasible for the
// constraint when F(x) >= 0.
type Constraint struct {
	// Name identifies the constraint in status messages.
	Name string
	F    func(x []float64) float64
	// Grad writes the gradient of F at x into dst. When nil the solver
	// falls back to finite differences.
	Grad func(dst, x []float64)
}

// Bound limits a single decision variable. Use ±Inf for an unbounded side.
type Bound struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Problem is a constrained minimization problem. Objective is required;
// Grad, constraint gradients and Bounds are optional.
type Problem struct {
	Objective   func(x []float64) float64
	Grad        func(dst, x []float64)
	Constraints []Constraint
	Bounds      []Bound
}

// Settings tunes the iteration. The zero value selects defaults.
type Settings struct {
	// MaxIterations caps the number of LP subproblems solved.
	MaxIterations int `json:"max_iterations"`
	// Tolerance bounds both the constraint violation and the step norm
	// accepted at convergence.
	Tolerance float64 `json:"tolerance"`
	// TrustRadius limits the per-variable step of a single iteration.
	// Zero derives a radius from the bound spans.
	TrustRadius float64 `json:"trust_radius"`
	// Penalty weighs constraint violation in the L1 merit function.
	Penalty float64 `json:"penalty"`
}

func (s *Settings) setDefaults() {
	if s.MaxIterations <= 0 {
		s.MaxIterations = 100
	}
	if s.Tolerance <= 0 {
		s.Tolerance = 1e-6
	}
	if s.Penalty <= 0 {
		s.Penalty = 1e3
	}
}

// Status reports how an optimization run ended.
type Status int

const (
	// StatusConverged means a point satisfying the first-order conditions
	// within tolerance was found.
	StatusConverged Status = iota
	// StatusIterationLimit means MaxIterations was exhausted first.
	StatusIterationLimit
	// StatusInfeasible means the linearized constraints admit no step, so
	// the feasible region is empty or unreachable from the iterate.
	StatusInfeasible
	// StatusStalled means no step could reduce the merit function while
	// constraints remain violated.
	StatusStalled
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusIterationLimit:
		return "iteration limit reached"
	case StatusInfeasible:
		return "infeasible subproblem"
	case StatusStalled:
		return "stalled on merit function"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result holds the final iterate of a run. Callers must check Converged
// before treating X as an optimum.
type Result struct {
	// X is the final decision vector.
	X []float64
	// F is the objective value at X.
	F float64
	// Iterations is the number of LP subproblems solved.
	Iterations int
	// Status classifies the termination.
	Status Status
	// Message carries solver detail for non-converged runs.
	Message string
}

// Converged reports whether X is a local optimum within tolerance.
func (r Result) Converged() bool { return r.Status == StatusConverged }

// ErrNumeric signals a NaN or Inf during objective or constraint
// evaluation, typically caused by malformed problem parameters.
var ErrNumeric = errors.New("non-finite objective or constraint value")

// ErrBadProblem signals a structurally invalid problem definition.
var ErrBadProblem = errors.New("invalid problem definition")

func validate(p Problem, x0 []float64) error {
	if p.Objective == nil {
		return fmt.Errorf("%w: objective is required", ErrBadProblem)
	}
	if len(x0) == 0 {
		return fmt.Errorf("%w: empty initial point", ErrBadProblem)
	}
	if p.Bounds != nil && len(p.Bounds) != len(x0) {
		return fmt.Errorf("%w: %d bounds for %d variables", ErrBadProblem, len(p.Bounds), len(x0))
	}
	for i, b := range p.Bounds {
		if b.Lower > b.Upper {
			return fmt.Errorf("%w: bound %d inverted (%g > %g)", ErrBadProblem, i, b.Lower, b.Upper)
		}
	}
	for j, c := range p.Constraints {
		if c.F == nil {
			return fmt.Errorf("%w: constraint %d (%s) has no function", ErrBadProblem, j, c.Name)
		}
	}
	return nil
}
