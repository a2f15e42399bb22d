package hydro

import (
	"fmt"

	"github.com/hydrosched/hydrosched/core/solver"
)

// Payoff computes the total revenue of a release schedule q.
func (s Scenario) Payoff(q []float64) float64 {
	coef := s.energyCoefficient()
	var total float64
	for t, price := range s.Price {
		total += q[t] * price * coef
	}
	return total
}

// Trajectory returns the stored volume after each step for the schedule q:
// initial storage plus cumulative inflow minus cumulative release.
func (s Scenario) Trajectory(q []float64) []float64 {
	x := make([]float64, s.Horizon())
	level := s.InitialStorage
	for t := range x {
		level += s.Inflow[t] - q[t]
		x[t] = level
	}
	return x
}

// Objective returns the negated payoff as a function of q, suitable for a
// minimizing solver. The scenario parameters are captured by value so
// concurrent problem instances stay independent.
func (s Scenario) Objective() func(q []float64) float64 {
	return func(q []float64) float64 { return -s.Payoff(q) }
}

// ObjectiveGrad returns the analytic gradient of the negated payoff.
func (s Scenario) ObjectiveGrad() func(dst, q []float64) {
	coef := s.energyCoefficient()
	return func(dst, q []float64) {
		for t, price := range s.Price {
			dst[t] = -price * coef
		}
	}
}

// Bounds returns the per-step release bounds.
func (s Scenario) Bounds() []solver.Bound {
	b := make([]solver.Bound, s.Horizon())
	for t := range b {
		b[t] = solver.Bound{Lower: s.FlowMin[t], Upper: s.FlowMax[t]}
	}
	return b
}

// Constraints builds the inequality set: total release within the period
// bounds, and the storage trajectory within its daily floor and ceiling.
// Every constraint evaluates to a non-negative value at a feasible q.
func (s Scenario) Constraints() []solver.Constraint {
	t := s.Horizon()
	cons := make([]solver.Constraint, 0, 2+2*t)

	cons = append(cons,
		solver.Constraint{
			Name: "period_flow_min",
			F: func(q []float64) float64 {
				return sum(q) - s.PeriodFlowMin
			},
			Grad: func(dst, q []float64) { fill(dst, 1) },
		},
		solver.Constraint{
			Name: "period_flow_max",
			F: func(q []float64) float64 {
				return s.PeriodFlowMax - sum(q)
			},
			Grad: func(dst, q []float64) { fill(dst, -1) },
		},
	)

	for step := 0; step < t; step++ {
		step := step
		cons = append(cons,
			solver.Constraint{
				Name: fmt.Sprintf("storage_min[%d]", step),
				F: func(q []float64) float64 {
					return s.level(q, step) - s.StorageMin[step]
				},
				Grad: func(dst, q []float64) { fillPrefix(dst, step, -1) },
			},
			solver.Constraint{
				Name: fmt.Sprintf("storage_max[%d]", step),
				F: func(q []float64) float64 {
					return s.StorageMax[step] - s.level(q, step)
				},
				Grad: func(dst, q []float64) { fillPrefix(dst, step, 1) },
			},
		)
	}
	return cons
}

// level is the stored volume after the given step for schedule q.
func (s Scenario) level(q []float64, step int) float64 {
	level := s.InitialStorage
	for i := 0; i <= step; i++ {
		level += s.Inflow[i] - q[i]
	}
	return level
}

func sum(v []float64) float64 {
	var total float64
	for _, x := range v {
		total += x
	}
	return total
}

func fill(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}

// fillPrefix writes v for indices up to and including step and zero beyond,
// matching the cumulative release terms of the trajectory.
func fillPrefix(dst []float64, step int, v float64) {
	for i := range dst {
		if i <= step {
			dst[i] = v
		} else {
			dst[i] = 0
		}
	}
}
