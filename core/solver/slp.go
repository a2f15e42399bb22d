package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// simplexTol is the pivot tolerance handed to the simplex solver.
const simplexTol = 1e-9

// maxBacktracks limits step halving during merit line search.
const maxBacktracks = 30

// Minimize runs the sequential linear programming iteration from x0.
// A non-nil error is returned only for invalid problems or non-finite
// evaluations; all other outcomes, including non-convergence, are reported
// through Result.Status.
func Minimize(p Problem, x0 []float64, s Settings) (Result, error) {
	if err := validate(p, x0); err != nil {
		return Result{}, err
	}
	s.setDefaults()

	n := len(x0)
	x := make([]float64, n)
	copy(x, x0)
	clamp(x, p.Bounds)

	trust := s.TrustRadius
	if trust <= 0 {
		trust = defaultTrust(p.Bounds)
	}

	f, err := evalObjective(p, x)
	if err != nil {
		return Result{}, err
	}

	res := Result{X: x, F: f}
	grad := make([]float64, n)
	cvals := make([]float64, len(p.Constraints))
	cgrads := mat.NewDense(max(1, len(p.Constraints)), n, nil)

	for iter := 1; iter <= s.MaxIterations; iter++ {
		res.Iterations = iter

		evalGradient(p, x, grad)
		if !allFinite(grad) {
			return res, fmt.Errorf("%w: objective gradient at iteration %d", ErrNumeric, iter)
		}
		for j, c := range p.Constraints {
			cvals[j] = c.F(x)
			if !isFinite(cvals[j]) {
				return res, fmt.Errorf("%w: constraint %q", ErrNumeric, c.Name)
			}
			row := cgrads.RawRowView(j)
			if c.Grad != nil {
				c.Grad(row, x)
			} else {
				fd.Gradient(row, c.F, x, nil)
			}
			if !allFinite(row) {
				return res, fmt.Errorf("%w: gradient of constraint %q", ErrNumeric, c.Name)
			}
		}
		viol := violation(cvals)

		d, lpErr := solveStep(grad, cvals, cgrads, x, p.Bounds, trust)
		if lpErr != nil {
			res.Status = StatusInfeasible
			res.Message = lpErr.Error()
			return res, nil
		}

		// First-order convergence: no descent potential left and the
		// iterate is feasible.
		gd := floats.Dot(grad, d)
		if viol <= s.Tolerance && math.Abs(gd) <= s.Tolerance*(1+math.Abs(f)) && floats.Norm(d, 2) <= s.Tolerance {
			res.Status = StatusConverged
			res.F = f
			return res, nil
		}

		xt := make([]float64, n)
		merit := f + s.Penalty*viol
		accepted := false
		for k := 0; k < maxBacktracks; k++ {
			floats.AddTo(xt, x, d)
			clamp(xt, p.Bounds)
			ft, err := evalObjective(p, xt)
			if err != nil {
				return res, err
			}
			violT, err := evalViolation(p, xt)
			if err != nil {
				return res, err
			}
			if ft+s.Penalty*violT < merit-1e-12 {
				copy(x, xt)
				f = ft
				accepted = true
				break
			}
			floats.Scale(0.5, d)
		}
		if !accepted {
			if viol <= s.Tolerance {
				res.Status = StatusConverged
			} else {
				res.Status = StatusStalled
				res.Message = fmt.Sprintf("merit stalled with constraint violation %g", viol)
			}
			res.F = f
			return res, nil
		}
	}

	res.Status = StatusIterationLimit
	res.Message = fmt.Sprintf("no convergence within %d iterations", s.MaxIterations)
	res.F = f
	return res, nil
}

// solveStep linearizes the problem at x and solves for the step d:
//
//	minimize  g·d
//	s.t.      ∇c_j·d + c_j(x) >= 0
//	          max(l_i-x_i, -Δ) <= d_i <= min(u_i-x_i, Δ)
//
// The LP is put in standard form with a split d = d⁺ - d⁻ and one slack per
// inequality row, then handed to the simplex method.
func solveStep(g, cvals []float64, cgrads *mat.Dense, x []float64, bounds []Bound, trust float64) ([]float64, error) {
	n := len(x)
	mc := len(cvals)
	rows := mc + 2*n

	// General form G·d <= h.
	G := mat.NewDense(rows, n, nil)
	h := make([]float64, rows)
	for j := 0; j < mc; j++ {
		for i := 0; i < n; i++ {
			G.Set(j, i, -cgrads.At(j, i))
		}
		h[j] = cvals[j]
	}
	for i := 0; i < n; i++ {
		lo, hi := -trust, trust
		if bounds != nil {
			lo = math.Max(bounds[i].Lower-x[i], lo)
			hi = math.Min(bounds[i].Upper-x[i], hi)
		}
		G.Set(mc+i, i, 1)
		h[mc+i] = hi
		G.Set(mc+n+i, i, -1)
		h[mc+n+i] = -lo
	}

	// Standard form over z = [d⁺ d⁻ slack].
	cols := 2*n + rows
	A := mat.NewDense(rows, cols, nil)
	c := make([]float64, cols)
	for i := 0; i < n; i++ {
		c[i] = g[i]
		c[n+i] = -g[i]
	}
	for r := 0; r < rows; r++ {
		for i := 0; i < n; i++ {
			A.Set(r, i, G.At(r, i))
			A.Set(r, n+i, -G.At(r, i))
		}
		A.Set(r, 2*n+r, 1)
	}

	_, z, err := lp.Simplex(c, A, h, simplexTol, nil)
	if err != nil {
		return nil, err
	}
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		d[i] = z[i] - z[n+i]
	}
	return d, nil
}

func evalObjective(p Problem, x []float64) (float64, error) {
	f := p.Objective(x)
	if !isFinite(f) {
		return f, fmt.Errorf("%w: objective at %v", ErrNumeric, x)
	}
	return f, nil
}

func evalGradient(p Problem, x, dst []float64) {
	if p.Grad != nil {
		p.Grad(dst, x)
		return
	}
	fd.Gradient(dst, p.Objective, x, nil)
}

func evalViolation(p Problem, x []float64) (float64, error) {
	var v float64
	for _, c := range p.Constraints {
		cv := c.F(x)
		if !isFinite(cv) {
			return 0, fmt.Errorf("%w: constraint %q", ErrNumeric, c.Name)
		}
		if cv < 0 {
			v -= cv
		}
	}
	return v, nil
}

func violation(cvals []float64) float64 {
	var v float64
	for _, c := range cvals {
		if c < 0 {
			v -= c
		}
	}
	return v
}

func clamp(x []float64, bounds []Bound) {
	if bounds == nil {
		return
	}
	for i := range x {
		if x[i] < bounds[i].Lower {
			x[i] = bounds[i].Lower
		}
		if x[i] > bounds[i].Upper {
			x[i] = bounds[i].Upper
		}
	}
}

// defaultTrust derives a step cap from the widest bound span, so a single
// iteration can cross the whole box.
func defaultTrust(bounds []Bound) float64 {
	trust := 1.0
	for _, b := range bounds {
		span := b.Upper - b.Lower
		if isFinite(span) && span > trust {
			trust = span
		}
	}
	return trust
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if !isFinite(x) {
			return false
		}
	}
	return true
}
