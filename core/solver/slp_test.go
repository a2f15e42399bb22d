package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimize_BoxOnly(t *testing.T) {
	p := Problem{
		Objective: func(x []float64) float64 { return x[0] },
		Bounds:    []Bound{{Lower: 2, Upper: 5}},
	}
	res, err := Minimize(p, []float64{4}, Settings{})
	require.NoError(t, err)
	require.True(t, res.Converged(), "status: %v", res.Status)
	assert.InDelta(t, 2, res.X[0], 1e-6)
	assert.InDelta(t, 2, res.F, 1e-6)
}

func TestMinimize_LinearConstrained(t *testing.T) {
	// maximize x+2y subject to x+y <= 3, 0 <= x,y <= 2.
	p := Problem{
		Objective: func(x []float64) float64 { return -(x[0] + 2*x[1]) },
		Grad: func(dst, x []float64) {
			dst[0] = -1
			dst[1] = -2
		},
		Constraints: []Constraint{{
			Name: "budget",
			F:    func(x []float64) float64 { return 3 - x[0] - x[1] },
			Grad: func(dst, x []float64) {
				dst[0] = -1
				dst[1] = -1
			},
		}},
		Bounds: []Bound{{0, 2}, {0, 2}},
	}
	res, err := Minimize(p, []float64{0, 0}, Settings{})
	require.NoError(t, err)
	require.True(t, res.Converged(), "status: %v %s", res.Status, res.Message)
	assert.InDelta(t, -5, res.F, 1e-6)
	assert.InDelta(t, 1, res.X[0], 1e-6)
	assert.InDelta(t, 2, res.X[1], 1e-6)
}

func TestMinimize_FiniteDifferenceGradients(t *testing.T) {
	// Same problem as above without analytic gradients.
	p := Problem{
		Objective: func(x []float64) float64 { return -(x[0] + 2*x[1]) },
		Constraints: []Constraint{{
			Name: "budget",
			F:    func(x []float64) float64 { return 3 - x[0] - x[1] },
		}},
		Bounds: []Bound{{0, 2}, {0, 2}},
	}
	res, err := Minimize(p, []float64{0, 0}, Settings{})
	require.NoError(t, err)
	require.True(t, res.Converged())
	assert.InDelta(t, -5, res.F, 1e-4)
}

func TestMinimize_InfeasibleConstraint(t *testing.T) {
	p := Problem{
		Objective: func(x []float64) float64 { return x[0] },
		Constraints: []Constraint{{
			Name: "unreachable",
			F:    func(x []float64) float64 { return x[0] - 5 },
		}},
		Bounds: []Bound{{0, 1}},
	}
	res, err := Minimize(p, []float64{0}, Settings{})
	require.NoError(t, err)
	assert.False(t, res.Converged())
	assert.Equal(t, StatusInfeasible, res.Status)
	assert.NotEmpty(t, res.Message)
}

func TestMinimize_PinnedVariable(t *testing.T) {
	p := Problem{
		Objective: func(x []float64) float64 { return -x[0] },
		Bounds:    []Bound{{1, 1}},
	}
	res, err := Minimize(p, []float64{0}, Settings{})
	require.NoError(t, err)
	require.True(t, res.Converged())
	assert.InDelta(t, 1, res.X[0], 1e-9)
}

func TestMinimize_NonFiniteObjective(t *testing.T) {
	p := Problem{
		Objective: func(x []float64) float64 { return math.NaN() },
		Bounds:    []Bound{{0, 1}},
	}
	_, err := Minimize(p, []float64{0}, Settings{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNumeric))
}

func TestMinimize_InvalidProblem(t *testing.T) {
	_, err := Minimize(Problem{}, []float64{0}, Settings{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadProblem))

	p := Problem{
		Objective: func(x []float64) float64 { return x[0] },
		Bounds:    []Bound{{Lower: 2, Upper: 1}},
	}
	_, err = Minimize(p, []float64{0}, Settings{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadProblem))
}

func TestMinimize_Deterministic(t *testing.T) {
	p := Problem{
		Objective: func(x []float64) float64 { return -(3*x[0] + x[1]) },
		Constraints: []Constraint{{
			Name: "cap",
			F:    func(x []float64) float64 { return 4 - x[0] - x[1] },
		}},
		Bounds: []Bound{{0, 3}, {0, 3}},
	}
	a, err := Minimize(p, []float64{0, 0}, Settings{})
	require.NoError(t, err)
	b, err := Minimize(p, []float64{0, 0}, Settings{})
	require.NoError(t, err)
	assert.Equal(t, a.F, b.F)
	assert.Equal(t, a.X, b.X)
	assert.Equal(t, a.Iterations, b.Iterations)
}
