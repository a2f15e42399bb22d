// Package hydro formulates single-reservoir hydropower scheduling problems.
// A scenario fixes the inflow, spot price and bound series over a horizon of
// daily steps; solving it yields the release schedule that maximizes the
// energy payoff while the stored volume stays within its daily limits.
package hydro

import (
	"errors"
	"fmt"
	"math"
)

// Default physical constants for the energy conversion.
const (
	DefaultDensity          = 1000.0  // kg/m³
	DefaultGravity          = 9.81    // m/s²
	DefaultConversionFactor = 2.78e-7 // J to kWh
)

// ErrInvalidInput signals an inconsistent or malformed scenario.
var ErrInvalidInput = errors.New("invalid scenario")

// Scenario is a complete problem instance. All series are indexed by time
// step and must share the horizon length.
type Scenario struct {
	// Inflow is the water volume entering the reservoir each step (m³).
	Inflow []float64
	// Price is the spot price per unit energy each step.
	Price []float64
	// StorageMin and StorageMax bound the stored volume each step (m³).
	StorageMin []float64
	StorageMax []float64
	// FlowMin and FlowMax bound the release each step (m³).
	FlowMin []float64
	FlowMax []float64
	// PeriodFlowMin and PeriodFlowMax bound the total release over the
	// whole horizon.
	PeriodFlowMin float64
	PeriodFlowMax float64
	// InitialStorage is the stored volume before the first step (m³).
	InitialStorage float64
	// Head is the vertical drop of the plant (m).
	Head float64
	// Density, Gravity and ConversionFactor complete the energy formula.
	// Zero values select the defaults above.
	Density          float64
	Gravity          float64
	ConversionFactor float64
}

// Horizon returns the number of time steps.
func (s Scenario) Horizon() int { return len(s.Inflow) }

// SetDefaults fills the physical constants left at zero.
func (s *Scenario) SetDefaults() {
	if s.Density == 0 {
		s.Density = DefaultDensity
	}
	if s.Gravity == 0 {
		s.Gravity = DefaultGravity
	}
	if s.ConversionFactor == 0 {
		s.ConversionFactor = DefaultConversionFactor
	}
}

// Validate checks series lengths, bound ordering and physical constants.
func (s Scenario) Validate() error {
	t := s.Horizon()
	if t == 0 {
		return fmt.Errorf("%w: empty horizon", ErrInvalidInput)
	}
	for name, series := range map[string][]float64{
		"inflow":      s.Inflow,
		"price":       s.Price,
		"storage_min": s.StorageMin,
		"storage_max": s.StorageMax,
		"flow_min":    s.FlowMin,
		"flow_max":    s.FlowMax,
	} {
		if len(series) != t {
			return fmt.Errorf("%w: %s has %d steps, want %d", ErrInvalidInput, name, len(series), t)
		}
		for i, v := range series {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s[%d] is not finite", ErrInvalidInput, name, i)
			}
		}
	}
	for i := 0; i < t; i++ {
		if s.FlowMin[i] < 0 {
			return fmt.Errorf("%w: flow_min[%d] is negative", ErrInvalidInput, i)
		}
		if s.FlowMin[i] > s.FlowMax[i] {
			return fmt.Errorf("%w: flow bounds inverted at step %d (%g > %g)", ErrInvalidInput, i, s.FlowMin[i], s.FlowMax[i])
		}
		if s.StorageMin[i] > s.StorageMax[i] {
			return fmt.Errorf("%w: storage bounds inverted at step %d (%g > %g)", ErrInvalidInput, i, s.StorageMin[i], s.StorageMax[i])
		}
	}
	if s.PeriodFlowMin > s.PeriodFlowMax {
		return fmt.Errorf("%w: period flow bounds inverted (%g > %g)", ErrInvalidInput, s.PeriodFlowMin, s.PeriodFlowMax)
	}
	if s.Head <= 0 || math.IsNaN(s.Head) || math.IsInf(s.Head, 0) {
		return fmt.Errorf("%w: head must be positive", ErrInvalidInput)
	}
	if s.Density <= 0 || s.Gravity <= 0 || s.ConversionFactor <= 0 {
		return fmt.Errorf("%w: density, gravity and conversion factor must be positive", ErrInvalidInput)
	}
	return nil
}

// energyCoefficient converts released volume times price into payoff.
func (s Scenario) energyCoefficient() float64 {
	return s.Head * s.Density * s.Gravity * s.ConversionFactor
}
