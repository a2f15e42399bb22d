package hydro

import "fmt"

// ScenarioSpec is the serialized form of a Scenario, used for scenario
// files and solve requests. Series may be given as a single element, which
// is broadcast over the horizon.
type ScenarioSpec struct {
	Horizon          int       `json:"horizon"`
	Inflow           []float64 `json:"inflow"`
	Price            []float64 `json:"price"`
	StorageMin       []float64 `json:"storage_min"`
	StorageMax       []float64 `json:"storage_max"`
	FlowMin          []float64 `json:"flow_min"`
	FlowMax          []float64 `json:"flow_max"`
	PeriodFlowMin    float64   `json:"period_flow_min"`
	PeriodFlowMax    float64   `json:"period_flow_max"`
	InitialStorage   float64   `json:"initial_storage"`
	Head             float64   `json:"head"`
	Density          float64   `json:"density"`
	Gravity          float64   `json:"gravity"`
	ConversionFactor float64   `json:"conversion_factor"`
}

// Scenario expands the spec into a full problem instance. StorageMin and
// FlowMin default to zero series when omitted; the horizon is inferred from
// the longest series when not set explicitly.
func (sp ScenarioSpec) Scenario() (Scenario, error) {
	t := sp.Horizon
	if t == 0 {
		for _, series := range [][]float64{sp.Inflow, sp.Price, sp.StorageMin, sp.StorageMax, sp.FlowMin, sp.FlowMax} {
			if len(series) > t {
				t = len(series)
			}
		}
	}
	if t == 0 {
		return Scenario{}, fmt.Errorf("%w: horizon is required", ErrInvalidInput)
	}

	sc := Scenario{
		PeriodFlowMin:    sp.PeriodFlowMin,
		PeriodFlowMax:    sp.PeriodFlowMax,
		InitialStorage:   sp.InitialStorage,
		Head:             sp.Head,
		Density:          sp.Density,
		Gravity:          sp.Gravity,
		ConversionFactor: sp.ConversionFactor,
	}

	var err error
	if sc.Inflow, err = broadcast("inflow", sp.Inflow, t, false); err != nil {
		return Scenario{}, err
	}
	if sc.Price, err = broadcast("price", sp.Price, t, false); err != nil {
		return Scenario{}, err
	}
	if sc.StorageMin, err = broadcast("storage_min", sp.StorageMin, t, true); err != nil {
		return Scenario{}, err
	}
	if sc.StorageMax, err = broadcast("storage_max", sp.StorageMax, t, false); err != nil {
		return Scenario{}, err
	}
	if sc.FlowMin, err = broadcast("flow_min", sp.FlowMin, t, true); err != nil {
		return Scenario{}, err
	}
	if sc.FlowMax, err = broadcast("flow_max", sp.FlowMax, t, false); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// broadcast expands a series to the horizon: a single element repeats, a
// full series passes through, and an empty optional series becomes zeros.
func broadcast(name string, series []float64, t int, optional bool) ([]float64, error) {
	switch len(series) {
	case t:
		out := make([]float64, t)
		copy(out, series)
		return out, nil
	case 1:
		out := make([]float64, t)
		for i := range out {
			out[i] = series[0]
		}
		return out, nil
	case 0:
		if optional {
			return make([]float64, t), nil
		}
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
	default:
		return nil, fmt.Errorf("%w: %s has %d steps, want 1 or %d", ErrInvalidInput, name, len(series), t)
	}
}
