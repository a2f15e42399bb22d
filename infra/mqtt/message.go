package mqtt

import "github.com/hydrosched/hydrosched/core/hydro"

// SolveRequest is the payload expected on the request topic.
type SolveRequest struct {
	// RequestID correlates the response with the request. When empty the
	// worker generates one.
	RequestID string             `json:"request_id"`
	Scenario  hydro.ScenarioSpec `json:"scenario"`
}

// SolveResponse is published on the result topic after each request.
type SolveResponse struct {
	RequestID  string    `json:"request_id"`
	RunID      string    `json:"run_id,omitempty"`
	Payoff     float64   `json:"payoff,omitempty"`
	Flows      []float64 `json:"flows,omitempty"`
	Trajectory []float64 `json:"trajectory,omitempty"`
	Iterations int       `json:"iterations,omitempty"`
	Converged  bool      `json:"converged"`
	// Error carries the failure description for rejected requests.
	Error string `json:"error,omitempty"`
}
