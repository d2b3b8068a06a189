package evi

import (
	"fmt"
)

// ConfigurationError is returned when the parameters of an EVI call are
// invalid. It is returned before any sweep is performed.
type ConfigurationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("evi: invalid %v (%v): %v", e.Field, e.Value, e.Reason)
}

// DivergenceError is returned when EVI exhausts its sweep budget without
// meeting the convergence test, or when the bias vector stops being
// finite. It describes the state whose value moved the most on the last
// sweep together with the estimates of the action chosen there.
type DivergenceError struct {
	Iterations    int
	IncrementSpan float64
	Span          float64

	State        int
	ActionIndex  int
	Action       int
	Reward       float64
	RewardRadius float64

	// TransitionRadius is the L1 radius of the transition set of the
	// offending pair
	TransitionRadius float64
	Transitions      []float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("evi: no convergence after %v sweeps (increment span "+
		"%v, bias span %v); state %v action %v (index %v): r̂ = %v, β_r = %v, "+
		"β_p = %v, p̂ = %v", e.Iterations, e.IncrementSpan, e.Span, e.State,
		e.Action, e.ActionIndex, e.Reward, e.RewardRadius, e.TransitionRadius,
		e.Transitions)
}
