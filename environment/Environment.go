// Package environment outlines the interfaces and structs needed to
// implement finite, continuing environments that an episodic controller
// can learn in.
package environment

import (
	"fmt"

	"github.com/samuelfneumann/ucrl/timestep"
)

// Environment implements a finite Markov Decision Process whose
// transition probabilities and rewards are unknown to the agent.
//
// States are identified by integers in [0, NumStates()). Each state has
// its own ordered list of legal action ids given by StateActions(); an
// agent refers to an action either by its id or by its position (the
// action index) in that list.
type Environment interface {
	// Reset puts the environment in its starting state
	Reset() timestep.TimeStep

	// Execute takes the action with id action in the current state,
	// moving the environment to its next state. An action that is not
	// legal in the current state results in an *IllegalActionError.
	Execute(action int) (timestep.TimeStep, error)

	// StateActions returns the legal action ids of each state
	StateActions() [][]int

	// State returns the current state of the environment
	State() int

	NumStates() int
}

// Optimal is an Environment whose ground-truth optimal average reward
// is known. It is only ever used for offline reporting such as regret.
type Optimal interface {
	Environment
	MaxGain() (float64, error)
	Span() (float64, error)
}

// Evaluator is an Environment that can compute the exact long-run
// average reward of a fixed deterministic policy, given as one action
// index per state.
type Evaluator interface {
	Environment
	PolicyGain(policyIndices []int) (float64, error)
}

// IllegalActionError is returned when an action not present in the
// current state's action list is requested
type IllegalActionError struct {
	State  int
	Action int
	Legal  []int
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("action %v cannot be executed in state %v (legal "+
		"actions: %v)", e.Action, e.State, e.Legal)
}

// ActionIndex returns the position of action in the legal actions of
// state s, or an *IllegalActionError if the action is not legal there.
func ActionIndex(stateActions [][]int, s, action int) (int, error) {
	if s < 0 || s >= len(stateActions) {
		return -1, fmt.Errorf("actionIndex: no such state %v", s)
	}
	for i, a := range stateActions[s] {
		if a == action {
			return i, nil
		}
	}
	return -1, &IllegalActionError{State: s, Action: action,
		Legal: stateActions[s]}
}

// MaxActions returns the largest number of actions available in any
// single state
func MaxActions(stateActions [][]int) int {
	max := 0
	for _, actions := range stateActions {
		if len(actions) > max {
			max = len(actions)
		}
	}
	return max
}
