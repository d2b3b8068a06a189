// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"
)

// StepType denotes the type of step that a TimeStep can be, either the
// first step of an episode, a middle step, or the last step of an
// episode. Episodes here are the learning episodes of an episodic
// controller: the environment itself never terminates.
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep in a finite environment.
//
// State is the state the Action was taken in, NextState the state the
// environment transitioned to and Reward the reward observed for the
// transition. Number is the global time step (starting at 1 for the
// first executed action, 0 for a TimeStep returned by a reset) and
// Episode the learning episode the step belongs to.
type TimeStep struct {
	StepType  StepType
	State     int
	Action    int
	Reward    float64
	NextState int
	Number    int
	Episode   int
}

// New returns a new TimeStep
func New(t StepType, state, action int, r float64, next, n, episode int) TimeStep {
	return TimeStep{t, state, action, r, next, n, episode}
}

// Start returns the TimeStep describing an environment that has just
// been reset into state s.
func Start(s int) TimeStep {
	return TimeStep{StepType: First, State: s, Action: -1, NextState: s}
}

// First returns whether a TimeStep is the first in an episode
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  State: %v  |  Action: %v  |  " +
		"Reward:  %.2f  |  Next: %v  |  Step Number:  %v  |  Episode: %v"

	return fmt.Sprintf(str, t.StepType, t.State, t.Action, t.Reward,
		t.NextState, t.Number, t.Episode)
}
