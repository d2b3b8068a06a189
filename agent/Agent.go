// Package agent defines an agent interface
package agent

import (
	"github.com/samuelfneumann/ucrl/experiment/checkpointer"
	"github.com/samuelfneumann/ucrl/experiment/tracker"
	"github.com/samuelfneumann/ucrl/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which drives the interaction with
// its environment and updates its statistics, and a Policy which
// chooses actions in each state.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that interacts with an
// environment online
type Learner interface {
	// Learn interacts with the environment until the global time step
	// reaches duration. Learn can be called repeatedly to continue
	// learning for a longer duration.
	Learn(duration int) (Outcome, error)

	// ObserveFirst records the TimeStep returned by a reset
	ObserveFirst(timestep.TimeStep) error

	// Observe records that an action lead to some timestep
	Observe(action int, nextStep timestep.TimeStep) error

	// Register adds a Tracker which is sent every TimeStep generated
	// by Learn
	Register(t tracker.Tracker)

	// AddCheckpointer adds a Checkpointer which is called with every
	// TimeStep generated by Learn
	AddCheckpointer(c checkpointer.Checkpointer)
}

// Policy represents a deterministic policy over state-dependent action
// sets.
//
// SelectAction returns the id of the action to take after the argument
// TimeStep, that is in the state t.NextState. Selecting an action may
// require planning, which can fail.
type Policy interface {
	SelectAction(t timestep.TimeStep) (int, error)
}

// Outcome summarizes a call to Learn
type Outcome struct {
	Steps    int
	Episodes int

	// Diverged is true if learning was aborted because planning did
	// not converge, in which case Divergence holds the planning error.
	// All data collected before the failure is kept.
	Diverged   bool
	Divergence error
}
