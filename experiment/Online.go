package experiment

import (
	"fmt"

	"github.com/samuelfneumann/ucrl/agent"
	env "github.com/samuelfneumann/ucrl/environment"
	"github.com/samuelfneumann/ucrl/experiment/checkpointer"
	"github.com/samuelfneumann/ucrl/experiment/tracker"
	"go.uber.org/multierr"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Agent
	maxSteps int
	trackers []tracker.Tracker
	outcome  agent.Outcome
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for, the t parameter determines
// what data is tracked and the check parameter when the agent is
// checkpointed.
func NewOnline(e env.Environment, a agent.Agent, steps int,
	t []tracker.Tracker, check []checkpointer.Checkpointer) *Online {
	o := &Online{Environment: e, Agent: a, maxSteps: steps}
	for _, tr := range t {
		o.Register(tr)
	}
	for _, c := range check {
		a.AddCheckpointer(c)
	}
	return o
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
	o.Agent.Register(t)
}

// Run runs the agent until it has taken the maximum number of steps.
// If planning diverges, the returned Outcome says so and the data
// tracked up to the failure can still be saved.
func (o *Online) Run() (agent.Outcome, error) {
	outcome, err := o.Agent.Learn(o.maxSteps)

	o.outcome.Steps += outcome.Steps
	o.outcome.Episodes += outcome.Episodes
	o.outcome.Diverged = outcome.Diverged
	o.outcome.Divergence = outcome.Divergence

	if err != nil {
		return o.outcome, fmt.Errorf("run: %w", err)
	}
	return o.outcome, nil
}

// Outcome returns the accumulated Outcome of all calls to Run
func (o *Online) Outcome() agent.Outcome {
	return o.outcome
}

// Save saves all the data cached by the Trackers to disk. Every Tracker
// is saved even if some fail.
func (o *Online) Save() error {
	var err error
	for _, t := range o.trackers {
		err = multierr.Append(err, t.Save())
	}
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
