package tracker

import (
	ts "github.com/samuelfneumann/ucrl/timestep"
)

// Return tracks and saves the total reward collected in each learning
// episode of an experiment.
//
// Note: An episode must finish for this Tracker to save its data.
// If the last episode in an experiment does not finish, that episode's
// return will not be saved.
type Return struct {
	lastTimeStep   int
	started        bool
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn(filename string) *Return {
	return &Return{lastTimeStep: -1, filename: filename}
}

// Track tracks the rewards seen on a timestep. When the first step of
// a new episode is tracked, the return of the previous episode is
// cached.
//
// Track panics if it is called for non-sequential timesteps
func (r *Return) Track(step ts.TimeStep) {
	sequential(r.lastTimeStep, step)

	if step.First() && r.started {
		r.episodeReturns = append(r.episodeReturns, r.currentReturn)
		r.currentReturn = 0
	}
	r.started = true
	r.currentReturn += step.Reward
	r.lastTimeStep = step.Number
}

// Data returns the returns of the finished episodes
func (r *Return) Data() []float64 {
	return append([]float64(nil), r.episodeReturns...)
}

// Save saves the data tracked by the Return Tracker to disk.
func (r *Return) Save() error {
	return save(r.filename, r.episodeReturns)
}
