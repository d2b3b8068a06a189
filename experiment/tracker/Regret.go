package tracker

import (
	"fmt"

	ts "github.com/samuelfneumann/ucrl/timestep"
	"gonum.org/v1/gonum/stat"
)

// Regret tracks the cumulative regret t·g - Σ r of an experiment with
// respect to a reference gain g, sampled every interval time steps.
// Sample i is the regret after (i + 1)·interval steps.
type Regret struct {
	gain     float64
	interval int

	lastTimeStep int
	steps        int
	regret       float64
	samples      []float64
	filename     string
}

// NewRegret returns a new Regret tracker measuring regret against gain
func NewRegret(filename string, gain float64, interval int) (*Regret,
	error) {
	if interval < 1 {
		return nil, fmt.Errorf("newRegret: interval must be positive, got %v",
			interval)
	}
	return &Regret{
		gain:         gain,
		interval:     interval,
		lastTimeStep: -1,
		filename:     filename,
	}, nil
}

// Track accumulates the regret of a timestep.
//
// Track panics if it is called for non-sequential timesteps
func (r *Regret) Track(step ts.TimeStep) {
	sequential(r.lastTimeStep, step)
	r.lastTimeStep = step.Number

	r.steps++
	r.regret += r.gain - step.Reward
	if r.steps%r.interval == 0 {
		r.samples = append(r.samples, r.regret)
	}
}

// Regret returns the current cumulative regret
func (r *Regret) Regret() float64 {
	return r.regret
}

// Data returns the sampled cumulative regret
func (r *Regret) Data() []float64 {
	return append([]float64(nil), r.samples...)
}

// AverageReward returns the mean reward per step so far
func (r *Regret) AverageReward() float64 {
	if r.steps == 0 {
		return 0
	}
	return r.gain - r.regret/float64(r.steps)
}

// Summary returns the mean and standard deviation of the per-interval
// regret increments
func (r *Regret) Summary() (mean, std float64) {
	if len(r.samples) == 0 {
		return 0, 0
	}
	increments := make([]float64, len(r.samples))
	previous := 0.0
	for i, sample := range r.samples {
		increments[i] = sample - previous
		previous = sample
	}
	if len(increments) == 1 {
		return increments[0], 0
	}
	return stat.MeanStdDev(increments, nil)
}

// Save saves the sampled regret to disk
func (r *Regret) Save() error {
	return save(r.filename, r.samples)
}
