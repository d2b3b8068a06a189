package tracker

import (
	"github.com/samuelfneumann/ucrl/timestep"
)

// EpisodeLength tracks and saves the lengths of the learning episodes
// in an experiment. An episode is known to have finished when the first
// step of the next episode is tracked, so the length of the last
// episode of an experiment is not saved.
type EpisodeLength struct {
	current        int
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track tracks the episode lengths in an experiment
func (e *EpisodeLength) Track(t timestep.TimeStep) {
	if t.First() && e.current > 0 {
		e.episodeLengths = append(e.episodeLengths, float64(e.current))
		e.current = 0
	}
	e.current++
}

// Data returns the lengths of the finished episodes
func (e *EpisodeLength) Data() []float64 {
	return append([]float64(nil), e.episodeLengths...)
}

// Save saves the data tracked by the EpisodeLength Tracker to disk.
func (e *EpisodeLength) Save() error {
	return save(e.filename, e.episodeLengths)
}
