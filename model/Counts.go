// Package model implements the statistics an optimistic agent keeps
// about an unknown finite MDP: visitation counts, the empirical
// estimates derived from them and deterministic policies over
// state-dependent action sets.
package model

import (
	"fmt"
	"math"
)

// Counts stores the visitation statistics of every (state, action index)
// pair of a finite MDP.
//
// Total counts are the visits since the start of learning up to the
// start of the current episode, while Episode counts are the visits
// made during the current episode. Episode counts are folded into the
// Total counts by StartEpisode. Reward, holding time and transition
// statistics are always up to date.
type Counts struct {
	stateActions [][]int
	numStates    int

	total   [][]int
	episode [][]int

	rewardSum   [][]float64
	rewardSqSum [][]float64
	tauSum      [][]float64
	tauSqSum    [][]float64

	// transitions[s][a][s'] counts the observed transitions s -a-> s'
	transitions [][][]int
}

// NewCounts returns empty Counts for an MDP whose state s has the
// legal actions stateActions[s]
func NewCounts(stateActions [][]int) *Counts {
	numStates := len(stateActions)
	c := &Counts{
		stateActions: stateActions,
		numStates:    numStates,
		total:        make([][]int, numStates),
		episode:      make([][]int, numStates),
		rewardSum:    make([][]float64, numStates),
		rewardSqSum:  make([][]float64, numStates),
		tauSum:       make([][]float64, numStates),
		tauSqSum:     make([][]float64, numStates),
		transitions:  make([][][]int, numStates),
	}

	for s, actions := range stateActions {
		na := len(actions)
		c.total[s] = make([]int, na)
		c.episode[s] = make([]int, na)
		c.rewardSum[s] = make([]float64, na)
		c.rewardSqSum[s] = make([]float64, na)
		c.tauSum[s] = make([]float64, na)
		c.tauSqSum[s] = make([]float64, na)
		c.transitions[s] = make([][]int, na)
		for a := range actions {
			c.transitions[s][a] = make([]int, numStates)
		}
	}
	return c
}

// Update records that action index a taken in state s produced reward r
// and moved the environment to state next after tau time steps. For
// MDPs tau is always 1.
func (c *Counts) Update(s, a int, r float64, next int, tau float64) error {
	if s < 0 || s >= c.numStates || next < 0 || next >= c.numStates {
		return fmt.Errorf("update: transition %v -> %v outside [0, %v)", s,
			next, c.numStates)
	}
	if a < 0 || a >= len(c.stateActions[s]) {
		return fmt.Errorf("update: state %v has no action index %v", s, a)
	}

	c.episode[s][a]++
	c.rewardSum[s][a] += r
	c.rewardSqSum[s][a] += r * r
	c.tauSum[s][a] += tau
	c.tauSqSum[s][a] += tau * tau
	c.transitions[s][a][next]++
	return nil
}

// StartEpisode folds the counts of the current episode into the total
// counts and starts counting a new episode from zero
func (c *Counts) StartEpisode() {
	for s := range c.total {
		for a := range c.total[s] {
			c.total[s][a] += c.episode[s][a]
			c.episode[s][a] = 0
		}
	}
}

// StateActions returns the legal actions of each state
func (c *Counts) StateActions() [][]int {
	return c.stateActions
}

// NumStates returns the number of states in the MDP
func (c *Counts) NumStates() int {
	return c.numStates
}

// Total returns the number of visits to (s, a) before the current
// episode
func (c *Counts) Total(s, a int) int {
	return c.total[s][a]
}

// Episode returns the number of visits to (s, a) in the current episode
func (c *Counts) Episode(s, a int) int {
	return c.episode[s][a]
}

// Visits returns the number of visits to (s, a) since the start of
// learning, including the current episode
func (c *Counts) Visits(s, a int) int {
	return c.total[s][a] + c.episode[s][a]
}

// Transitions returns the number of observed transitions s -a-> next
func (c *Counts) Transitions(s, a, next int) int {
	return c.transitions[s][a][next]
}

// MeanReward returns the empirical mean reward of (s, a), 0 if the pair
// was never visited
func (c *Counts) MeanReward(s, a int) float64 {
	n := c.Visits(s, a)
	if n == 0 {
		return 0
	}
	return c.rewardSum[s][a] / float64(n)
}

// RewardVariance returns the empirical (biased) variance of the rewards
// of (s, a), 0 if the pair was never visited
func (c *Counts) RewardVariance(s, a int) float64 {
	return variance(c.rewardSum[s][a], c.rewardSqSum[s][a], c.Visits(s, a))
}

// MeanHoldingTime returns the empirical mean holding time of (s, a), 1
// if the pair was never visited
func (c *Counts) MeanHoldingTime(s, a int) float64 {
	n := c.Visits(s, a)
	if n == 0 {
		return 1
	}
	return c.tauSum[s][a] / float64(n)
}

// HoldingTimeVariance returns the empirical variance of the holding
// times of (s, a)
func (c *Counts) HoldingTimeVariance(s, a int) float64 {
	return variance(c.tauSum[s][a], c.tauSqSum[s][a], c.Visits(s, a))
}

// Clone returns a deep copy of the Counts
func (c *Counts) Clone() *Counts {
	clone := NewCounts(c.stateActions)
	for s := range c.total {
		copy(clone.total[s], c.total[s])
		copy(clone.episode[s], c.episode[s])
		copy(clone.rewardSum[s], c.rewardSum[s])
		copy(clone.rewardSqSum[s], c.rewardSqSum[s])
		copy(clone.tauSum[s], c.tauSum[s])
		copy(clone.tauSqSum[s], c.tauSqSum[s])
		for a := range c.transitions[s] {
			copy(clone.transitions[s][a], c.transitions[s][a])
		}
	}
	return clone
}

// TotalMatrix returns a copy of the total counts indexed by state and
// action index
func (c *Counts) TotalMatrix() [][]int {
	out := make([][]int, len(c.total))
	for s := range c.total {
		out[s] = append([]int(nil), c.total[s]...)
	}
	return out
}

func variance(sum, sqSum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	return math.Max(0, sqSum/float64(n)-mean*mean)
}
