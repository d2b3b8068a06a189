package environment

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() int
}

// SingleStart always starts environments in the same state
type SingleStart struct {
	state int
}

// NewSingleStart returns a Starter that always returns state s
func NewSingleStart(s, numStates int) (*SingleStart, error) {
	if s < 0 || s >= numStates {
		return nil, fmt.Errorf("newSingleStart: state %v outside [0, %v)",
			s, numStates)
	}
	return &SingleStart{s}, nil
}

// Start returns the starting state
func (s *SingleStart) Start() int {
	return s.state
}

// CategoricalStarter returns starting states sampled from a categorical
// distribution over states.
type CategoricalStarter struct {
	seed uint64
	rand distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter. The weights
// are the unnormalized probabilities of starting in each state.
func NewCategoricalStarter(weights []float64, seed uint64) (*CategoricalStarter,
	error) {
	total := 0.0
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("newCategoricalStarter: negative weight "+
				"%v for state %v", w, i)
		}
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("newCategoricalStarter: weights must have " +
			"positive sum")
	}

	source := rand.NewSource(seed)
	return &CategoricalStarter{seed, distuv.NewCategorical(weights, source)}, nil
}

// NewUniformStarter returns a CategoricalStarter that starts uniformly
// at random in any of numStates states
func NewUniformStarter(numStates int, seed uint64) (*CategoricalStarter, error) {
	weights := make([]float64, numStates)
	for i := range weights {
		weights[i] = 1.0
	}
	return NewCategoricalStarter(weights, seed)
}

// Start returns a starting state
func (c *CategoricalStarter) Start() int {
	return int(c.rand.Rand())
}
