// Package toys implements small finite MDPs with known dynamics that are
// commonly used to evaluate exploration algorithms for average-reward
// reinforcement learning.
//
// Every environment in this package is a Tabular environment: it is
// defined by explicit transition matrices and reward distributions, and
// so can report its optimal gain, the span of its optimal bias and the
// gain of any fixed policy.
package toys

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/ucrl/confidence"
	"github.com/samuelfneumann/ucrl/environment"
	"github.com/samuelfneumann/ucrl/evi"
	"github.com/samuelfneumann/ucrl/model"
	"github.com/samuelfneumann/ucrl/timestep"
	"github.com/samuelfneumann/ucrl/vi"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// optimalEpsilon is the EVI tolerance used to compute the optimal gain
const optimalEpsilon = 1e-10

// Tabular is a finite MDP given by its transition probabilities and
// reward distributions, indexed by state and action index
type Tabular struct {
	name         string
	stateActions [][]int
	p            [][][]float64
	rewards      [][]Reward

	environment.Starter
	transitions [][]distuv.Categorical
	state       int
	start       int
	number      int

	// Optimal gain, span and policy are computed on first use
	solved  bool
	maxGain float64
	span    float64
	optimal *model.Policy
}

// NewTabular returns a new Tabular environment. The transition rows
// p[s][a] must be probability distributions over the states, and
// rewards[s][a] is the reward distribution of taking the action
// stateActions[s][a] in state s. Transitions are sampled using the
// argument seed.
func NewTabular(name string, stateActions [][]int, p [][][]float64,
	rewards [][]Reward, starter environment.Starter,
	seed uint64) (*Tabular, error) {
	if len(rewards) != len(stateActions) {
		return nil, fmt.Errorf("newTabular: %v reward rows for %v states",
			len(rewards), len(stateActions))
	}

	means := make([][]float64, len(stateActions))
	for s, actions := range stateActions {
		if len(actions) == 0 {
			return nil, fmt.Errorf("newTabular: state %v has no actions", s)
		}
		if len(rewards[s]) != len(actions) {
			return nil, fmt.Errorf("newTabular: state %v has %v actions but "+
				"%v reward distributions", s, len(actions), len(rewards[s]))
		}
		means[s] = make([]float64, len(actions))
		for a := range actions {
			means[s][a] = rewards[s][a].Mean()
		}
	}

	// Validates the transition matrices
	if _, err := model.NewEstimates(stateActions, p, means); err != nil {
		return nil, fmt.Errorf("newTabular: %w", err)
	}

	src := rand.NewSource(seed)
	transitions := make([][]distuv.Categorical, len(stateActions))
	for s, actions := range stateActions {
		transitions[s] = make([]distuv.Categorical, len(actions))
		for a := range actions {
			transitions[s][a] = distuv.NewCategorical(p[s][a], src)
		}
	}

	t := &Tabular{
		name:         name,
		stateActions: stateActions,
		p:            p,
		rewards:      rewards,
		Starter:      starter,
		transitions:  transitions,
	}
	t.Reset()
	return t, nil
}

// Reset resets the environment to a starting state
func (t *Tabular) Reset() timestep.TimeStep {
	t.state = t.Start()
	t.start = t.state
	t.number = 0
	return timestep.Start(t.state)
}

// Execute takes the action with id action in the current state
func (t *Tabular) Execute(action int) (timestep.TimeStep, error) {
	a, err := environment.ActionIndex(t.stateActions, t.state, action)
	if err != nil {
		return timestep.TimeStep{}, err
	}

	s := t.state
	reward := t.rewards[s][a].Sample()
	t.state = int(t.transitions[s][a].Rand())
	t.number++

	return timestep.New(timestep.Mid, s, action, reward, t.state, t.number,
		0), nil
}

// StateActions returns the legal actions of each state
func (t *Tabular) StateActions() [][]int {
	return t.stateActions
}

// State returns the current state
func (t *Tabular) State() int {
	return t.state
}

// NumStates returns the number of states
func (t *Tabular) NumStates() int {
	return len(t.stateActions)
}

// RMax returns the largest reward the environment can produce, or 1 if
// every reward is at most 0
func (t *Tabular) RMax() float64 {
	rMax := 0.0
	for s := range t.rewards {
		for _, r := range t.rewards[s] {
			rMax = math.Max(rMax, r.Max())
		}
	}
	if rMax <= 0 {
		return 1
	}
	return rMax
}

// Estimates returns the true model of the environment, with the mean
// rewards in place of the reward distributions
func (t *Tabular) Estimates() *model.Estimates {
	means := make([][]float64, len(t.rewards))
	for s := range t.rewards {
		means[s] = make([]float64, len(t.rewards[s]))
		for a, r := range t.rewards[s] {
			means[s][a] = r.Mean()
		}
	}

	// The matrices were validated at construction
	est, _ := model.NewEstimates(t.stateActions, t.p, means)
	return est
}

// MaxGain returns the optimal gain of the environment
func (t *Tabular) MaxGain() (float64, error) {
	if err := t.solve(); err != nil {
		return 0, err
	}
	return t.maxGain, nil
}

// Span returns the span of the optimal bias of the environment
func (t *Tabular) Span() (float64, error) {
	if err := t.solve(); err != nil {
		return 0, err
	}
	return t.span, nil
}

// OptimalPolicy returns a gain-optimal policy of the environment
func (t *Tabular) OptimalPolicy() (*model.Policy, error) {
	if err := t.solve(); err != nil {
		return nil, err
	}
	return t.optimal.Clone(), nil
}

// PolicyGain returns the gain of the policy which takes the action
// index policyIndices[s] in state s, starting from the state the
// environment was last reset to
func (t *Tabular) PolicyGain(policyIndices []int) (float64, error) {
	return vi.PolicyGain(t.Estimates(), policyIndices, t.start)
}

// solve runs Extended Value Iteration with zero confidence radii on the
// true model
func (t *Tabular) solve() error {
	if t.solved {
		return nil
	}

	est := t.Estimates()
	pol := model.NewPolicy(t.stateActions)
	cfg := evi.DefaultConfig(t.RMax())
	cfg.Epsilon = optimalEpsilon

	res, err := evi.Run(est, confidence.Zero(t.stateActions, confidence.Box),
		pol, cfg)
	if err != nil {
		return fmt.Errorf("solve: %v: %w", t.name, err)
	}

	t.maxGain = res.Gain()
	t.span = res.Span
	t.optimal = pol
	t.solved = true
	return nil
}

func (t *Tabular) String() string {
	return fmt.Sprintf("%v | States: %v  |  State: %v", t.name,
		t.NumStates(), t.state)
}
