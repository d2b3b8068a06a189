package toys

import (
	"fmt"

	"github.com/samuelfneumann/ucrl/environment"
	"golang.org/x/exp/rand"
)

// Toy3D1 configures the three state Toy3D1 MDP. States 0 and 1 give no
// reward and form a cycle which leaves to state 2 with probability
// 1 - Delta. State 2 has two actions with reward 0.5: the first sends
// the agent back into the cycle, the second stays in state 2.
type Toy3D1 struct {
	Delta float64

	// StochasticReward replaces the rewards of state 2 by Bernoulli
	// rewards, or by uniform rewards of width UniformRange when
	// UniformRange is positive
	StochasticReward bool
	UniformRange     float64
}

// DefaultToy3D1 returns the default Toy3D1 configuration
func DefaultToy3D1() Toy3D1 {
	return Toy3D1{Delta: 0.99}
}

// Create returns the Toy3D1 environment, which always starts in state 0
func (c Toy3D1) Create(seed uint64) (*Tabular, error) {
	if c.Delta < 0 || c.Delta > 1 {
		return nil, fmt.Errorf("create: delta %v outside [0, 1]", c.Delta)
	}

	stateActions := [][]int{{0}, {0}, {0, 1}}
	p := [][][]float64{
		{{0, c.Delta, 1 - c.Delta}},
		{{1, 0, 0}},
		{{1 - c.Delta, c.Delta, 0}, {0, 0, 1}},
	}

	src := rand.NewSource(seed + 1)
	reward := func() (Reward, error) {
		switch {
		case !c.StochasticReward:
			return Constant(0.5), nil
		case c.UniformRange > 0:
			return NewUniform(0.5-c.UniformRange/2, 0.5+c.UniformRange/2, src)
		default:
			return NewBernoulli(0.5, 1, src)
		}
	}

	rewards := [][]Reward{{Constant(0)}, {Constant(0)}, make([]Reward, 2)}
	for a := range rewards[2] {
		r, err := reward()
		if err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
		rewards[2][a] = r
	}

	starter, err := environment.NewSingleStart(0, len(stateActions))
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return NewTabular("Toy3D1", stateActions, p, rewards, starter, seed)
}
