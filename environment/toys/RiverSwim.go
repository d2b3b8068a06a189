package toys

import (
	"fmt"

	"github.com/samuelfneumann/ucrl/environment"
	"github.com/samuelfneumann/ucrl/utils/intutils"
	"golang.org/x/exp/rand"
)

// RiverSwim actions
const (
	SwimLeft  = 0
	SwimRight = 1
)

// RiverSwim configures the RiverSwim chain. Swimming left always
// succeeds and gives a small reward in the leftmost state, while
// swimming right against the current mostly fails but leads to a large
// reward in the rightmost state.
type RiverSwim struct {
	NumStates int

	SmallReward float64
	LargeReward float64

	// BernoulliReward makes both rewards Bernoulli with the same mean
	BernoulliReward bool
}

// DefaultRiverSwim returns the six state RiverSwim
func DefaultRiverSwim() RiverSwim {
	return RiverSwim{NumStates: 6, SmallReward: 0.005, LargeReward: 1}
}

// Create returns the RiverSwim environment, starting in the leftmost
// state
func (c RiverSwim) Create(seed uint64) (*Tabular, error) {
	n := c.NumStates
	if n < 2 {
		return nil, fmt.Errorf("create: riverswim needs at least 2 states, "+
			"got %v", n)
	}
	if c.SmallReward < 0 || c.LargeReward < 0 || c.LargeReward > 1 ||
		c.SmallReward > 1 {
		return nil, fmt.Errorf("create: rewards must be in [0, 1]")
	}

	stateActions := make([][]int, n)
	p := make([][][]float64, n)
	rewards := make([][]Reward, n)
	for s := range stateActions {
		stateActions[s] = []int{SwimLeft, SwimRight}

		left := make([]float64, n)
		left[intutils.Clamp(s-1, 0, n-1)] = 1

		right := make([]float64, n)
		switch s {
		case 0:
			right[0], right[1] = 0.6, 0.4
		case n - 1:
			right[s-1], right[s] = 0.4, 0.6
		default:
			right[s-1], right[s], right[s+1] = 0.05, 0.6, 0.35
		}

		p[s] = [][]float64{left, right}
		rewards[s] = []Reward{Constant(0), Constant(0)}
	}

	src := rand.NewSource(seed + 1)
	reward := func(mean float64) (Reward, error) {
		if c.BernoulliReward {
			return NewBernoulli(mean, 1, src)
		}
		return Constant(mean), nil
	}
	var err error
	if rewards[0][SwimLeft], err = reward(c.SmallReward); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	if rewards[n-1][SwimRight], err = reward(c.LargeReward); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	starter, err := environment.NewSingleStart(0, n)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return NewTabular("RiverSwim", stateActions, p, rewards, starter, seed)
}
