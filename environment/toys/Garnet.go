package toys

import (
	"fmt"
	"sort"

	"github.com/samuelfneumann/ucrl/environment"
	"golang.org/x/exp/rand"
)

// Garnet configures a randomly generated MDP in which each state-action
// pair leads to Branching distinct next states with random
// probabilities, and has a uniformly random mean reward in [0, 1]
type Garnet struct {
	NumStates  int
	NumActions int
	Branching  int

	// BernoulliReward samples Bernoulli rewards instead of returning the
	// mean reward
	BernoulliReward bool
}

// Create returns a new Garnet MDP. The MDP itself is generated from the
// seed, so Garnets created with the same seed are identical.
func (c Garnet) Create(seed uint64) (*Tabular, error) {
	ns, na, nb := c.NumStates, c.NumActions, c.Branching
	if ns < 1 || na < 1 {
		return nil, fmt.Errorf("create: garnet needs at least one state and "+
			"action, got %v states and %v actions", ns, na)
	}
	if nb < 1 || nb > ns {
		return nil, fmt.Errorf("create: branching factor %v outside [1, %v]",
			nb, ns)
	}

	rng := rand.New(rand.NewSource(seed))
	src := rand.NewSource(seed + 1)

	stateActions := make([][]int, ns)
	p := make([][][]float64, ns)
	rewards := make([][]Reward, ns)
	for s := range stateActions {
		stateActions[s] = make([]int, na)
		p[s] = make([][]float64, na)
		rewards[s] = make([]Reward, na)

		for a := range stateActions[s] {
			stateActions[s][a] = a
			p[s][a] = garnetRow(rng, ns, nb)

			mean := rng.Float64()
			if c.BernoulliReward {
				r, err := NewBernoulli(mean, 1, src)
				if err != nil {
					return nil, fmt.Errorf("create: %w", err)
				}
				rewards[s][a] = r
			} else {
				rewards[s][a] = Constant(mean)
			}
		}
	}

	// Garnets have no distinguished state, so runs start anywhere
	starter, err := environment.NewUniformStarter(ns, seed+2)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return NewTabular("Garnet", stateActions, p, rewards, starter, seed)
}

// garnetRow returns a distribution over ns states supported on nb states
// chosen at random, with probabilities given by the gaps between nb - 1
// sorted uniform cut points of the unit interval
func garnetRow(rng *rand.Rand, ns, nb int) []float64 {
	cuts := make([]float64, nb+1)
	cuts[nb] = 1
	for i := 1; i < nb; i++ {
		cuts[i] = rng.Float64()
	}
	sort.Float64s(cuts)

	row := make([]float64, ns)
	support := rng.Perm(ns)[:nb]
	for i, next := range support {
		row[next] = cuts[i+1] - cuts[i]
	}
	return row
}
