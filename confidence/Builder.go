package confidence

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/ucrl/environment"
	"github.com/samuelfneumann/ucrl/model"
)

// Params are the parameters of the confidence sets other than the
// visitation statistics
type Params struct {
	// Delta is the confidence level: each set contains the true
	// parameter with probability at least 1 - Delta
	Delta float64

	// Time is the time horizon the sets are built for, usually the
	// current time step. Values below 1 are treated as 1.
	Time int

	// RMax is the maximum reward of the MDP
	RMax float64

	// TauMin and TauMax bound the holding times. For MDPs both are 1.
	TauMin float64
	TauMax float64

	// AlphaP and AlphaR scale the transition and reward radii
	AlphaP float64
	AlphaR float64
}

// DefaultParams returns the parameters of an MDP with maximum reward
// rMax at time t using confidence level 0.05 and unscaled radii
func DefaultParams(rMax float64, t int) Params {
	return Params{
		Delta:  0.05,
		Time:   t,
		RMax:   rMax,
		TauMin: 1,
		TauMax: 1,
		AlphaP: 1,
		AlphaR: 1,
	}
}

// Validate returns an error if the Params are invalid
func (p Params) Validate() error {
	if !(p.Delta > 0 && p.Delta < 1) {
		return fmt.Errorf("delta must be in (0, 1), got %v", p.Delta)
	}
	if !(p.RMax > 0) {
		return fmt.Errorf("rMax must be positive, got %v", p.RMax)
	}
	if !(p.TauMin > 0) || p.TauMax < p.TauMin {
		return fmt.Errorf("holding times must satisfy 0 < tauMin <= tauMax, "+
			"got [%v, %v]", p.TauMin, p.TauMax)
	}
	if p.AlphaP < 0 || p.AlphaR < 0 {
		return fmt.Errorf("radius scales cannot be negative, got alphaP = %v "+
			"alphaR = %v", p.AlphaP, p.AlphaR)
	}
	return nil
}

// Set is a collection of confidence radii around the estimates of an
// MDP, indexed by state and action index
type Set struct {
	Bound Bound
	Shape Shape

	// P holds the transition radii. For L1 sets P[s][a] has a single
	// element, for Box sets it has one element per next state.
	P   [][][]float64
	R   [][]float64
	Tau [][]float64
}

// Build computes the confidence set of each (state, action index) pair
// from the Counts using the argument Bound. Build must be called at an
// episode boundary, after Counts.StartEpisode, so that the total counts
// account for every observation.
//
// Build is a pure function: the Counts are not modified.
func Build(c *model.Counts, b Bound, p Params) (*Set, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	b, err := ParseBound(string(b))
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	stateActions := c.StateActions()
	numStates := len(stateActions)
	numActions := environment.MaxActions(stateActions)
	t := math.Max(1, float64(p.Time))

	set := newSet(stateActions, b.Shape())
	set.Bound = b
	for s, actions := range stateActions {
		for a := range actions {
			if c.Episode(s, a) != 0 {
				return nil, fmt.Errorf("build: (%v, %v) has %v unfolded episode "+
					"visits", s, a, c.Episode(s, a))
			}

			n := c.Total(s, a)
			if n == 0 {
				fill(set.P[s][a], math.Inf(1))
				set.R[s][a] = math.Inf(1)
				set.Tau[s][a] = math.Inf(1)
				continue
			}

			N := float64(n)
			switch b {
			case Hoeffding:
				set.P[s][a][0] = hoeffdingP(p, numStates, numActions, t, N)
				set.R[s][a] = hoeffdingR(p, numStates, numActions, t, N)
				set.Tau[s][a] = hoeffdingTau(p, numStates, numActions, t, N)

			case Bernstein:
				L := math.Log(6 * float64(numStates*numActions) * t / p.Delta)
				for next := range set.P[s][a] {
					pHat := float64(c.Transitions(s, a, next)) / N
					set.P[s][a][next] = nonNegative(p.AlphaP * (math.Sqrt(
						2*pHat*(1-pHat)*L/N) + 3*L/N))
				}
				set.R[s][a] = nonNegative(p.AlphaR * (math.Sqrt(
					2*c.RewardVariance(s, a)*L/N) + 7*p.RMax*L/(3*N)))
				set.Tau[s][a] = nonNegative(math.Sqrt(
					2*c.HoldingTimeVariance(s, a)*L/N) +
					7*(p.TauMax-p.TauMin)*L/(3*N))

			case Chernoff:
				L := math.Log(6 * float64(numStates*numActions) * t / p.Delta)
				for next := range set.P[s][a] {
					pHat := float64(c.Transitions(s, a, next)) / N
					set.P[s][a][next] = nonNegative(p.AlphaP * (math.Sqrt(
						3*pHat*L/N) + 3*L/N))
				}
				set.R[s][a] = hoeffdingR(p, numStates, numActions, t, N)
				set.Tau[s][a] = hoeffdingTau(p, numStates, numActions, t, N)
			}
		}
	}
	return set, nil
}

// Zero returns a confidence set with all radii equal to zero, which
// reduces optimistic planning to planning in the point estimate
func Zero(stateActions [][]int, shape Shape) *Set {
	set := newSet(stateActions, shape)
	set.Bound = Chernoff
	if shape == L1 {
		set.Bound = Hoeffding
	}
	return set
}

// Validate checks that the Set has the layout of the argument action
// sets and that no radius is negative or NaN
func (s *Set) Validate(stateActions [][]int) error {
	if len(s.P) != len(stateActions) || len(s.R) != len(stateActions) ||
		len(s.Tau) != len(stateActions) {
		return fmt.Errorf("validate: confidence set covers %v states, want %v",
			len(s.R), len(stateActions))
	}

	width := 1
	if s.Shape == Box {
		width = len(stateActions)
	}
	for st, actions := range stateActions {
		if len(s.P[st]) != len(actions) || len(s.R[st]) != len(actions) ||
			len(s.Tau[st]) != len(actions) {
			return fmt.Errorf("validate: state %v has %v actions but the "+
				"confidence set describes %v", st, len(actions), len(s.R[st]))
		}
		for a := range actions {
			if len(s.P[st][a]) != width {
				return fmt.Errorf("validate: %v transition radius of (%v, %v) "+
					"has length %v, want %v", s.Shape, st, a, len(s.P[st][a]),
					width)
			}
			for _, beta := range s.P[st][a] {
				if !(beta >= 0) {
					return fmt.Errorf("validate: invalid transition radius %v "+
						"for (%v, %v)", beta, st, a)
				}
			}
			if !(s.R[st][a] >= 0) || !(s.Tau[st][a] >= 0) {
				return fmt.Errorf("validate: invalid reward or holding time "+
					"radius for (%v, %v)", st, a)
			}
		}
	}
	return nil
}

// L1Radius returns the L1 transition radius of (s, a). For Box sets
// this is the sum of the per next state radii, capped at 2.
func (s *Set) L1Radius(st, a int) float64 {
	if s.Shape == L1 {
		return s.P[st][a][0]
	}
	total := 0.0
	for _, beta := range s.P[st][a] {
		total += beta
	}
	return math.Min(total, 2)
}

func newSet(stateActions [][]int, shape Shape) *Set {
	numStates := len(stateActions)
	width := 1
	if shape == Box {
		width = numStates
	}

	set := &Set{
		Shape: shape,
		P:     make([][][]float64, numStates),
		R:     make([][]float64, numStates),
		Tau:   make([][]float64, numStates),
	}
	for s, actions := range stateActions {
		set.P[s] = make([][]float64, len(actions))
		set.R[s] = make([]float64, len(actions))
		set.Tau[s] = make([]float64, len(actions))
		for a := range actions {
			set.P[s][a] = make([]float64, width)
		}
	}
	return set
}

func hoeffdingP(p Params, numStates, numActions int, t, n float64) float64 {
	L := math.Log(2 * float64(numActions) * t / p.Delta)
	return nonNegative(p.AlphaP * math.Sqrt(14*float64(numStates)*L/n))
}

func hoeffdingR(p Params, numStates, numActions int, t, n float64) float64 {
	L := math.Log(2 * float64(numStates*numActions) * t / p.Delta)
	return nonNegative(p.AlphaR * p.RMax * math.Sqrt(3.5*L/n))
}

func hoeffdingTau(p Params, numStates, numActions int, t, n float64) float64 {
	L := math.Log(2 * float64(numStates*numActions) * t / p.Delta)
	return nonNegative((p.TauMax - p.TauMin) * math.Sqrt(3.5*L/n))
}

// nonNegative clamps radii that fall below zero through rounding
func nonNegative(beta float64) float64 {
	if beta < 0 || math.IsNaN(beta) {
		return 0
	}
	return beta
}

func fill(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}
