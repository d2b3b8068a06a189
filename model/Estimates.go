package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rowTolerance is the tolerance allowed on the sum of a transition row
const rowTolerance = 1e-8

// Estimates is a point estimate of a finite (semi-)MDP: transition
// probabilities P[s][a][s'], mean rewards R[s][a] and mean holding
// times Tau[s][a], where a is an action index of state s.
//
// Rows of P for pairs that were never observed are all zero.
type Estimates struct {
	StateActions [][]int
	P            [][][]float64
	R            [][]float64
	Tau          [][]float64
}

// NewEstimates returns Estimates built from exact model matrices. The
// matrices are indexed by state and action index and every transition
// row must be a probability distribution. Holding times are set to 1.
func NewEstimates(stateActions [][]int, p [][][]float64,
	r [][]float64) (*Estimates, error) {
	numStates := len(stateActions)
	if len(p) != numStates || len(r) != numStates {
		return nil, fmt.Errorf("newEstimates: model has %v transition and "+
			"%v reward rows for %v states", len(p), len(r), numStates)
	}

	tau := make([][]float64, numStates)
	for s, actions := range stateActions {
		if len(p[s]) != len(actions) || len(r[s]) != len(actions) {
			return nil, fmt.Errorf("newEstimates: state %v has %v actions "+
				"but the model describes %v", s, len(actions), len(p[s]))
		}
		tau[s] = make([]float64, len(actions))
		for a := range actions {
			if len(p[s][a]) != numStates {
				return nil, fmt.Errorf("newEstimates: transition row (%v, %v) "+
					"has length %v, want %v", s, a, len(p[s][a]), numStates)
			}
			for _, prob := range p[s][a] {
				if prob < 0 || math.IsNaN(prob) {
					return nil, fmt.Errorf("newEstimates: transition row "+
						"(%v, %v) has invalid probability %v", s, a, prob)
				}
			}
			if sum := floats.Sum(p[s][a]); math.Abs(sum-1) > rowTolerance {
				return nil, fmt.Errorf("newEstimates: transition row (%v, %v) "+
					"sums to %v", s, a, sum)
			}
			tau[s][a] = 1
		}
	}

	return &Estimates{StateActions: stateActions, P: p, R: r, Tau: tau}, nil
}

// Estimate computes the empirical estimates of the MDP described by the
// argument Counts. All observations, including those of the current
// episode, are used.
func Estimate(c *Counts) *Estimates {
	numStates := c.NumStates()
	stateActions := c.StateActions()
	est := &Estimates{
		StateActions: stateActions,
		P:            make([][][]float64, numStates),
		R:            make([][]float64, numStates),
		Tau:          make([][]float64, numStates),
	}

	for s, actions := range stateActions {
		est.P[s] = make([][]float64, len(actions))
		est.R[s] = make([]float64, len(actions))
		est.Tau[s] = make([]float64, len(actions))

		for a := range actions {
			est.R[s][a] = c.MeanReward(s, a)
			est.Tau[s][a] = c.MeanHoldingTime(s, a)

			row := make([]float64, numStates)
			if n := c.Visits(s, a); n > 0 {
				for next := range row {
					row[next] = float64(c.Transitions(s, a, next)) / float64(n)
				}
			}
			est.P[s][a] = row
		}
	}
	return est
}

// NumStates returns the number of states in the estimated MDP
func (e *Estimates) NumStates() int {
	return len(e.StateActions)
}

// PolicyMatrices returns the transition matrix and reward vector of the
// Markov chain induced by following the action index policyIndices[s]
// in each state s
func (e *Estimates) PolicyMatrices(policyIndices []int) (*mat.Dense,
	*mat.VecDense, error) {
	n := e.NumStates()
	if len(policyIndices) != n {
		return nil, nil, fmt.Errorf("policyMatrices: policy has %v states, "+
			"want %v", len(policyIndices), n)
	}

	p := mat.NewDense(n, n, nil)
	r := mat.NewVecDense(n, nil)
	for s, a := range policyIndices {
		if a < 0 || a >= len(e.StateActions[s]) {
			return nil, nil, fmt.Errorf("policyMatrices: state %v has no "+
				"action index %v", s, a)
		}
		p.SetRow(s, e.P[s][a])
		r.SetVec(s, e.R[s][a])
	}
	return p, r, nil
}
