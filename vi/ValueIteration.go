// Package vi implements ordinary average-reward dynamic programming on a
// known finite MDP: relative value iteration for the optimal gain and
// bias, and exact evaluation of the gain of a fixed policy.
package vi

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/ucrl/model"
	"github.com/samuelfneumann/ucrl/utils/floatutils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// aperiodicity is the step of the aperiodicity transformation
// u <- (1 - aperiodicity)u + aperiodicity(r + Pu) applied on each
// sweep, which makes relative value iteration converge on periodic
// MDPs without changing the bias
const aperiodicity = 0.9

// RelativeValueIteration computes the optimal gain, a bias vector and a
// greedy optimal policy of the MDP est. The bias is recentered so that
// state 0 has value zero. Iteration stops once the span of the per-sweep
// increment falls below eps; an error is returned if this does not
// happen within maxIter sweeps.
func RelativeValueIteration(est *model.Estimates, eps float64,
	maxIter int) ([]float64, float64, *model.Policy, error) {
	if est == nil || est.NumStates() == 0 {
		return nil, 0, nil, fmt.Errorf("relativeValueIteration: empty MDP")
	}
	if !(eps > 0) {
		return nil, 0, nil, fmt.Errorf("relativeValueIteration: eps must be "+
			"positive, got %v", eps)
	}

	n := est.NumStates()
	pol := model.NewPolicy(est.StateActions)
	u := make([]float64, n)
	next := make([]float64, n)
	diff := make([]float64, n)

	for it := 0; it < maxIter; it++ {
		for s, actions := range est.StateActions {
			best, bestIndex := math.Inf(-1), -1
			for a := range actions {
				q := est.R[s][a] + floats.Dot(est.P[s][a], u)
				if bestIndex < 0 || (q > best && !floatutils.IsClose(q, best)) {
					best, bestIndex = q, a
				}
			}
			if bestIndex < 0 {
				return nil, 0, nil, fmt.Errorf("relativeValueIteration: state "+
					"%v has no legal action", s)
			}
			next[s] = (1-aperiodicity)*u[s] + aperiodicity*best
			pol.Set(est.StateActions, s, bestIndex)
		}

		floats.SubTo(diff, next, u)
		span := floats.Max(diff) - floats.Min(diff)
		if math.IsNaN(span) {
			return nil, 0, nil, fmt.Errorf("relativeValueIteration: bias is " +
				"no longer finite")
		}

		floats.AddConst(-next[0], next)
		copy(u, next)
		if span < eps {
			gain := 0.5 * (floats.Max(diff) + floats.Min(diff)) / aperiodicity
			return u, gain, pol, nil
		}
	}

	return nil, 0, nil, fmt.Errorf("relativeValueIteration: no convergence "+
		"after %v sweeps", maxIter)
}

// PolicyGain returns the gain obtained by following the action index
// policyIndices[s] in each state s when starting in state start.
//
// The gain is computed from the Cesàro limit of the policy's transition
// matrix P, obtained by repeatedly squaring the aperiodic matrix
// (I + P) / 2, so that policies inducing several recurrent classes or
// periodic chains are handled exactly.
func PolicyGain(est *model.Estimates, policyIndices []int,
	start int) (float64, error) {
	if start < 0 || start >= est.NumStates() {
		return 0, fmt.Errorf("policyGain: no such state %v", start)
	}

	p, r, err := est.PolicyMatrices(policyIndices)
	if err != nil {
		return 0, fmt.Errorf("policyGain: %w", err)
	}

	limit, err := cesaroLimit(p)
	if err != nil {
		return 0, fmt.Errorf("policyGain: %w", err)
	}

	var gain mat.VecDense
	gain.MulVec(limit, r)
	return gain.AtVec(start), nil
}

const (
	limitTolerance = 1e-10
	maxSquarings   = 64
)

// cesaroLimit returns the limiting matrix lim_k ((I + P) / 2)^k of the
// stochastic matrix P, which equals the Cesàro limit of P
func cesaroLimit(p *mat.Dense) (*mat.Dense, error) {
	n, _ := p.Dims()

	a := mat.NewDense(n, n, nil)
	a.Scale(0.5, p)
	for i := 0; i < n; i++ {
		a.Set(i, i, a.At(i, i)+0.5)
	}

	squared := mat.NewDense(n, n, nil)
	delta := mat.NewDense(n, n, nil)
	for i := 0; i < maxSquarings; i++ {
		squared.Mul(a, a)
		delta.Sub(squared, a)
		a, squared = squared, a

		if mat.Norm(delta, math.Inf(1)) < limitTolerance {
			return a, nil
		}
	}
	return nil, fmt.Errorf("cesaroLimit: no convergence after %v squarings",
		maxSquarings)
}
