// Package evi implements Extended Value Iteration, the optimistic
// planner of UCRL-style algorithms for average-reward MDPs.
//
// Given point estimates of an MDP and confidence radii around them,
// Extended Value Iteration runs value iteration over an extended action
// set: for each state and base action the transition distribution is
// chosen optimistically inside its confidence set. The resulting bias
// vector and greedy policy are optimistic with respect to every MDP
// consistent with the confidence sets.
//
// The convergence test is on the span of the per-sweep increment of the
// bias vector, not on the bias vector itself, which grows without bound
// in the average-reward setting unless it is recentered.
package evi

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/ucrl/confidence"
	"github.com/samuelfneumann/ucrl/model"
	"github.com/samuelfneumann/ucrl/utils/floatutils"
	"gonum.org/v1/gonum/floats"
)

// Result describes a converged run of Extended Value Iteration
type Result struct {
	// Span is the span of the bias vector at convergence
	Span float64

	// IncrementSpan is the span of U2 - U1
	IncrementSpan float64

	Iterations int

	// U1 and U2 are the bias vectors before and after the last sweep
	U1 []float64
	U2 []float64
}

// Gain returns the optimistic gain estimate of the last sweep, the
// midpoint of the smallest and largest increment of the bias vector
func (r Result) Gain() float64 {
	diff := make([]float64, len(r.U2))
	floats.SubTo(diff, r.U2, r.U1)
	return 0.5 * (floats.Max(diff) + floats.Min(diff))
}

// Solver runs Extended Value Iteration. Between calls, the Solver
// keeps the last bias vector, which seeds the next call so that
// successive, similar problems reconverge quickly. Apart from this seed
// a Solver holds only preallocated buffers.
//
// A Solver is not safe for concurrent use.
type Solver struct {
	numStates int

	u1, u2    []float64
	increment []float64

	// sorted is the index arena holding the states sorted by increasing
	// u1, and scratch the values sorted along with it
	sorted  []int
	scratch []float64

	// proba holds the optimistic next-state distribution of a pair
	proba []float64
}

// NewSolver returns a new Solver for MDPs with numStates states whose
// bias seed is the zero vector
func NewSolver(numStates int) *Solver {
	return &Solver{
		numStates: numStates,
		u1:        make([]float64, numStates),
		u2:        make([]float64, numStates),
		increment: make([]float64, numStates),
		sorted:    make([]int, numStates),
		scratch:   make([]float64, numStates),
		proba:     make([]float64, numStates),
	}
}

// Run runs Extended Value Iteration on the estimates est with the
// confidence radii radii using a fresh Solver. See Solver.Run.
func Run(est *model.Estimates, radii *confidence.Set, pol *model.Policy,
	cfg Config) (Result, error) {
	if est == nil {
		return Result{}, &ConfigurationError{"Model", nil,
			"estimates are required"}
	}
	return NewSolver(est.NumStates()).Run(est, radii, pol, cfg)
}

// Bias returns a copy of the current bias seed
func (s *Solver) Bias() []float64 {
	return append([]float64(nil), s.u1...)
}

// SetBias replaces the bias seed used by the next call to Run
func (s *Solver) SetBias(u []float64) error {
	if len(u) != s.numStates {
		return fmt.Errorf("setBias: bias has length %v, want %v", len(u),
			s.numStates)
	}
	copy(s.u1, u)
	return nil
}

// Reset sets the bias seed to zero
func (s *Solver) Reset() {
	for i := range s.u1 {
		s.u1[i] = 0
	}
}

// Run iterates the extended operator selected by cfg, starting from the
// Solver's bias seed, until the span of the per-sweep increment of the
// bias vector falls below cfg.Epsilon. The greedy optimistic policy of
// the last sweep is written into pol; ties are broken in favour of the
// lowest action index.
//
// A *ConfigurationError is returned before any sweep if the arguments
// are invalid, and a *DivergenceError if the sweep budget is exhausted.
// The bias seed is only updated by converged calls.
func (s *Solver) Run(est *model.Estimates, radii *confidence.Set,
	pol *model.Policy, cfg Config) (Result, error) {
	if err := Validate(cfg, est, radii, pol); err != nil {
		return Result{}, err
	}
	if est.NumStates() != s.numStates {
		return Result{}, &ConfigurationError{"StateActions", est.NumStates(),
			fmt.Sprintf("solver was built for %v states", s.numStates)}
	}

	u1 := append([]float64(nil), s.u1...)
	u2 := s.u2
	if cfg.Recenter != NoRecenter {
		floats.AddConst(-u1[cfg.ReferenceState], u1)
	}
	s.sort(u1)

	incrementSpan := math.Inf(1)
	for it := 1; it <= cfg.MaxIterations; it++ {
		s.sweep(est, radii, pol, cfg, u1, u2)
		if cfg.truncates() {
			truncate(u2, cfg)
		}

		floats.SubTo(s.increment, u2, u1)
		incrementSpan = floats.Max(s.increment) - floats.Min(s.increment)
		if math.IsNaN(incrementSpan) || math.IsInf(incrementSpan, 0) {
			return Result{}, s.divergence(est, radii, pol, it, incrementSpan, u2)
		}

		if incrementSpan < cfg.Epsilon {
			res := Result{
				Span:          floats.Max(u2) - floats.Min(u2),
				IncrementSpan: incrementSpan,
				Iterations:    it,
				U1:            append([]float64(nil), u1...),
				U2:            append([]float64(nil), u2...),
			}
			copy(s.u1, u2)
			return res, nil
		}

		copy(u1, u2)
		if cfg.Recenter == RecenterSweep {
			floats.AddConst(-u1[cfg.ReferenceState], u1)
		}
		s.sort(u1)
	}

	return Result{}, s.divergence(est, radii, pol, cfg.MaxIterations,
		incrementSpan, u2)
}

// sweep applies one extended Bellman backup to every state, reading the
// bias vector u1 and writing the new values into u2
func (s *Solver) sweep(est *model.Estimates, radii *confidence.Set,
	pol *model.Policy, cfg Config, u1, u2 []float64) {
	for st, actions := range est.StateActions {
		best := math.Inf(-1)
		bestIndex := -1

		for a := range actions {
			q := s.backup(est, radii, cfg, u1, st, a)
			if bestIndex < 0 || q > best+cfg.tieTolerance() {
				best = q
				bestIndex = a
			}
		}

		u2[st] = best
		pol.Set(est.StateActions, st, bestIndex)
	}
}

// backup returns the optimistic value of taking action index a in
// state st given the bias vector u1
func (s *Solver) backup(est *model.Estimates, radii *confidence.Set,
	cfg Config, u1 []float64, st, a int) float64 {
	reward := math.Min(cfg.TauMax*cfg.RMax, est.R[st][a]+radii.R[st][a])
	if cfg.AugmentReward {
		reward += cfg.SpanConstraint * math.Min(radii.L1Radius(st, a), 2) / 2
	}

	if radii.Shape == confidence.L1 {
		maxProbaL1(s.proba, est.P[st][a], s.sorted, radii.P[st][a][0])
	} else {
		maxProbaBox(s.proba, est.P[st][a], s.sorted, radii.P[st][a])
	}
	expected := floats.Dot(s.proba, u1)

	// Optimistic holding time. For MDPs every holding time is 1 and the
	// backup reduces to reward + expected.
	tauHat := 1.0
	if est.Tau != nil {
		tauHat = est.Tau[st][a]
	}
	v := reward + cfg.Tau*(expected-u1[st])
	tau := tauHat
	if v > 0 {
		tau -= radii.Tau[st][a]
	} else if v < 0 {
		tau += radii.Tau[st][a]
	}
	tau = floatutils.Clip(tau, cfg.TauMin, cfg.TauMax)

	ratio := cfg.Tau / tau
	return reward/tau + ratio*expected + (1-ratio)*u1[st]
}

// sort fills the index arena with the states sorted by increasing bias
func (s *Solver) sort(u []float64) {
	copy(s.scratch, u)
	floats.Argsort(s.scratch, s.sorted)
}

// truncate applies the span truncation of operator N: values are
// clipped into [floor, floor + SpanConstraint], where floor is the
// smallest value among the states that are not excluded by the
// truncation level
func truncate(u []float64, cfg Config) {
	floor := math.Inf(1)
	ceiling := floats.Max(u)
	for _, v := range u {
		if cfg.truncationActive() && v < ceiling-cfg.TruncationLevel {
			continue
		}
		floor = math.Min(floor, v)
	}

	for i, v := range u {
		u[i] = floatutils.Clip(v, floor, floor+cfg.SpanConstraint)
	}
}

// divergence builds the DivergenceError describing the state whose value
// increased the most on the last sweep
func (s *Solver) divergence(est *model.Estimates, radii *confidence.Set,
	pol *model.Policy, iterations int, incrementSpan float64,
	u []float64) *DivergenceError {
	st := floats.MaxIdx(s.increment)
	a := pol.Indices[st]

	return &DivergenceError{
		Iterations:       iterations,
		IncrementSpan:    incrementSpan,
		Span:             floats.Max(u) - floats.Min(u),
		State:            st,
		ActionIndex:      a,
		Action:           pol.Actions[st],
		Reward:           est.R[st][a],
		RewardRadius:     radii.R[st][a],
		TransitionRadius: radii.L1Radius(st, a),
		Transitions:      append([]float64(nil), est.P[st][a]...),
	}
}
