package evi

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/ucrl/confidence"
	"github.com/samuelfneumann/ucrl/model"
)

// Operator determines which Bellman-type operator the solver iterates
type Operator string

const (
	// T is the extended optimality operator: u(s) <- max_a Q(s, a)
	T Operator = "T"

	// N is the span-constrained operator: after the extended backup the
	// bias vector is truncated so that its span does not exceed the
	// span constraint
	N Operator = "N"
)

// Recenter determines when the bias vector is shifted so that the
// reference state has value zero
type Recenter int

const (
	// NoRecenter never shifts the bias vector
	NoRecenter Recenter = iota

	// RecenterInitial shifts the bias vector once, before the first
	// sweep of each call
	RecenterInitial

	// RecenterSweep shifts the bias vector before the first sweep and
	// after every sweep (relative value iteration)
	RecenterSweep
)

func (r Recenter) String() string {
	switch r {
	case RecenterInitial:
		return "initial"
	case RecenterSweep:
		return "sweep"
	default:
		return "none"
	}
}

// Config is the configuration of an Extended Value Iteration call
type Config struct {
	// Epsilon is the convergence tolerance on the span of the per-sweep
	// increment of the bias vector
	Epsilon float64

	// RMax is the maximum reward
	RMax float64

	// TauMin and TauMax bound the holding times and Tau is the step of
	// the aperiodicity transformation of a semi-MDP. For MDPs all three
	// are 1.
	TauMin float64
	TauMax float64
	Tau    float64

	Operator Operator

	// SpanConstraint is the maximum span of the bias vector under
	// Operator N. +Inf leaves the bias unconstrained.
	SpanConstraint float64

	// TruncationLevel, when positive and finite, excludes the states
	// whose value lies more than TruncationLevel below the maximum value
	// from the computation of the truncation floor under Operator N.
	// Excluded states are raised to the floor.
	TruncationLevel float64

	// AugmentReward adds the exploration bonus
	// SpanConstraint * min(β_p, 2) / 2 to the optimistic reward
	AugmentReward bool

	Recenter       Recenter
	ReferenceState int

	// MaxIterations is the sweep budget of a call
	MaxIterations int
}

// DefaultConfig returns the configuration of the unconstrained extended
// optimality operator for an MDP with maximum reward rMax
func DefaultConfig(rMax float64) Config {
	return Config{
		Epsilon:        1e-8,
		RMax:           rMax,
		TauMin:         1,
		TauMax:         1,
		Tau:            1,
		Operator:       T,
		SpanConstraint: math.Inf(1),
		Recenter:       RecenterSweep,
		ReferenceState: 0,
		MaxIterations:  1_000_000,
	}
}

// TieTolerance is the gap, in units of the maximum reward, below which
// two optimistic action values are considered equal. It does not scale
// with the magnitude of the bias vector.
const TieTolerance = 1e-10

// tieTolerance returns the absolute tie window of the configuration
func (c Config) tieTolerance() float64 {
	return TieTolerance * math.Max(c.RMax, 1)
}

// truncates returns whether the configuration truncates the bias vector
func (c Config) truncates() bool {
	return c.Operator == N && !math.IsInf(c.SpanConstraint, 1)
}

// truncationActive returns whether some states may be excluded from the
// truncation floor
func (c Config) truncationActive() bool {
	return c.TruncationLevel > 0 && !math.IsInf(c.TruncationLevel, 1)
}

// Validate returns a *ConfigurationError if the configuration, the
// estimates, the confidence radii or the policy cannot be used together.
// Validate is run by Solver.Run before any sweep.
func Validate(cfg Config, est *model.Estimates, radii *confidence.Set,
	pol *model.Policy) error {
	if est == nil || radii == nil || pol == nil {
		return &ConfigurationError{"Model", nil,
			"estimates, radii and policy are required"}
	}

	numStates := est.NumStates()
	if numStates < 1 {
		return &ConfigurationError{"StateActions", numStates,
			"at least one state is required"}
	}
	for s, actions := range est.StateActions {
		if len(actions) == 0 {
			return &ConfigurationError{"StateActions", s,
				"every state needs at least one legal action"}
		}
		if len(est.P[s]) != len(actions) || len(est.R[s]) != len(actions) {
			return &ConfigurationError{"Estimates", s,
				"estimates do not match the action set of the state"}
		}
		if est.Tau != nil && len(est.Tau[s]) != len(actions) {
			return &ConfigurationError{"Estimates", s,
				"holding times do not match the action set of the state"}
		}
		for a := range actions {
			if len(est.P[s][a]) != numStates {
				return &ConfigurationError{"Estimates", s,
					fmt.Sprintf("transition row of action index %v has "+
						"length %v", a, len(est.P[s][a]))}
			}
		}
	}
	if err := radii.Validate(est.StateActions); err != nil {
		return &ConfigurationError{"Radii", radii.Shape, err.Error()}
	}
	if len(pol.Indices) != numStates || len(pol.Actions) != numStates {
		return &ConfigurationError{"Policy", len(pol.Indices),
			"policy must cover every state"}
	}

	if !(cfg.Epsilon > 0) {
		return &ConfigurationError{"Epsilon", cfg.Epsilon, "must be positive"}
	}
	if !(cfg.RMax > 0) || math.IsInf(cfg.RMax, 1) {
		return &ConfigurationError{"RMax", cfg.RMax,
			"must be positive and finite"}
	}
	if !(cfg.TauMin > 0) || !(cfg.TauMax >= cfg.TauMin) ||
		math.IsInf(cfg.TauMax, 1) {
		return &ConfigurationError{"TauMax", cfg.TauMax,
			fmt.Sprintf("holding times must satisfy 0 < TauMin (%v) <= TauMax",
				cfg.TauMin)}
	}
	if !(cfg.Tau > 0) || cfg.Tau > cfg.TauMin {
		return &ConfigurationError{"Tau", cfg.Tau,
			fmt.Sprintf("must be in (0, TauMin = %v]", cfg.TauMin)}
	}
	switch cfg.Operator {
	case T, N:
	default:
		return &ConfigurationError{"Operator", cfg.Operator,
			"must be T or N"}
	}
	if !(cfg.SpanConstraint > 0) {
		return &ConfigurationError{"SpanConstraint", cfg.SpanConstraint,
			"must be positive"}
	}
	if cfg.AugmentReward && math.IsInf(cfg.SpanConstraint, 1) {
		return &ConfigurationError{"AugmentReward", cfg.AugmentReward,
			"the exploration bonus needs a finite span constraint"}
	}
	if cfg.TruncationLevel < 0 || math.IsNaN(cfg.TruncationLevel) {
		return &ConfigurationError{"TruncationLevel", cfg.TruncationLevel,
			"cannot be negative"}
	}
	if cfg.ReferenceState < 0 || cfg.ReferenceState >= numStates {
		return &ConfigurationError{"ReferenceState", cfg.ReferenceState,
			fmt.Sprintf("must be a state in [0, %v)", numStates)}
	}
	if cfg.MaxIterations < 1 {
		return &ConfigurationError{"MaxIterations", cfg.MaxIterations,
			"at least one sweep is required"}
	}
	return nil
}
