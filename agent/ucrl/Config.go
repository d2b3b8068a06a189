package ucrl

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/ucrl/agent"
	"github.com/samuelfneumann/ucrl/confidence"
	"github.com/samuelfneumann/ucrl/environment"
	"github.com/samuelfneumann/ucrl/evi"
	"go.uber.org/zap"
)

func init() {
	// Register the Config types so that they can be decoded using
	// agent.TypedConfig
	for _, t := range []agent.Type{agent.UCRL, agent.SCAL, agent.SCALPlus} {
		agent.Register(t, DefaultConfig(t))
	}
}

// Config represents a configuration of an episodic controller
type Config struct {
	// Algorithm determines the planning strategy: UCRL, SCAL or SCALPLUS
	Algorithm agent.Type `json:"type" yaml:"type" mapstructure:"type"`

	// Bound is the family of concentration inequalities used to build
	// the confidence sets
	Bound confidence.Bound `json:"bound" yaml:"bound" mapstructure:"bound"`

	// RMax is the maximum reward. If zero, the environment's RMax() is
	// used when available and 1 otherwise.
	RMax float64 `json:"r_max" yaml:"r_max" mapstructure:"r_max"`

	Delta  float64 `json:"delta" yaml:"delta" mapstructure:"delta"`
	AlphaP float64 `json:"alpha_p" yaml:"alpha_p" mapstructure:"alpha_p"`
	AlphaR float64 `json:"alpha_r" yaml:"alpha_r" mapstructure:"alpha_r"`

	// SpanConstraint and TruncationLevel configure the span-constrained
	// operator of SCAL and SCAL+. They are ignored by UCRL.
	SpanConstraint  float64 `json:"span_constraint" yaml:"span_constraint" mapstructure:"span_constraint"`
	TruncationLevel float64 `json:"truncation_level" yaml:"truncation_level" mapstructure:"truncation_level"`

	// Epsilon is the EVI tolerance. If zero, episode k uses
	// RMax / sqrt(t_k) where t_k is the time step the episode starts.
	Epsilon float64 `json:"epsilon" yaml:"epsilon" mapstructure:"epsilon"`

	// Tau is the step of the aperiodicity transformation used by EVI,
	// in (0, 1]
	Tau float64 `json:"tau" yaml:"tau" mapstructure:"tau"`

	// MaxIterations is the sweep budget of each EVI call
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations"`

	// RegretTimeSteps is the number of time steps between two records
	// of the cumulative regret, and SpanEpisodeSteps the number of
	// episodes between two records of the bias span
	RegretTimeSteps  int `json:"regret_time_steps" yaml:"regret_time_steps" mapstructure:"regret_time_steps"`
	SpanEpisodeSteps int `json:"span_episode_steps" yaml:"span_episode_steps" mapstructure:"span_episode_steps"`
}

// DefaultConfig returns the default configuration of the argument
// algorithm
func DefaultConfig(algorithm agent.Type) Config {
	c := Config{
		Algorithm:        algorithm,
		Bound:            confidence.Bernstein,
		Delta:            0.05,
		AlphaP:           1,
		AlphaR:           1,
		SpanConstraint:   math.Inf(1),
		Tau:              1,
		MaxIterations:    evi.DefaultConfig(1).MaxIterations,
		RegretTimeSteps:  1000,
		SpanEpisodeSteps: 1,
	}
	if algorithm == agent.SCAL || algorithm == agent.SCALPlus {
		c.SpanConstraint = 5
	}
	return c
}

// CreateAgent creates the agent from the Config. The reference gain
// used for regret is the environment's optimal gain if it implements
// environment.Optimal, and 0 otherwise.
func (c Config) CreateAgent(env environment.Environment,
	logger *zap.Logger) (agent.Agent, error) {
	gain := 0.0
	if opt, ok := env.(environment.Optimal); ok {
		var err error
		if gain, err = opt.MaxGain(); err != nil {
			return nil, fmt.Errorf("createAgent: reference gain: %w", err)
		}
	}
	return New(env, c, gain, logger)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*Controller)
	return ok
}

// Validate checks a Config for errors
func (c Config) Validate() error {
	if _, err := agent.ParseType(string(c.Algorithm)); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if _, err := confidence.ParseBound(string(c.Bound)); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if c.RMax < 0 || math.IsInf(c.RMax, 0) || math.IsNaN(c.RMax) {
		return fmt.Errorf("validate: r_max must be finite and non-negative, "+
			"got %v", c.RMax)
	}
	if c.Epsilon < 0 || math.IsNaN(c.Epsilon) {
		return fmt.Errorf("validate: epsilon cannot be negative, got %v",
			c.Epsilon)
	}
	if !(c.Tau > 0 && c.Tau <= 1) {
		return fmt.Errorf("validate: tau must be in (0, 1], got %v", c.Tau)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("validate: max_iterations must be positive, got %v",
			c.MaxIterations)
	}
	if c.RegretTimeSteps < 1 || c.SpanEpisodeSteps < 1 {
		return fmt.Errorf("validate: reporting intervals must be positive, "+
			"got regret_time_steps = %v span_episode_steps = %v",
			c.RegretTimeSteps, c.SpanEpisodeSteps)
	}

	params := confidence.Params{Delta: c.Delta, RMax: 1, TauMin: 1,
		TauMax: 1, AlphaP: c.AlphaP, AlphaR: c.AlphaR}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	if c.Type() != agent.UCRL {
		if !(c.SpanConstraint > 0) || math.IsInf(c.SpanConstraint, 1) {
			return fmt.Errorf("validate: %v needs a positive, finite span "+
				"constraint, got %v", c.Type(), c.SpanConstraint)
		}
	}
	if c.TruncationLevel < 0 || math.IsNaN(c.TruncationLevel) {
		return fmt.Errorf("validate: truncation_level cannot be negative, "+
			"got %v", c.TruncationLevel)
	}
	return nil
}

// Type returns the type of agent which is constructed using the Config,
// or the empty Type if the algorithm is unknown
func (c Config) Type() agent.Type {
	t, _ := agent.ParseType(string(c.Algorithm))
	return t
}
