// Package envconfig provides configuration structs for configuring
// the finite environments of the toys package with default parameters.
// Environment configurations in this package are YAML and JSON
// serializable.
package envconfig

import (
	"fmt"
	"strings"

	"github.com/samuelfneumann/ucrl/environment/toys"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	Toy3D1    EnvName = "Toy3D1"
	RiverSwim EnvName = "RiverSwim"
	Garnet    EnvName = "Garnet"
	FourRooms EnvName = "FourRooms"
)

// Config implements a specific configuration of a specific environment.
// Only the fields relevant to the chosen environment are used; zero
// values select the environment's defaults.
type Config struct {
	Environment EnvName `json:"name" yaml:"name" mapstructure:"name"`

	// Toy3D1
	Delta        float64 `json:"delta" yaml:"delta" mapstructure:"delta"`
	UniformRange float64 `json:"uniform_range" yaml:"uniform_range" mapstructure:"uniform_range"`

	// RiverSwim, Garnet
	NumStates       int  `json:"states" yaml:"states" mapstructure:"states"`
	NumActions      int  `json:"actions" yaml:"actions" mapstructure:"actions"`
	Branching       int  `json:"branching" yaml:"branching" mapstructure:"branching"`
	BernoulliReward bool `json:"bernoulli_reward" yaml:"bernoulli_reward" mapstructure:"bernoulli_reward"`

	// FourRooms
	Dimension          int     `json:"dimension" yaml:"dimension" mapstructure:"dimension"`
	SuccessProbability float64 `json:"success_probability" yaml:"success_probability" mapstructure:"success_probability"`
}

// Validate returns an error if the Config names no known environment
func (c Config) Validate() error {
	if _, err := c.name(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// name returns the canonical name of the configured environment
func (c Config) name() (EnvName, error) {
	for _, name := range []EnvName{Toy3D1, RiverSwim, Garnet, FourRooms} {
		if strings.EqualFold(string(name), string(c.Environment)) {
			return name, nil
		}
	}
	return "", fmt.Errorf("no such environment %q", c.Environment)
}

// Create returns the environment described by the Config, whose
// transitions and rewards are sampled using seed
func (c Config) Create(seed uint64) (*toys.Tabular, error) {
	name, err := c.name()
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	switch name {
	case Toy3D1:
		return CreateToy3D1(c.Delta, c.UniformRange, seed)

	case RiverSwim:
		cfg := toys.DefaultRiverSwim()
		if c.NumStates > 0 {
			cfg.NumStates = c.NumStates
		}
		cfg.BernoulliReward = c.BernoulliReward
		return cfg.Create(seed)

	case Garnet:
		cfg := toys.Garnet{
			NumStates:       orDefault(c.NumStates, 20),
			NumActions:      orDefault(c.NumActions, 4),
			Branching:       orDefault(c.Branching, 3),
			BernoulliReward: c.BernoulliReward,
		}
		return cfg.Create(seed)

	default:
		cfg := toys.DefaultFourRooms(orDefault(c.Dimension, 7))
		if c.SuccessProbability > 0 {
			cfg.SuccessProbability = c.SuccessProbability
		}
		return cfg.Create(seed)
	}
}

// CreateToy3D1 is a factory for creating the Toy3D1 environment. A zero
// delta uses the default delta and a positive uniformRange makes the
// rewards of state 2 stochastic.
func CreateToy3D1(delta, uniformRange float64, seed uint64) (*toys.Tabular,
	error) {
	cfg := toys.DefaultToy3D1()
	if delta != 0 {
		cfg.Delta = delta
	}
	if uniformRange > 0 {
		cfg.StochasticReward = true
		cfg.UniformRange = uniformRange
	}
	return cfg.Create(seed)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
