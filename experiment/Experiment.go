// Package experiment implements functionality for running an experiment
package experiment

import (
	"fmt"
	"strings"

	"github.com/samuelfneumann/ucrl/agent"
	"github.com/samuelfneumann/ucrl/environment/envconfig"
	"github.com/samuelfneumann/ucrl/experiment/checkpointer"
	"github.com/samuelfneumann/ucrl/experiment/tracker"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments send each TimeStep generated by their agent to Trackers,
// which cache the data in RAM to be later saved to disk by Save(). The
// Run() method runs the agent until the maximum timestep limit is
// reached or planning fails.
type Experiment interface {
	Run() (agent.Outcome, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

// Type is a type of experiment
type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment.
type Config struct {
	Type Type `yaml:"type" mapstructure:"type"`

	// MaxSteps is the duration of each run
	MaxSteps int `yaml:"max_steps" mapstructure:"max_steps"`

	// Runs is the number of independent runs, which use consecutive
	// seeds starting at Seed
	Runs int    `yaml:"runs" mapstructure:"runs"`
	Seed uint64 `yaml:"seed" mapstructure:"seed"`

	// CheckpointSteps is the number of steps between two snapshots of
	// the agent, 0 to only save a snapshot at the end of a run
	CheckpointSteps int `yaml:"checkpoint_steps" mapstructure:"checkpoint_steps"`

	EnvConf   envconfig.Config  `yaml:"environment" mapstructure:"environment"`
	AgentConf agent.TypedConfig `yaml:"agent" mapstructure:"-"`
}

// Validate returns an error if the Config cannot be run
func (c Config) Validate() error {
	if c.Type != OnlineExp {
		return fmt.Errorf("validate: no such experiment type %v", c.Type)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("validate: max_steps must be positive, got %v",
			c.MaxSteps)
	}
	if c.Runs < 1 {
		return fmt.Errorf("validate: runs must be positive, got %v", c.Runs)
	}
	if c.CheckpointSteps < 0 {
		return fmt.Errorf("validate: checkpoint_steps cannot be negative, "+
			"got %v", c.CheckpointSteps)
	}
	if err := c.EnvConf.Validate(); err != nil {
		return fmt.Errorf("validate: environment: %w", err)
	}
	if c.AgentConf.Config == nil {
		return fmt.Errorf("validate: no agent configured")
	}
	if err := c.AgentConf.Validate(); err != nil {
		return fmt.Errorf("validate: agent: %w", err)
	}
	return nil
}

// RunSeed returns the seed of run i, the (i+1)-th value drawn from a
// generator seeded with the experiment's Seed
func (c Config) RunSeed(i int) uint64 {
	source := rand.New(rand.NewSource(c.Seed))
	var seed uint64
	for j := 0; j <= i; j++ {
		seed = source.Uint64()
	}
	return seed
}

// CreateExp creates the experiment of run i. The environment is seeded
// with the run's seed.
func (c Config) CreateExp(i int, logger *zap.Logger, t []tracker.Tracker,
	check []checkpointer.Checkpointer) (Experiment, error) {
	env, err := c.EnvConf.Create(c.RunSeed(i))
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create environment: %w",
			err)
	}
	a, err := c.AgentConf.CreateAgent(env, logger)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %w", err)
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(env, a, c.MaxSteps, t, check), nil
	}
	return nil, fmt.Errorf("createExp: no such experiment type %v", c.Type)
}

// LoadConfig reads an experiment Config from a YAML or JSON file.
// Every setting can be overridden by an environment variable prefixed
// by UCRL_, for example UCRL_MAX_STEPS or UCRL_AGENT_DELTA.
func LoadConfig(path string) (Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetEnvPrefix("UCRL")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	vp.SetDefault("type", OnlineExp)
	vp.SetDefault("max_steps", 100_000)
	vp.SetDefault("runs", 1)
	vp.SetDefault("seed", 1)
	vp.SetDefault("checkpoint_steps", 0)

	if err := vp.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}

	var outer struct {
		Config `mapstructure:",squash"`
		Agent  map[string]interface{} `mapstructure:"agent"`
	}
	if err := vp.Unmarshal(&outer); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	config := outer.Config

	// The agent Config is decoded into its registered concrete type by
	// agent.TypedConfig, which viper cannot do itself
	spec, err := yaml.Marshal(resolveScalars(outer.Agent))
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	if err := yaml.Unmarshal(spec, &config.AgentConf); err != nil {
		return Config{}, fmt.Errorf("loadConfig: agent: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	return config, nil
}

// resolveScalars replaces the string values of m, which environment
// overrides always produce, by the YAML scalars they denote
func resolveScalars(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		str, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}

		var scalar interface{}
		if err := yaml.Unmarshal([]byte(str), &scalar); err != nil || scalar == nil {
			scalar = str
		}
		out[k] = scalar
	}
	return out
}
