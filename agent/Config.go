package agent

import (
	"github.com/samuelfneumann/ucrl/environment"
	"go.uber.org/zap"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes. A nil
	// logger disables logging.
	CreateAgent(env environment.Environment, logger *zap.Logger) (Agent,
		error)

	// ValidAgent returns whether the argument agent is valid for the
	// Config
	ValidAgent(Agent) bool

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the Type of agent the Config creates
	Type() Type
}
