package agent

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// TypedConfig wraps a Config to enable a Config to be unmarshaled from
// JSON or YAML into its underlying concrete type. The concrete type is
// chosen by the "type" field, which must name a registered Type.
// Fields missing from the document keep the registered defaults.
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig returns a TypedConfig wrapping c
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

type typeHeader struct {
	Type string `json:"type" yaml:"type"`
}

// UnmarshalYAML implements the yaml.Unmarshaler interface
func (t *TypedConfig) UnmarshalYAML(node *yaml.Node) error {
	var header typeHeader
	if err := node.Decode(&header); err != nil {
		return fmt.Errorf("unmarshalYAML: %w", err)
	}

	config, err := newTyped(header.Type)
	if err != nil {
		return fmt.Errorf("unmarshalYAML: %w", err)
	}
	if err := node.Decode(config); err != nil {
		return fmt.Errorf("unmarshalYAML: %w", err)
	}

	t.Type = config.Type()
	t.Config = config
	return nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	var header typeHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	config, err := newTyped(header.Type)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	t.Type = config.Type()
	t.Config = config
	return nil
}

// newTyped returns the registered default Config of the type with the
// argument name
func newTyped(name string) (Config, error) {
	agentType, err := ParseType(name)
	if err != nil {
		return nil, err
	}
	return NewConfig(agentType)
}
