package agent_test

import (
	"encoding/json"
	"testing"

	"github.com/samuelfneumann/ucrl/agent"
	"github.com/samuelfneumann/ucrl/agent/ucrl"
	"github.com/samuelfneumann/ucrl/confidence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTypedConfigYAML(t *testing.T) {
	doc := []byte(`
type: scalplus
bound: hoeffding
span_constraint: 3
delta: 0.1
`)
	var typed agent.TypedConfig
	require.NoError(t, yaml.Unmarshal(doc, &typed))
	assert.Equal(t, agent.SCALPlus, typed.Type)

	c, ok := typed.Config.(*ucrl.Config)
	require.True(t, ok)
	assert.Equal(t, confidence.Hoeffding, c.Bound)
	assert.Equal(t, 3.0, c.SpanConstraint)
	assert.Equal(t, 0.1, c.Delta)

	// Unset fields keep their defaults
	def := ucrl.DefaultConfig(agent.SCALPlus)
	assert.Equal(t, def.Tau, c.Tau)
	assert.Equal(t, def.MaxIterations, c.MaxIterations)
	assert.Equal(t, def.RegretTimeSteps, c.RegretTimeSteps)
	assert.NoError(t, typed.Validate())
}

func TestTypedConfigJSON(t *testing.T) {
	doc := []byte(`{"type": "UCRL", "bound": "chernoff", "r_max": 2}`)
	var typed agent.TypedConfig
	require.NoError(t, json.Unmarshal(doc, &typed))
	assert.Equal(t, agent.UCRL, typed.Type)

	c, ok := typed.Config.(*ucrl.Config)
	require.True(t, ok)
	assert.Equal(t, confidence.Chernoff, c.Bound)
	assert.Equal(t, 2.0, c.RMax)
	assert.Equal(t, 0.05, c.Delta)
}

func TestTypedConfigUnknownType(t *testing.T) {
	var typed agent.TypedConfig
	assert.Error(t, yaml.Unmarshal([]byte("type: ucb\n"), &typed))
	assert.Error(t, json.Unmarshal([]byte(`{"bound": "hoeffding"}`), &typed))
}

func TestParseType(t *testing.T) {
	for name, want := range map[string]agent.Type{
		"ucrl":     agent.UCRL,
		" Scal ":   agent.SCAL,
		"SCALPLUS": agent.SCALPlus,
	} {
		got, err := agent.ParseType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}

	_, err := agent.ParseType("SCAL+")
	assert.Error(t, err)
}

func TestNewTypedConfig(t *testing.T) {
	c := ucrl.DefaultConfig(agent.SCAL)
	typed := agent.NewTypedConfig(c)
	assert.Equal(t, agent.SCAL, typed.Type)
	assert.Equal(t, c, typed.Config)

	_, err := agent.NewConfig("UCB")
	assert.Error(t, err)
}
