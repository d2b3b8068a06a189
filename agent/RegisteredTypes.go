package agent

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Type represents a specific type of an agent Config.
// Config's with this type can create Agents of the corresponding type.
type Type string

const (
	// UCRL plans with the extended optimality operator
	UCRL Type = "UCRL"

	// SCAL plans with the span-constrained operator
	SCAL Type = "SCAL"

	// SCALPlus plans with the span-constrained operator and an
	// exploration bonus added to the optimistic reward
	SCALPlus Type = "SCALPLUS"
)

// ParseType returns the Type with the argument name, ignoring case
func ParseType(name string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(name))); t {
	case UCRL, SCAL, SCALPlus:
		return t, nil
	}
	return "", fmt.Errorf("parseType: no such agent type %q", name)
}

// Registered types with the package. Once a Type has been registered
// with this map, a TypedConfig with that type can be decoded.
//
// No Type's are registered wtih this package upon initialization.
// Each separate package is in charge of registering its Type with
// the package separately to avoid circular imports.
var (
	registeredTypes = make(map[Type]reflect.Type)
	defaults        = make(map[Type]Config)
	registerMu      sync.RWMutex
)

// Register registers an agent's Type with a concrete Config type so
// that upon deserialization of a TypedConfig, Configs of type agentType
// are deserialized into the concrete type of config. The argument
// config is the value used as the defaults of decoded Configs.
func Register(agentType Type, config Config) {
	registerMu.Lock()
	defer registerMu.Unlock()
	registeredTypes[agentType] = reflect.TypeOf(config)
	defaults[agentType] = config
}

// NewConfig returns a pointer to a new concrete Config of the argument
// Type holding the registered defaults
func NewConfig(agentType Type) (Config, error) {
	registerMu.RLock()
	defer registerMu.RUnlock()

	ty, ok := registeredTypes[agentType]
	if !ok {
		return nil, fmt.Errorf("newConfig: agent type %v not registered",
			agentType)
	}

	value := reflect.New(ty)
	value.Elem().Set(reflect.ValueOf(defaults[agentType]))

	config, ok := value.Interface().(Config)
	if !ok {
		return nil, fmt.Errorf("newConfig: *%v is not a Config", ty)
	}
	return config, nil
}
