package model

import "fmt"

// Policy is a deterministic policy over state-dependent action sets.
// Indices[s] is the position of the chosen action in the legal actions
// of state s and Actions[s] is the id of that action.
type Policy struct {
	Indices []int
	Actions []int
}

// NewPolicy returns the policy that plays the first legal action in
// every state
func NewPolicy(stateActions [][]int) *Policy {
	p := &Policy{
		Indices: make([]int, len(stateActions)),
		Actions: make([]int, len(stateActions)),
	}
	for s, actions := range stateActions {
		if len(actions) > 0 {
			p.Actions[s] = actions[0]
		}
	}
	return p
}

// Set chooses the action index a in state s
func (p *Policy) Set(stateActions [][]int, s, a int) {
	p.Indices[s] = a
	p.Actions[s] = stateActions[s][a]
}

// Validate checks that the policy chooses a legal action in each state
func (p *Policy) Validate(stateActions [][]int) error {
	if len(p.Indices) != len(stateActions) ||
		len(p.Actions) != len(stateActions) {
		return fmt.Errorf("validate: policy covers %v states, want %v",
			len(p.Indices), len(stateActions))
	}
	for s, a := range p.Indices {
		if a < 0 || a >= len(stateActions[s]) {
			return fmt.Errorf("validate: state %v has no action index %v", s, a)
		}
		if stateActions[s][a] != p.Actions[s] {
			return fmt.Errorf("validate: state %v action index %v is action "+
				"%v, not %v", s, a, stateActions[s][a], p.Actions[s])
		}
	}
	return nil
}

// Clone returns a deep copy of the policy
func (p *Policy) Clone() *Policy {
	return &Policy{
		Indices: append([]int(nil), p.Indices...),
		Actions: append([]int(nil), p.Actions...),
	}
}

// Equal returns whether two policies choose the same actions
func (p *Policy) Equal(other *Policy) bool {
	if len(p.Indices) != len(other.Indices) {
		return false
	}
	for s := range p.Indices {
		if p.Indices[s] != other.Indices[s] {
			return false
		}
	}
	return true
}
