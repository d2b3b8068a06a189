// Package confidence builds confidence sets around the empirical
// estimates of an unknown MDP.
//
// A confidence Set holds one radius per (state, action index) pair for
// the rewards and holding times, and either one L1 radius or one radius
// per next state for the transition probabilities, depending on the
// Shape of the Bound used. Pairs that were never visited get an
// infinite radius, which leaves their transition distribution
// unconstrained.
package confidence

import (
	"fmt"
	"strings"
)

// Bound is a family of concentration inequalities used to size the
// confidence sets
type Bound string

const (
	// Hoeffding radii shrink as sqrt(log(1/δ)/N) regardless of the
	// empirical variance. Transition sets are L1 balls.
	Hoeffding Bound = "hoeffding"

	// Bernstein radii use the empirical variance and are tighter than
	// Hoeffding radii when it is small. Transition sets are boxes around
	// each next-state probability.
	Bernstein Bound = "bernstein"

	// Chernoff radii are relative to each empirical next-state
	// probability, so that outcomes never observed get radii of order
	// log(1/δ)/N only. Transition sets are boxes.
	Chernoff Bound = "chernoff"
)

// ParseBound returns the Bound with the argument name
func ParseBound(name string) (Bound, error) {
	switch b := Bound(strings.ToLower(strings.TrimSpace(name))); b {
	case Hoeffding, Bernstein, Chernoff:
		return b, nil
	}
	return "", fmt.Errorf("parseBound: no such bound %q", name)
}

// Shape returns the shape of the transition confidence sets that the
// Bound constructs
func (b Bound) Shape() Shape {
	if b == Hoeffding {
		return L1
	}
	return Box
}

func (b Bound) String() string {
	return string(b)
}

// Shape determines the geometry of a transition confidence set
type Shape int

const (
	// L1 sets contain the distributions p' with ||p' - p̂||₁ <= β
	L1 Shape = iota

	// Box sets contain the distributions p' with |p'(s') - p̂(s')| <= β(s')
	// for every next state s'
	Box
)

func (s Shape) String() string {
	if s == L1 {
		return "L1"
	}
	return "Box"
}
