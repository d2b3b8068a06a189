package evi

import (
	"math"
)

// The inner maximisation of EVI picks, inside the confidence set of a
// state-action pair, the next-state distribution that maximises the
// expected bias. Both set shapes admit a greedy solution over the next
// states sorted by increasing bias: sorted[len(sorted)-1] is the state
// with the largest bias.

// maxProbaL1 writes into dst the distribution of the L1 ball of radius
// beta around p that maximises the expected value of the bias vector
// whose ascending order is sorted.
//
// Up to beta/2 mass is moved onto the best state, taken from the states
// with the lowest bias first.
func maxProbaL1(dst, p []float64, sorted []int, beta float64) {
	best := sorted[len(sorted)-1]

	// Also catches beta = +Inf, where p is unconstrained
	if p[best]+beta/2 >= 1 {
		for i := range dst {
			dst[i] = 0
		}
		dst[best] = 1
		return
	}

	copy(dst, p)
	add := math.Min(beta/2, 1-p[best])
	if add <= 0 {
		return
	}
	dst[best] += add

	remaining := add
	for l := 0; l < len(sorted)-1 && remaining > 0; l++ {
		idx := sorted[l]
		take := math.Min(dst[idx], remaining)
		dst[idx] -= take
		remaining -= take
	}
}

// maxProbaBox writes into dst the distribution of the box
// {p' : |p'(s') - p(s')| <= beta[s'], p' >= 0, Σp' = 1} that maximises
// the expected value of the bias vector whose ascending order is
// sorted.
//
// Every state starts at its lower bound and the missing mass is handed
// out to the states with the largest bias first, each up to its upper
// bound.
func maxProbaBox(dst, p []float64, sorted []int, beta []float64) {
	mass := 1.0
	for i := range dst {
		dst[i] = math.Max(0, p[i]-beta[i])
		mass -= dst[i]
	}

	for l := len(sorted) - 1; l >= 0 && mass > 0; l-- {
		idx := sorted[l]
		upper := math.Min(1, p[idx]+beta[idx])
		add := math.Min(mass, upper-dst[idx])
		if add <= 0 {
			continue
		}
		dst[idx] += add
		mass -= add
	}
}
