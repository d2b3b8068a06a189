// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"
)

// RelTol is the relative tolerance used by IsClose
const RelTol = 1e-9

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// IsClose returns whether a and b are equal up to a relative tolerance
// of RelTol
func IsClose(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= RelTol*math.Max(math.Abs(a), math.Abs(b))
}
