// Package intutils provides utilities for working with ints
package intutils

// Min returns the smallest of its arguments. It panics if called
// without arguments.
func Min(ints ...int) int {
	min := ints[0]
	for _, val := range ints[1:] {
		if val < min {
			min = val
		}
	}
	return min
}

// Max returns the largest of its arguments. It panics if called
// without arguments.
func Max(ints ...int) int {
	max := ints[0]
	for _, val := range ints[1:] {
		if val > max {
			max = val
		}
	}
	return max
}

// Clamp restricts value to [lo, hi]
func Clamp(value, lo, hi int) int {
	return Max(lo, Min(value, hi))
}
