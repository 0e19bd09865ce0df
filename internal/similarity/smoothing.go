// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package similarity

// Window returns the half-open index range [lo, hi) averaged for index i of
// a sequence of length n.
//
//	i = 0      -> [0, 3)
//	i = 1      -> [0, 4)
//	i = n-2    -> [n-4, n)
//	i = n-1    -> [n-3, n)
//	otherwise  -> [i-2, i+3)
//
// The first two cases win when n is too short for the trailing ones, and the
// range is clamped to [0, n).
func Window(i, n int) (lo, hi int) {
	switch {
	case i == 0:
		lo, hi = 0, 3
	case i == 1:
		lo, hi = 0, 4
	case i == n-2:
		lo, hi = n-4, n
	case i == n-1:
		lo, hi = n-3, n
	default:
		lo, hi = i-2, i+3
	}
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	return lo, hi
}

// Smoothed returns the moving average of xs around index i using Window.
func Smoothed(xs []float64, i int) float64 {
	lo, hi := Window(i, len(xs))
	if hi <= lo {
		return 0
	}
	var sum float64
	for _, v := range xs[lo:hi] {
		sum += v
	}
	return sum / float64(hi-lo)
}
