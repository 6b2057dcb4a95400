// Package aggregate turns entry lists into chart-ready summaries.
//
// Every function here is pure: it reads the slice it is given, performs no
// I/O, never fails and returns a valid (possibly all-zero) value for empty
// input. Entries are expected newest first, the order the store keeps them.
package aggregate

import "math"

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
