// Package core holds the LifeOS domain model.
//
// This file contains the lenient numeric parsing used for metric values,
// which arrive as free text from the tracker agent ("120", "5 km", "7.5h").
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseMetricValue reads the longest numeric prefix of s.
//
// Leading whitespace is skipped and trailing text such as a unit is ignored.
// Anything that does not start with a number, or that overflows to an
// infinity, yields 0 so sums never turn into NaN.
//
// Examples:
//
//	ParseMetricValue("120")     -> 120
//	ParseMetricValue("5 km")    -> 5
//	ParseMetricValue("-3.5e2x") -> -350
//	ParseMetricValue(".5")      -> 0.5
//	ParseMetricValue("abc")     -> 0
func ParseMetricValue(s string) float64 {
	s = strings.TrimSpace(s)
	n := numericPrefix(s)
	if n == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:n], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// numericPrefix returns the length of the decimal number at the start of s,
// or 0 if there is none.
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intDigits := digitsAt(s, i)
	i += intDigits
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		fracDigits = digitsAt(s, i+1)
		if intDigits > 0 || fracDigits > 0 {
			i += 1 + fracDigits
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return 0
	}
	// exponent only counts when followed by at least one digit
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if d := digitsAt(s, j); d > 0 {
			i = j + d
		}
	}
	return i
}

func digitsAt(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '9' {
		n++
	}
	return n
}
