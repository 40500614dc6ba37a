// Package primitive parses untyped cell text into Go primitive values.
package primitive

import (
	"math"
	"strconv"
	"strings"
)

// Parse converts s to the most specific primitive it represents: an int,
// a float64, a bool or, failing all of those, the trimmed string itself.
// Only surrounding whitespace is ignored, so "1 2" stays a string.
func Parse(s string) any {
	s = strings.TrimSpace(s)
	if v, ok := ParseInt(s); ok {
		return v
	}
	if v, ok := ParseFloat(s); ok {
		return v
	}
	if v, ok := ParseBool(s); ok {
		return v
	}
	return s
}

// ParseInt parses a base-10 integer.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseFloat parses a finite decimal number. NaN and infinities are
// rejected so that words like "inf" or "nan" are kept as text.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseBool parses "true"/"t" and "false"/"f" in any case. Digits are not
// booleans.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t":
		return true, true
	case "false", "f":
		return false, true
	default:
		return false, false
	}
}
