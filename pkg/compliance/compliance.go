// Package compliance defines the strictness policy shared by every parser
// and validator in phenomapper.
package compliance

import (
	"fmt"
	"strings"
)

// Level selects how non-conformance is handled.
//
// Under Strict any ambiguity or violation is returned as an error. Under
// Lenient a warning is logged and a best-effort value is substituted, or the
// validation result is reported as false.
type Level int

const (
	// Lenient degrades gracefully. It is the zero value.
	Lenient Level = iota
	// Strict fails fast.
	Strict
)

// String returns the textual form of the level.
func (l Level) String() string {
	switch l {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// IsStrict reports whether l is Strict.
func (l Level) IsStrict() bool {
	return l == Strict
}

// IsValid returns true if l is one of the declared levels.
func (l Level) IsValid() bool {
	return l == Lenient || l == Strict
}

// Parse converts a textual level. The historical spellings "soft" and
// "hard" are accepted as aliases.
func Parse(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient", "soft":
		return Lenient, nil
	case "strict", "hard":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown compliance level %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("invalid compliance level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
