package model

import (
	"regexp"
	"strings"
)

var (
	ordinalPattern = regexp.MustCompile(`(?i)^([0-9]+(?:\.[0-9]+)*|[ivxlc]+\.[a-z]*|[ivxlc]+)\.?\s+(\S.*)$`)
	romanPattern   = regexp.MustCompile(`(?i)^c{0,3}(xc|xl|l?x{0,3})(ix|iv|v?i{0,3})$`)
)

// ParseOrdinal splits a leading section number such as "1.1." or "I.a"
// from a field name. Names without one return an empty ordinal and the
// trimmed name.
func ParseOrdinal(name string) (ordinal, rest string) {
	name = strings.TrimSpace(name)
	m := ordinalPattern.FindStringSubmatch(name)
	if m == nil {
		return "", name
	}
	ordinal = strings.TrimSuffix(m[1], ".")
	if !isRomanOrdinal(ordinal) && !isNumericOrdinal(ordinal) {
		return "", name
	}
	return ordinal, strings.TrimSpace(m[2])
}

func isNumericOrdinal(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func isRomanOrdinal(s string) bool {
	head, _, _ := strings.Cut(s, ".")
	return head != "" && romanPattern.MatchString(head)
}
