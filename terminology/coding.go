package terminology

import (
	"fmt"
	"strings"

	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
)

// Coding is a code drawn from a code system.
type Coding struct {
	// System is nil when the namespace did not resolve to a known system.
	System *CodeSystem

	// Namespace is the textual prefix the coding was written with.
	Namespace string

	Code    string
	Display string
	Text    string
}

// Resolved reports whether the coding's system is known.
func (c Coding) Resolved() bool {
	return c.System != nil
}

// Equal compares system and code. Unresolved codings compare by their
// namespace text.
func (c Coding) Equal(other Coding) bool {
	if c.Code != other.Code {
		return false
	}
	switch {
	case c.System != nil && other.System != nil:
		return c.System.Equal(other.System)
	case c.System == nil && other.System == nil:
		return c.Namespace == other.Namespace
	default:
		return false
	}
}

// Prefix returns the namespace prefix of the resolved system, or the raw
// namespace.
func (c Coding) Prefix() string {
	if c.System != nil {
		return c.System.NamespacePrefix
	}
	return c.Namespace
}

// String returns "prefix:code".
func (c Coding) String() string {
	return c.Prefix() + ":" + c.Code
}

// CodeableConcept is a concept represented by one or more codings.
type CodeableConcept struct {
	Coding []Coding
	Text   string
}

// Equal compares codings pairwise in order and the text.
func (cc CodeableConcept) Equal(other CodeableConcept) bool {
	if cc.Text != other.Text || len(cc.Coding) != len(other.Coding) {
		return false
	}
	for i := range cc.Coding {
		if !cc.Coding[i].Equal(other.Coding[i]) {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (cc CodeableConcept) String() string {
	parts := make([]string, len(cc.Coding))
	for i, c := range cc.Coding {
		parts[i] = c.String()
	}
	return fmt.Sprintf("CodeableConcept([%s], text=%q)", strings.Join(parts, ", "), cc.Text)
}

// ParseCoding parses "namespace:code" against resources. The string is
// split on the first colon, so codes may themselves contain colons.
//
// A missing colon or an empty resources list is an error at every level.
// An unknown namespace is an error under strict compliance; under lenient
// compliance a warning is logged and an unresolved coding is returned.
func ParseCoding(s string, resources []*CodeSystem, level compliance.Level) (Coding, error) {
	if len(resources) == 0 {
		return Coding{}, issue.Errorf(issue.CodeMalformedCoding, "cannot parse coding %q: no resources given", s)
	}
	prefix, code, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Coding{}, issue.Errorf(issue.CodeMalformedCoding, "cannot parse coding %q: expected namespace:code", s)
	}
	prefix = strings.TrimSpace(prefix)
	code = strings.TrimSpace(code)

	if cs := ByPrefix(prefix, resources); cs != nil {
		return Coding{System: cs, Namespace: prefix, Code: code}, nil
	}

	if level.IsStrict() {
		return Coding{}, issue.Errorf(issue.CodeUnresolvedCodeSystem,
			"code system %q of coding %q is not among the resources", prefix, s)
	}
	logger.Issue(issue.Issue{
		Severity:    issue.SeverityWarning,
		Code:        issue.CodeUnresolvedCodeSystem,
		Diagnostics: fmt.Sprintf("code system %q of coding %q is not among the resources", prefix, s),
		Row:         -1,
	})
	return Coding{Namespace: prefix, Code: code}, nil
}
