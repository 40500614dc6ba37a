package terminology

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultVersion is the version of a code system that does not name one.
const DefaultVersion = "0.0.0"

// CodeSystem is a terminology, ontology or nomenclature identified by its
// namespace prefix. CodeSystem values are treated as immutable.
type CodeSystem struct {
	Name            string
	NamespacePrefix string
	URL             string
	IRIPrefix       string
	Version         string

	// Synonyms are alternative prefixes or abbreviations seen in data,
	// such as "HPO" for the prefix "HP".
	Synonyms []string
}

// NewCodeSystem creates a code system with the default version.
func NewCodeSystem(name, prefix, url string, synonyms ...string) *CodeSystem {
	return &CodeSystem{
		Name:            name,
		NamespacePrefix: prefix,
		URL:             url,
		Version:         DefaultVersion,
		Synonyms:        synonyms,
	}
}

// WithVersion returns a copy of cs with the given version.
func (cs *CodeSystem) WithVersion(version string) *CodeSystem {
	c := *cs
	c.Synonyms = slices.Clone(cs.Synonyms)
	c.Version = version
	return &c
}

// Equal reports whether cs and other denote the same code system: their
// prefixes are equal, or either prefix is a synonym of the other. Versions
// are ignored.
func (cs *CodeSystem) Equal(other *CodeSystem) bool {
	if cs == nil || other == nil {
		return cs == other
	}
	if cs.NamespacePrefix == other.NamespacePrefix {
		return true
	}
	return slices.Contains(other.Synonyms, cs.NamespacePrefix) ||
		slices.Contains(cs.Synonyms, other.NamespacePrefix)
}

// Contains reports whether the coding is drawn from cs.
func (cs *CodeSystem) Contains(c Coding) bool {
	if c.System == nil {
		return cs.Matches(c.Namespace)
	}
	return cs.Equal(c.System)
}

// Matches reports whether s names cs by prefix, name or synonym, ignoring
// case.
func (cs *CodeSystem) Matches(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.EqualFold(s, cs.NamespacePrefix) || strings.EqualFold(s, cs.Name) {
		return true
	}
	for _, syn := range cs.Synonyms {
		if strings.EqualFold(s, syn) {
			return true
		}
	}
	return false
}

// IRI returns the IRI of code within cs, or "" when cs has no IRI prefix.
func (cs *CodeSystem) IRI(code string) string {
	if cs.IRIPrefix == "" {
		return ""
	}
	return cs.IRIPrefix + code
}

// String implements fmt.Stringer.
func (cs *CodeSystem) String() string {
	return fmt.Sprintf("CodeSystem(name=%s, prefix=%s, version=%s)", cs.Name, cs.NamespacePrefix, cs.Version)
}

// ByPrefix returns the first resource matched by s, or nil.
func ByPrefix(s string, resources []*CodeSystem) *CodeSystem {
	for _, cs := range resources {
		if cs != nil && cs.Matches(s) {
			return cs
		}
	}
	return nil
}
