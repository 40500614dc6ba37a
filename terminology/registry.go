package terminology

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/phenomapper/pkg/issue"
)

// Registry holds the code systems known to a run together with optional
// concept tables, so codings can be checked and described offline.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	systems  []*CodeSystem
	concepts map[*CodeSystem]*conceptTable
}

// conceptTable holds the concepts of one code system.
type conceptTable struct {
	codes    map[string]string   // code -> display
	children map[string][]string // code -> child codes
}

// NewRegistry creates a registry of the given code systems.
func NewRegistry(systems ...*CodeSystem) *Registry {
	r := &Registry{concepts: make(map[*CodeSystem]*conceptTable)}
	for _, cs := range systems {
		r.Register(cs)
	}
	return r
}

// NewBuiltinRegistry creates a registry of the built-in code systems.
func NewBuiltinRegistry() *Registry {
	return NewRegistry(Builtin()...)
}

// Register adds cs unless an equal code system is already registered, and
// returns the registered instance.
func (r *Registry) Register(cs *CodeSystem) *CodeSystem {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.systems {
		if existing.Equal(cs) {
			return existing
		}
	}
	r.systems = append(r.systems, cs)
	return cs
}

// Systems returns the registered code systems in registration order.
func (r *Registry) Systems() []*CodeSystem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*CodeSystem, len(r.systems))
	copy(out, r.systems)
	return out
}

// ByPrefix resolves s by prefix, name or synonym.
func (r *Registry) ByPrefix(s string) *CodeSystem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ByPrefix(s, r.systems)
}

// byURL returns the registered system with the given URL, or nil.
func (r *Registry) byURL(url string) *CodeSystem {
	norm := strings.TrimSuffix(strings.ToLower(url), "/")
	for _, cs := range r.systems {
		if cs.URL != "" && strings.TrimSuffix(strings.ToLower(cs.URL), "/") == norm {
			return cs
		}
	}
	return nil
}

// LoadR4CodeSystem loads the concepts of an R4 CodeSystem resource. The
// resource is attached to the registered system with the same URL; an
// unknown URL registers a new system whose prefix is the last path
// segment of the URL.
func (r *Registry) LoadR4CodeSystem(cs *r4.CodeSystem) (*CodeSystem, error) {
	if cs == nil || cs.Url == nil || *cs.Url == "" {
		return nil, fmt.Errorf("codesystem is nil or has no URL")
	}
	url := *cs.Url

	r.mu.Lock()
	target := r.byURL(url)
	if target == nil {
		target = NewCodeSystem(url, lastSegment(url), url)
		r.systems = append(r.systems, target)
	}
	table := &conceptTable{
		codes:    make(map[string]string),
		children: make(map[string][]string),
	}
	extractConcepts(cs.Concept, "", table)
	r.concepts[target] = table
	r.mu.Unlock()

	return target, nil
}

func lastSegment(url string) string {
	url = strings.TrimSuffix(url, "/")
	if i := strings.LastIndexAny(url, "/:#"); i >= 0 {
		return url[i+1:]
	}
	return url
}

// extractConcepts recursively flattens nested concepts into table.
func extractConcepts(concepts []r4.CodeSystemConcept, parent string, table *conceptTable) {
	for i := range concepts {
		concept := &concepts[i]
		if concept.Code == nil {
			continue
		}
		code := *concept.Code
		display := ""
		if concept.Display != nil {
			display = *concept.Display
		}
		table.codes[code] = display
		if parent != "" {
			table.children[parent] = append(table.children[parent], code)
		}
		if len(concept.Concept) > 0 {
			extractConcepts(concept.Concept, code, table)
		}
	}
}

// tableFor returns the concept table of the system c belongs to.
func (r *Registry) tableFor(c Coding) (*CodeSystem, *conceptTable) {
	for _, cs := range r.systems {
		if cs.Contains(c) {
			return cs, r.concepts[cs]
		}
	}
	return nil, nil
}

// HasConcepts reports whether concepts have been loaded for cs.
func (r *Registry) HasConcepts(cs *CodeSystem) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for sys, t := range r.concepts {
		if sys.Equal(cs) && t != nil {
			return true
		}
	}
	return false
}

// Lookup returns the display of c's code. The boolean is false when the
// code is not in a loaded concept table. Codings of systems without a
// concept table are never found.
func (r *Registry) Lookup(c Coding) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, table := r.tableFor(c)
	if table == nil {
		return "", false
	}
	display, ok := table.codes[c.Code]
	return display, ok
}

// Describe resolves c against the registry and fills its display from the
// concept table when it has none. It fails with value-not-in-value-set
// when the system has a concept table that lacks the code.
func (r *Registry) Describe(c Coding) (Coding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cs, table := r.tableFor(c)
	if cs == nil {
		return c, issue.Errorf(issue.CodeUnresolvedCodeSystem, "code system %q is not registered", c.Prefix())
	}
	c.System = cs
	if table == nil {
		return c, nil
	}
	display, ok := table.codes[c.Code]
	if !ok {
		return c, issue.Errorf(issue.CodeNotInValueSet, "code %q not found in code system %s", c.Code, cs.NamespacePrefix)
	}
	if c.Display == "" {
		c.Display = display
	}
	return c, nil
}

// Descendants returns all codes below code in the concept hierarchy of cs,
// depth first.
func (r *Registry) Descendants(cs *CodeSystem, code string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table := r.concepts[cs]
	if table == nil {
		return nil
	}
	var out []string
	visited := map[string]bool{code: true}
	var walk func(string)
	walk = func(c string) {
		for _, child := range table.children[c] {
			if visited[child] {
				continue
			}
			visited[child] = true
			out = append(out, child)
			walk(child)
		}
	}
	walk(code)
	return out
}

// CountConcepts returns the number of loaded concepts across all systems.
func (r *Registry) CountConcepts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.concepts {
		n += len(t.codes)
	}
	return n
}
