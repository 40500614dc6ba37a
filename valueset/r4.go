package valueset

import (
	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/phenomapper/terminology"
)

// ToR4 exports the terminology elements of vs as an R4 ValueSet compose.
// Code systems become whole-system includes and codings are grouped per
// system; literal and kind elements have no R4 counterpart and are left
// out.
func ToR4(vs ValueSet, url string) *r4.ValueSet {
	out := &r4.ValueSet{}
	if url != "" {
		out.Url = &url
	}
	if vs.Name != "" {
		name := vs.Name
		out.Name = &name
	}

	compose := &r4.ValueSetCompose{}
	index := make(map[string]int)
	include := func(system string) *r4.ValueSetComposeInclude {
		if i, ok := index[system]; ok {
			return &compose.Include[i]
		}
		s := system
		compose.Include = append(compose.Include, r4.ValueSetComposeInclude{System: &s})
		index[system] = len(compose.Include) - 1
		return &compose.Include[len(compose.Include)-1]
	}

	for _, e := range vs.elements {
		switch el := e.(type) {
		case *terminology.CodeSystem:
			include(systemURI(el))
		case terminology.Coding:
			addConcept(include, el)
		case terminology.CodeableConcept:
			for _, c := range el.Coding {
				addConcept(include, c)
			}
		}
	}
	if len(compose.Include) > 0 {
		out.Compose = compose
	}
	return out
}

func addConcept(include func(string) *r4.ValueSetComposeInclude, c terminology.Coding) {
	system := c.Namespace
	if c.System != nil {
		system = systemURI(c.System)
	}
	inc := include(system)
	concept := r4.ValueSetComposeIncludeConcept{}
	code := c.Code
	concept.Code = &code
	if c.Display != "" {
		display := c.Display
		concept.Display = &display
	}
	inc.Concept = append(inc.Concept, concept)
}

func systemURI(cs *terminology.CodeSystem) string {
	if cs.URL != "" {
		return cs.URL
	}
	return cs.NamespacePrefix
}

// FromR4 imports an R4 ValueSet. Includes without concepts become code
// system elements, listed concepts and expansion entries become codings.
// Systems are resolved against resources by URL or prefix; includes of
// an unknown system without concepts are skipped.
func FromR4(vs *r4.ValueSet, resources []*terminology.CodeSystem) ValueSet {
	out := ValueSet{}
	if vs == nil {
		return out
	}
	if vs.Name != nil {
		out.Name = *vs.Name
	}

	if vs.Compose != nil {
		for i := range vs.Compose.Include {
			inc := &vs.Compose.Include[i]
			if len(inc.Concept) == 0 {
				c := terminology.FromR4Coding(r4.Coding{System: inc.System}, resources)
				if c.System != nil {
					out.elements = append(out.elements, c.System)
				}
				continue
			}
			for j := range inc.Concept {
				concept := &inc.Concept[j]
				out.elements = append(out.elements, terminology.FromR4Coding(r4.Coding{
					System:  inc.System,
					Code:    concept.Code,
					Display: concept.Display,
				}, resources))
			}
		}
	}

	if vs.Expansion != nil {
		var walk func([]r4.ValueSetExpansionContains)
		walk = func(contains []r4.ValueSetExpansionContains) {
			for i := range contains {
				entry := &contains[i]
				if entry.Code != nil {
					out.elements = append(out.elements, terminology.FromR4Coding(r4.Coding{
						System:  entry.System,
						Code:    entry.Code,
						Display: entry.Display,
					}, resources))
				}
				walk(entry.Contains)
			}
		}
		walk(vs.Expansion.Contains)
	}

	out.elements = dedup(out.elements)
	return out
}
