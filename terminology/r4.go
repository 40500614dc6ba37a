package terminology

import (
	"strings"

	"github.com/gofhir/fhir/r4"
)

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToR4Coding converts c to an R4 Coding. The system is the code system URL
// when resolved, otherwise the raw namespace.
func ToR4Coding(c Coding) r4.Coding {
	out := r4.Coding{
		Code:    strPtr(c.Code),
		Display: strPtr(c.Display),
	}
	if c.System != nil {
		out.System = strPtr(c.System.URL)
		if c.System.Version != DefaultVersion {
			out.Version = strPtr(c.System.Version)
		}
	} else {
		out.System = strPtr(c.Namespace)
	}
	return out
}

// ToR4CodeableConcept converts cc to an R4 CodeableConcept.
func ToR4CodeableConcept(cc CodeableConcept) r4.CodeableConcept {
	out := r4.CodeableConcept{Text: strPtr(cc.Text)}
	for _, c := range cc.Coding {
		out.Coding = append(out.Coding, ToR4Coding(c))
	}
	return out
}

// FromR4Coding converts an R4 Coding, resolving its system URL or prefix
// against resources.
func FromR4Coding(c r4.Coding, resources []*CodeSystem) Coding {
	system := deref(c.System)
	out := Coding{
		Namespace: system,
		Code:      deref(c.Code),
		Display:   deref(c.Display),
	}
	norm := strings.TrimSuffix(strings.ToLower(system), "/")
	for _, cs := range resources {
		if cs.URL != "" && strings.TrimSuffix(strings.ToLower(cs.URL), "/") == norm {
			out.System = cs
			break
		}
	}
	if out.System == nil {
		out.System = ByPrefix(system, resources)
	}
	if out.System != nil && c.Version != nil && *c.Version != out.System.Version {
		out.System = out.System.WithVersion(*c.Version)
	}
	return out
}

// FromR4CodeableConcept converts an R4 CodeableConcept.
func FromR4CodeableConcept(cc r4.CodeableConcept, resources []*CodeSystem) CodeableConcept {
	out := CodeableConcept{Text: deref(cc.Text)}
	for _, c := range cc.Coding {
		out.Coding = append(out.Coding, FromR4Coding(c, resources))
	}
	return out
}
