package terminology

import (
	"errors"
	"testing"

	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
)

func init() {
	logger.Disable()
}

func TestParseCoding(t *testing.T) {
	resources := []*CodeSystem{HPO, OMIM, HGVS}
	tests := []struct {
		in         string
		wantSystem *CodeSystem
		wantCode   string
	}{
		{"HP:0001250", HPO, "0001250"},
		{"hpo:0001250", HPO, "0001250"},
		{" OMIM : 100100 ", OMIM, "100100"},
		{"HGVS:NC_000023.11:g.32325690G>A", HGVS, "NC_000023.11:g.32325690G>A"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCoding(tt.in, resources, compliance.Strict)
			if err != nil {
				t.Fatalf("ParseCoding(%q) error: %v", tt.in, err)
			}
			if c.System != tt.wantSystem || c.Code != tt.wantCode {
				t.Errorf("ParseCoding(%q) = %v:%q; want %v:%q", tt.in, c.System, c.Code, tt.wantSystem, tt.wantCode)
			}
		})
	}
}

func TestParseCodingUnknownPrefix(t *testing.T) {
	resources := []*CodeSystem{HPO}

	c, err := ParseCoding("UNKNOWN:123", resources, compliance.Lenient)
	if err != nil {
		t.Fatalf("lenient ParseCoding error: %v", err)
	}
	if c.Resolved() || c.Namespace != "UNKNOWN" || c.Code != "123" {
		t.Errorf("lenient ParseCoding = %+v; want unresolved UNKNOWN:123", c)
	}

	_, err = ParseCoding("UNKNOWN:123", resources, compliance.Strict)
	if !errors.Is(err, issue.ErrUnresolvedCodeSystem) {
		t.Errorf("strict ParseCoding error = %v; want unresolved-code-system", err)
	}
}

func TestParseCodingAlwaysFatal(t *testing.T) {
	for _, level := range []compliance.Level{compliance.Lenient, compliance.Strict} {
		if _, err := ParseCoding("HP0001250", []*CodeSystem{HPO}, level); !errors.Is(err, issue.ErrMalformedCoding) {
			t.Errorf("%s: missing colon error = %v; want malformed-coding", level, err)
		}
		if _, err := ParseCoding("HP:0001250", nil, level); !errors.Is(err, issue.ErrMalformedCoding) {
			t.Errorf("%s: empty resources error = %v; want malformed-coding", level, err)
		}
	}
}

func TestCodingEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Coding
		want bool
	}{
		{"same", Coding{System: HPO, Code: "1"}, Coding{System: HPO, Code: "1", Display: "x"}, true},
		{"synonym system", Coding{System: HPO, Code: "1"}, Coding{System: NewCodeSystem("alias", "HPO", ""), Code: "1"}, true},
		{"different code", Coding{System: HPO, Code: "1"}, Coding{System: HPO, Code: "2"}, false},
		{"unresolved same ns", Coding{Namespace: "X", Code: "1"}, Coding{Namespace: "X", Code: "1"}, true},
		{"resolved vs unresolved", Coding{System: HPO, Code: "1"}, Coding{Namespace: "HP", Code: "1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestCodeableConceptEqual(t *testing.T) {
	a := CodeableConcept{Coding: []Coding{{System: HPO, Code: "1"}}, Text: "seizure"}
	b := CodeableConcept{Coding: []Coding{{System: HPO, Code: "1"}}, Text: "seizure"}
	if !a.Equal(b) {
		t.Error("identical concepts should be equal")
	}
	b.Text = "fit"
	if a.Equal(b) {
		t.Error("concepts with different text should differ")
	}
}
