package valueset

import (
	"strings"

	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/datatype"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
	"github.com/gofhir/phenomapper/terminology"
)

// Parse parses a comma separated value set declaration such as
// "hp, str, dd-mm-yyyy" or "alive, dead, lost in follow-up".
//
// Each token is first read as a type declaration, with strict inner
// compliance, and otherwise as a literal value. Empty tokens are skipped.
// A blank declaration is an error under strict compliance and admits
// every value under lenient compliance.
func Parse(s, name, description string, resources []*terminology.CodeSystem, level compliance.Level) (ValueSet, error) {
	if strings.TrimSpace(s) == "" {
		if level.IsStrict() {
			return ValueSet{}, issue.Errorf(issue.CodeEmptyValueSet, "value set %q is empty", name)
		}
		logger.Debug("value set %q is empty, admitting any value", name)
		return New(name, description, datatype.KindAny), nil
	}

	var elements []any
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if el, err := datatype.ParseSingle(tok, resources, compliance.Strict); err == nil {
			elements = append(elements, el)
			continue
		}
		el, err := datatype.ParseValue(tok, resources)
		if err != nil {
			return ValueSet{}, err
		}
		elements = append(elements, el)
	}
	return New(name, description, elements...), nil
}
