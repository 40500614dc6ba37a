package model

import (
	"fmt"

	"github.com/gofhir/phenomapper/pkg/date"
	"github.com/gofhir/phenomapper/terminology"
)

// recordValue converts a parsed value into a JSON friendly form.
func recordValue(v any) any {
	switch x := v.(type) {
	case date.Date:
		return x.ISO8601String()
	case terminology.Coding:
		m := map[string]any{"code": x.Code}
		if x.System != nil {
			m["system"] = x.System.URL
			m["prefix"] = x.System.NamespacePrefix
		} else {
			m["prefix"] = x.Namespace
		}
		if x.Display != "" {
			m["display"] = x.Display
		}
		return m
	case terminology.CodeableConcept:
		codings := make([]any, len(x.Coding))
		for i, c := range x.Coding {
			codings[i] = recordValue(c)
		}
		m := map[string]any{"coding": codings}
		if x.Text != "" {
			m["text"] = x.Text
		}
		return m
	case *terminology.CodeSystem:
		return x.NamespacePrefix
	default:
		return v
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
