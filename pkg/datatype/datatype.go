package datatype

import (
	"fmt"
	"strings"

	"github.com/gofhir/phenomapper/pkg/compliance"
	"github.com/gofhir/phenomapper/pkg/date"
	"github.com/gofhir/phenomapper/pkg/issue"
	"github.com/gofhir/phenomapper/pkg/logger"
	"github.com/gofhir/phenomapper/pkg/primitive"
	"github.com/gofhir/phenomapper/terminology"
)

// synonyms maps lowercased spellings to kinds.
var synonyms = func() map[string]Kind {
	m := map[string]Kind{
		"str":     KindString,
		"string":  KindString,
		"int":     KindInt,
		"integer": KindInt,
		"float":   KindFloat,
		"double":  KindFloat,
		"bool":    KindBool,
		"boolean": KindBool,
		"date":    KindDate,
	}
	for _, tok := range date.FormatTokens {
		m[tok] = KindDate
	}
	return m
}()

// LookupKind returns the kind spelled by s, ignoring case.
func LookupKind(s string) (Kind, bool) {
	k, ok := synonyms[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

// ParseSingle parses one type declaration into a *terminology.CodeSystem,
// a Kind or, under lenient compliance, the trimmed declaration itself.
// Code system prefixes take precedence over kind spellings.
func ParseSingle(s string, resources []*terminology.CodeSystem, level compliance.Level) (any, error) {
	s = strings.TrimSpace(s)
	if cs := terminology.ByPrefix(s, resources); cs != nil {
		return cs, nil
	}
	if k, ok := LookupKind(s); ok {
		return k, nil
	}

	msg := fmt.Sprintf("no matching data type or resource for %q", s)
	if level.IsStrict() {
		return nil, issue.Errorf(issue.CodeUnrecognizedType, "%s", msg)
	}
	logger.Issue(issue.Issue{
		Severity:    issue.SeverityWarning,
		Code:        issue.CodeUnrecognizedType,
		Diagnostics: msg + "; if it refers to a resource, add it to the resources",
		Row:         -1,
	})
	return s, nil
}

// Parse parses a comma separated list of type declarations. Blank input
// yields a single KindAny.
func Parse(s string, resources []*terminology.CodeSystem, level compliance.Level) ([]any, error) {
	if strings.TrimSpace(s) == "" {
		return []any{KindAny}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		v, err := ParseSingle(p, resources, level)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseValue parses a literal into a date.Date, a terminology.Coding or a
// primitive, trying them in that order. Day and month that cannot be told
// apart are read day first.
func ParseValue(s string, resources []*terminology.CodeSystem) (any, error) {
	return ParseValueOrder(s, resources, date.DayFirst)
}

// ParseValueOrder is ParseValue with an explicit day/month order.
//
// Dates and codings are parsed strictly so that they do not degrade to
// strings before the primitive parser is reached. An ambiguous date is
// still accepted, resolved by first with a warning.
func ParseValueOrder(s string, resources []*terminology.CodeSystem, first date.Order) (any, error) {
	s = strings.TrimSpace(s)

	d, ok, err := date.Parse(s, first, compliance.Strict)
	if err != nil && issue.CodeOf(err) == issue.CodeAmbiguousDate {
		d, ok, err = date.Parse(s, first, compliance.Lenient)
	}
	if err == nil && ok {
		return d, nil
	}

	if len(resources) > 0 {
		if c, err := terminology.ParseCoding(s, resources, compliance.Strict); err == nil {
			return c, nil
		}
	}

	return primitive.Parse(s), nil
}
