package model

import (
	"go/token"
	"regexp"
	"strings"

	"github.com/gofhir/phenomapper/pkg/issue"
)

var (
	idPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	nonWord   = regexp.MustCompile(`[^a-z0-9_]+`)
	underRuns = regexp.MustCompile(`_{2,}`)
)

// DeriveID turns a field name into a usable identifier: lowercased, runs of
// other characters replaced by a single underscore, a leading digit
// prefixed with an underscore, and Go keywords suffixed with one.
func DeriveID(name string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(name))
	id = nonWord.ReplaceAllString(id, "_")
	id = underRuns.ReplaceAllString(id, "_")
	id = strings.Trim(id, "_")
	if id == "" {
		return "", issue.Errorf(issue.CodeInvalidIdentifier, "cannot derive an identifier from name %q", name)
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	if token.IsKeyword(id) {
		id += "_"
	}
	return id, nil
}

// ValidateID checks an explicitly given identifier.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return issue.Errorf(issue.CodeInvalidIdentifier,
			"identifier %q must start with a lowercase letter or underscore and contain only lowercase letters, digits and underscores", id)
	}
	if token.IsKeyword(id) {
		return issue.Errorf(issue.CodeInvalidIdentifier, "identifier %q is a reserved keyword", id)
	}
	return nil
}
