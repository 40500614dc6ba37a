package model

import (
	"errors"
	"testing"

	"github.com/gofhir/phenomapper/pkg/issue"
)

func TestDeriveID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Pseudonym", "pseudonym"},
		{"Date of Birth", "date_of_birth"},
		{"%^&#12pseudonym!2", "_12pseudonym_2"},
		{"  Age  at   onset ", "age_at_onset"},
		{"Patient's status", "patient_s_status"},
		{"type", "type_"},
		{"Func", "func_"},
		{"1st visit", "_1st_visit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveID(tt.name)
			if err != nil {
				t.Fatalf("DeriveID(%q) error: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("DeriveID(%q) = %q; want %q", tt.name, got, tt.want)
			}
			if err := ValidateID(got); err != nil {
				t.Errorf("ValidateID(%q) error: %v", got, err)
			}
		})
	}
}

func TestDeriveIDEmpty(t *testing.T) {
	for _, name := range []string{"", "   ", "!!!"} {
		if _, err := DeriveID(name); !errors.Is(err, issue.ErrInvalidIdentifier) {
			t.Errorf("DeriveID(%q) error = %v; want invalid-identifier", name, err)
		}
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"pseudonym", true},
		{"_12pseudonym_2", true},
		{"date_of_birth", true},
		{"12pseudonym", false},
		{"Pseudonym", false},
		{"date of birth", false},
		{"range", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.valid && err != nil {
				t.Errorf("ValidateID(%q) error: %v", tt.id, err)
			}
			if !tt.valid && !errors.Is(err, issue.ErrInvalidIdentifier) {
				t.Errorf("ValidateID(%q) error = %v; want invalid-identifier", tt.id, err)
			}
		})
	}
}
