package model

import "testing"

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		in      string
		ordinal string
		rest    string
	}{
		{"1.1. Pseudonym", "1.1", "Pseudonym"},
		{"1. Pseudonym", "1", "Pseudonym"},
		{"1 Pseudonym", "1", "Pseudonym"},
		{"I.a. Pseudonym", "I.a", "Pseudonym"},
		{"I.a Pseudonym", "I.a", "Pseudonym"},
		{"ii. Pseudonym", "ii", "Pseudonym"},
		{"ii Pseudonym", "ii", "Pseudonym"},
		{"3.1. Patient's status", "3.1", "Patient's status"},
		{"Pseudonym", "", "Pseudonym"},
		{"Date of Birth", "", "Date of Birth"},
		{"civil status", "", "civil status"},
		{"  Sex ", "", "Sex"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ordinal, rest := ParseOrdinal(tt.in)
			if ordinal != tt.ordinal || rest != tt.rest {
				t.Errorf("ParseOrdinal(%q) = (%q, %q); want (%q, %q)", tt.in, ordinal, rest, tt.ordinal, tt.rest)
			}
		})
	}
}
