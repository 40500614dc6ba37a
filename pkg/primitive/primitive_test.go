package primitive

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"12", 12},
		{" 12 ", 12},
		{"-7", -7},
		{"1.5", 1.5},
		{"1e3", 1000.0},
		{"True", true},
		{"t", true},
		{"FALSE", false},
		{"f", false},
		{"0", 0},
		{"1", 1},
		{"1 2", "1 2"},
		{"  hello ", "hello"},
		{"nan", "nan"},
		{"Inf", "Inf"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Parse(tt.in)
			if got != tt.want {
				t.Errorf("Parse(%q) = %#v; want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	if v, ok := ParseInt("42"); !ok || v != 42 {
		t.Errorf("ParseInt(42) = %d, %v; want 42, true", v, ok)
	}
	for _, in := range []string{"", "4.2", "abc", "1_000"} {
		if _, ok := ParseInt(in); ok {
			t.Errorf("ParseInt(%q) should fail", in)
		}
	}
}

func TestParseFloat(t *testing.T) {
	if v, ok := ParseFloat("0.25"); !ok || v != 0.25 {
		t.Errorf("ParseFloat(0.25) = %v, %v; want 0.25, true", v, ok)
	}
	for _, in := range []string{"", "NaN", "-inf", "1,5"} {
		if _, ok := ParseFloat(in); ok {
			t.Errorf("ParseFloat(%q) should fail", in)
		}
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in     string
		want   bool
		wantOK bool
	}{
		{"true", true, true},
		{"T", true, true},
		{"false", false, true},
		{"F", false, true},
		{"yes", false, false},
		{"1", false, false},
		{"0", false, false},
	}
	for _, tt := range tests {
		got, ok := ParseBool(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseBool(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
