package phenomapper

import "testing"

func TestBuildVersion(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "1.2.3"
	if got := BuildVersion(); got != "1.2.3" {
		t.Errorf("BuildVersion() = %q; want 1.2.3", got)
	}
	Version = "dev"
	if got := BuildVersion(); got == "" {
		t.Error("BuildVersion() should never be empty")
	}
}
