package phenomapper

import "runtime/debug"

// Version is the release of the module. It is overridden at link time
// with -ldflags "-X github.com/gofhir/phenomapper.Version=...".
var Version = "dev"

// BuildVersion returns Version, or the module version recorded in the
// binary when Version was not set.
func BuildVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
