package version

// Version is the current version of the stratbench library.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/stratbench-lab/stratbench/internal/version.Version=0.3.0"
// The default value "main" indicates a development build.
var Version = "v0.3.0"

// GetVersion returns the current version of the library.
func GetVersion() string {
	return Version
}
