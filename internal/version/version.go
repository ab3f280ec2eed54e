package version

import "fmt"

// Stamped at build time with -ldflags "-X .../internal/version.Version=...".
var (
	// Version is the release of the detector pipeline.
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String is the build identity recorded with every stored detection run.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitSHA, BuildTime)
}
