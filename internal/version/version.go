// Package version provides build-time version information.
package version

import "fmt"

// These variables are set at build time using -ldflags
var (
	// Version is the semantic version
	Version = "0.3.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// String returns "sprite-slicer <version> (<commit>, built <time>)".
func String() string {
	return fmt.Sprintf("sprite-slicer %s (%s, built %s)", Version, GitCommit, BuildTime)
}
