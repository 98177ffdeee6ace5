// Package version provides build-time version information for dpetools.
// Variables are injected at build time via ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a formatted version string suitable for the version command.
func Info() string {
	return fmt.Sprintf("dpetools %s (commit: %s, built: %s, go: %s)",
		Version, GitCommit, BuildDate, runtime.Version())
}

// UserAgent returns the User-Agent sent with every request.
func UserAgent() string {
	return "dpetools/" + Version
}
