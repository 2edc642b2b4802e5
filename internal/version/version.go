// Package version reports the stagehand build identity and checks the
// poetry toolchain the build pipeline shells out to.
package version

import (
	"fmt"
	"runtime"
)

// Stamped at build time via -ldflags; the defaults identify a local
// development build.
var (
	Version   = "v0.0.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info is the build identity of the running binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

// Get returns the build identity, with the Go runtime version filled in.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	return fmt.Sprintf("stagehand:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion)
}
