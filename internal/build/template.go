package build

import (
	"strings"

	serrors "github.com/stagehand/cli/internal/errors"
)

// Vars holds the placeholder values available to command templates.
type Vars struct {
	// Project is the package name, e.g. "pyiceberg".
	Project string

	// Version is the plain release version, e.g. "0.8.0".
	Version string

	// RC is the release candidate number, e.g. "2".
	RC string

	// PackageVersion is the version the channel builds with, either the
	// plain version or the RC-qualified one.
	PackageVersion string

	// Platform is the target platform label, e.g. "macos-14".
	Platform string

	// Channel is the publication channel, e.g. "pypi".
	Channel string

	// Artifact is the path of the artifact under test. Only set for
	// smoke-test commands.
	Artifact string
}

// Expand replaces every {placeholder} token in the template with its value.
// Unknown tokens are left as written.
func (v Vars) Expand(template string) string {
	r := strings.NewReplacer(
		"{project}", v.Project,
		"{version}", v.Version,
		"{rc}", v.RC,
		"{package_version}", v.PackageVersion,
		"{platform}", v.Platform,
		"{channel}", v.Channel,
		"{artifact}", v.Artifact,
	)
	return r.Replace(template)
}

// SplitCommand splits an expanded command template into argv on whitespace.
// Templates carry no quoting, so arguments containing spaces are not
// expressible.
func SplitCommand(s string) ([]string, error) {
	argv := strings.Fields(s)
	if len(argv) == 0 {
		return nil, serrors.NewBuildError(
			"command template is empty",
			nil,
			"Set build.command in .stagehand.yaml",
		)
	}
	return argv, nil
}
