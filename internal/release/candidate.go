// Package release defines the validated release vocabulary: versions,
// release candidates, publication channels, and bundle naming. Every
// downstream stage consumes the values validated here; nothing recomputes
// them.
package release

import (
	"regexp"
	"strconv"
	"strings"

	serrors "github.com/stagehand/cli/internal/errors"
)

// rcPattern is the accepted shape for a release-candidate ordinal.
var rcPattern = regexp.MustCompile(`^\d+$`)

// rcMarker separates the version part from the rc part in a release tag.
const rcMarker = "rc"

// Candidate is the validated (version, release candidate) pair for one run.
// It is produced exactly once per run and passed by value to every stage.
type Candidate struct {
	Version Version
	RC      string
}

// NewCandidate validates an explicit version and rc input pair. Both inputs
// are echoed unchanged on success.
func NewCandidate(version, rc string) (Candidate, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return Candidate{}, err
	}

	if !rcPattern.MatchString(rc) {
		return Candidate{}, serrors.NewValidationError(
			"rc must be one or more digits",
			"rc",
			rc,
			"Pass the candidate ordinal as digits, e.g. 2",
		)
	}

	return Candidate{Version: v, RC: rc}, nil
}

// ParseTag parses a release tag of the form <project>-<version>rc<n>.
// The project prefix is stripped first, then the remainder is split on the
// first occurrence of the rc marker. A missing prefix, a missing marker, or
// an empty part on either side of the marker is a parse failure; a part
// with the wrong shape is a validation failure.
func ParseTag(tag, project string) (Candidate, error) {
	prefix := project + "-"
	if !strings.HasPrefix(tag, prefix) {
		return Candidate{}, serrors.NewParseError(
			"tag does not start with the project prefix "+strconv.Quote(prefix),
			tag,
			"Tag releases as <project>-<version>rc<n>, e.g. "+project+"-0.8.0rc1",
		)
	}

	rest := strings.TrimPrefix(tag, prefix)
	versionPart, rcPart, found := strings.Cut(rest, rcMarker)
	if !found {
		return Candidate{}, serrors.NewParseError(
			"tag has no release-candidate marker after the project prefix",
			tag,
			"Tag releases as <project>-<version>rc<n>, e.g. "+project+"-0.8.0rc1",
		)
	}
	if versionPart == "" {
		return Candidate{}, serrors.NewParseError(
			"tag has an empty version part before the rc marker",
			tag,
			"Tag releases as <project>-<version>rc<n>, e.g. "+project+"-0.8.0rc1",
		)
	}
	if rcPart == "" {
		return Candidate{}, serrors.NewParseError(
			"tag has an empty rc part after the rc marker",
			tag,
			"Tag releases as <project>-<version>rc<n>, e.g. "+project+"-0.8.0rc1",
		)
	}

	return NewCandidate(versionPart, rcPart)
}

// Qualified returns the rc-qualified version string, e.g. "0.8.0rc2".
// This is the package version for the package-index channel and the suffix
// of every merged bundle name.
func (c Candidate) Qualified() string {
	return c.Version.String() + rcMarker + c.RC
}

// Tag returns the release tag for the candidate under the given project
// prefix, e.g. "pyiceberg-0.8.0rc2".
func (c Candidate) Tag(project string) string {
	return project + "-" + c.Qualified()
}

// RCNumber returns the rc ordinal as a number. The rc string is validated
// as digits on construction, so this cannot fail on a constructed value.
func (c Candidate) RCNumber() uint64 {
	n, _ := strconv.ParseUint(c.RC, 10, 64)
	return n
}

// Compare orders candidates by version, then by rc ordinal.
func (c Candidate) Compare(o Candidate) int {
	if cmp := c.Version.Compare(o.Version); cmp != 0 {
		return cmp
	}
	switch a, b := c.RCNumber(), o.RCNumber(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
