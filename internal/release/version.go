package release

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	serrors "github.com/stagehand/cli/internal/errors"
)

// versionPattern is the accepted shape for a release version: three
// dot-separated digit groups. No rule beyond digit grouping is enforced,
// so leading zeros pass and are echoed unchanged.
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Version is a validated three-part release version. The input string is
// preserved byte-for-byte for downstream consumers; the parsed tuple is
// only used for numeric accessors and ordering.
type Version struct {
	raw string
	sv  *semver.Version
}

// ParseVersion validates and parses a version string.
func ParseVersion(s string) (Version, error) {
	if !versionPattern.MatchString(s) {
		return Version{}, serrors.NewValidationError(
			"version must be three dot-separated numeric parts",
			"version",
			s,
			"Pass MAJOR.MINOR.PATCH, e.g. 0.8.0",
		)
	}

	parts := strings.SplitN(s, ".", 3)
	nums := make([]uint64, 3)
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Version{}, serrors.NewValidationError(
				fmt.Sprintf("version part %q is not a number", p),
				"version",
				s,
				"Pass MAJOR.MINOR.PATCH, e.g. 0.8.0",
			)
		}
		nums[i] = n
	}

	return Version{
		raw: s,
		sv:  semver.New(nums[0], nums[1], nums[2], "", ""),
	}, nil
}

// MustParseVersion parses a version string and panics on failure.
// Intended for constants and tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version exactly as it was supplied.
func (v Version) String() string {
	return v.raw
}

// Major returns the numeric major component.
func (v Version) Major() uint64 {
	return v.sv.Major()
}

// Minor returns the numeric minor component.
func (v Version) Minor() uint64 {
	return v.sv.Minor()
}

// Patch returns the numeric patch component.
func (v Version) Patch() uint64 {
	return v.sv.Patch()
}

// Compare orders two versions numerically. Versions that differ only in
// leading zeros compare equal even though their strings differ.
func (v Version) Compare(o Version) int {
	return v.sv.Compare(o.sv)
}

// IsZero reports whether the version is the unparsed zero value.
func (v Version) IsZero() bool {
	return v.sv == nil
}
