package release

import "fmt"

// MergedBundleName returns the deterministic name of the final per-channel
// bundle for a candidate, e.g. "svn-release-candidate-0.8.0rc2".
func MergedBundleName(ch Channel, c Candidate) string {
	return fmt.Sprintf("%s-release-candidate-%s", ch, c.Qualified())
}

// PlatformBundleName returns the name of the intermediate bundle one
// platform uploads for a channel, e.g. "pypi-release-candidate-macos-14".
// Intermediates are deleted once merged.
func PlatformBundleName(ch Channel, platform string) string {
	return fmt.Sprintf("%s-release-candidate-%s", ch, platform)
}
