package version

import (
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MinPoetryVersion is the oldest poetry release the default build and
// version commands are known to work with (`poetry version --short` support).
const MinPoetryVersion = "1.2.0"

// poetryVersionRegex matches poetry version output like "Poetry (version 1.8.3)".
var poetryVersionRegex = regexp.MustCompile(`\d+\.\d+\.\d+(?:[a-zA-Z0-9.+-]*)?`)

// PoetryInfo contains poetry binary version information.
type PoetryInfo struct {
	// Version is the poetry binary version.
	Version string `json:"version"`

	// Path is the path to the poetry binary.
	Path string `json:"path"`

	// Supported indicates the version meets MinPoetryVersion.
	Supported bool `json:"supported"`

	// Found indicates if the poetry binary was found.
	Found bool `json:"found"`

	// Message provides additional information about support.
	Message string `json:"message,omitempty"`
}

// DetectPoetry finds and checks the poetry binary installation.
func DetectPoetry() PoetryInfo {
	path, err := exec.LookPath("poetry")
	if err != nil {
		return PoetryInfo{
			Found:     false,
			Supported: false,
			Message:   "poetry binary not found in PATH",
		}
	}

	ver, err := getPoetryVersion(path)
	if err != nil {
		return PoetryInfo{
			Path:      path,
			Found:     true,
			Supported: false,
			Message:   "failed to get poetry version: " + err.Error(),
		}
	}

	supported := PoetryVersionSupported(MinPoetryVersion, ver)

	return PoetryInfo{
		Version:   ver,
		Path:      path,
		Found:     true,
		Supported: supported,
		Message:   SupportMessage(MinPoetryVersion, ver),
	}
}

// getPoetryVersion executes 'poetry --version' and extracts the version string.
func getPoetryVersion(poetryPath string) (string, error) {
	cmd := exec.Command(poetryPath, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return "", err
	}

	return extractVersion(out.String())
}

// extractVersion extracts the version number from poetry version output.
func extractVersion(output string) (string, error) {
	// Poetry version output formats:
	// Poetry (version 1.8.3)
	// Poetry version 1.1.15

	match := poetryVersionRegex.FindString(output)
	if match == "" {
		lines := strings.Split(output, "\n")
		if len(lines) > 0 {
			match = poetryVersionRegex.FindString(lines[0])
		}
	}

	if match == "" {
		return "", &versionParseError{output: output}
	}

	return match, nil
}

// PoetryVersionSupported reports whether the installed poetry version meets
// the minimum. Unparseable versions count as unsupported.
func PoetryVersionSupported(minVersion, haveVersion string) bool {
	minimum, err := semver.NewVersion(minVersion)
	if err != nil {
		return false
	}
	have, err := semver.NewVersion(haveVersion)
	if err != nil {
		return false
	}
	return !have.LessThan(minimum)
}

// SupportMessage returns a message explaining version support.
func SupportMessage(minVersion, haveVersion string) string {
	if PoetryVersionSupported(minVersion, haveVersion) {
		return "supported"
	}
	if _, err := semver.NewVersion(haveVersion); err != nil {
		return "unsupported - invalid version format"
	}
	return fmt.Sprintf("unsupported - poetry %s or newer required", minVersion)
}

// String returns a human-readable poetry binary info string.
func (p PoetryInfo) String() string {
	if !p.Found {
		return "  Binary Version: not found\n  Binary Path:    -"
	}

	supportStr := "supported"
	if !p.Supported {
		supportStr = p.Message
	}

	return fmt.Sprintf("  Binary Version: %s (%s)\n  Binary Path:    %s",
		p.Version, supportStr, p.Path)
}

// versionParseError indicates failure to parse poetry version output.
type versionParseError struct {
	output string
}

func (e *versionParseError) Error() string {
	return "failed to parse poetry version from output: " + e.output
}
