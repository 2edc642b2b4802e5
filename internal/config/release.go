package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/release"
)

// ReleaseFileName is the project-local release file read from the project
// root.
const ReleaseFileName = ".stagehand.yaml"

// DefaultProject is the project name used when no release file declares
// one.
const DefaultProject = "pyiceberg"

// DefaultPlatforms is the platform matrix used when a release file does not
// declare its own.
var DefaultPlatforms = []string{
	"ubuntu-22.04",
	"windows-2022",
	"macos-13",
	"macos-14",
	"macos-15",
}

// BuildConfig holds the build command templates for one project.
type BuildConfig struct {
	// Command produces the artifacts into Dist. Placeholders: {project},
	// {version}, {rc}, {package_version}, {platform}, {channel}.
	Command string `yaml:"command,omitempty"`

	// VersionCommand stages the package version before a package-index
	// build. It is skipped for the source-control channel, which ships the
	// plain repository version.
	VersionCommand string `yaml:"versionCommand,omitempty"`

	// Dist is the directory the build command writes artifacts to,
	// relative to the project root.
	Dist string `yaml:"dist,omitempty"`
}

// SmokeConfig holds the smoke-test command template.
type SmokeConfig struct {
	// Command is run once per binary artifact; {artifact} expands to the
	// artifact path.
	Command string `yaml:"command,omitempty"`
}

// Release describes how one project is validated, built, and bundled.
// It is loaded from .stagehand.yaml in the project root.
type Release struct {
	// Project is the tag prefix and package name, e.g. "pyiceberg".
	Project string `yaml:"project"`

	// Channels lists the publication channels to build for.
	Channels []string `yaml:"channels,omitempty"`

	// Platforms lists the target platform labels.
	Platforms []string `yaml:"platforms,omitempty"`

	// SourcePlatform is the one platform that also produces the source
	// archive.
	SourcePlatform string `yaml:"sourcePlatform,omitempty"`

	// BundleDir overrides the bundle store root for this project.
	BundleDir string `yaml:"bundleDir,omitempty"`

	// Build holds the build command templates.
	Build BuildConfig `yaml:"build,omitempty"`

	// Smoke holds the smoke-test command template.
	Smoke SmokeConfig `yaml:"smoke,omitempty"`
}

// DefaultRelease returns a Release for the given project with all default
// values populated. Used by `stagehand init`.
func DefaultRelease(project string) *Release {
	return (&Release{Project: project}).WithDefaults()
}

// WithDefaults returns a copy of the release with defaults filled in for
// unset values.
func (r *Release) WithDefaults() *Release {
	out := *r
	if len(out.Channels) == 0 {
		out.Channels = []string{string(release.ChannelSVN), string(release.ChannelPyPI)}
	}
	if len(out.Platforms) == 0 {
		out.Platforms = append([]string(nil), DefaultPlatforms...)
	}
	if out.SourcePlatform == "" {
		out.SourcePlatform = out.Platforms[0]
	}
	if out.Build.Command == "" {
		out.Build.Command = "poetry build"
	}
	if out.Build.VersionCommand == "" {
		out.Build.VersionCommand = "poetry version {package_version}"
	}
	if out.Build.Dist == "" {
		out.Build.Dist = "dist"
	}
	if out.Smoke.Command == "" {
		out.Smoke.Command = "python -m pip install --force-reinstall {artifact}"
	}
	return &out
}

// ValidationError represents a release file validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("release file validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Unwrap marks the collection as a validation failure for exit-code mapping.
func (e ValidationErrors) Unwrap() error {
	return serrors.ErrValidation
}

// Validate checks the release for structural problems. Call after
// WithDefaults.
func (r *Release) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(r.Project) == "" {
		errs = append(errs, ValidationError{
			Field:   "project",
			Message: "must name the project used as the release tag prefix",
		})
	}

	seenChannels := make(map[string]bool)
	for _, ch := range r.Channels {
		if _, err := release.ParseChannel(ch); err != nil {
			errs = append(errs, ValidationError{
				Field:   "channels",
				Message: fmt.Sprintf("unknown channel %q (valid: svn, pypi)", ch),
			})
			continue
		}
		if seenChannels[ch] {
			errs = append(errs, ValidationError{
				Field:   "channels",
				Message: fmt.Sprintf("channel %q listed twice", ch),
			})
		}
		seenChannels[ch] = true
	}

	seenPlatforms := make(map[string]bool)
	for _, p := range r.Platforms {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, ValidationError{
				Field:   "platforms",
				Message: "platform labels must not be empty",
			})
			continue
		}
		if seenPlatforms[p] {
			errs = append(errs, ValidationError{
				Field:   "platforms",
				Message: fmt.Sprintf("platform %q listed twice", p),
			})
		}
		seenPlatforms[p] = true
	}

	if r.SourcePlatform != "" && !seenPlatforms[r.SourcePlatform] {
		errs = append(errs, ValidationError{
			Field:   "sourcePlatform",
			Message: fmt.Sprintf("%q is not in the platform list", r.SourcePlatform),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ChannelList returns the channels as typed values. Call after Validate.
func (r *Release) ChannelList() []release.Channel {
	out := make([]release.Channel, 0, len(r.Channels))
	for _, ch := range r.Channels {
		out = append(out, release.Channel(ch))
	}
	return out
}

// HasPlatform reports whether the platform label is in the matrix.
func (r *Release) HasPlatform(platform string) bool {
	for _, p := range r.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// ReleaseFilePath returns the release file path for a project directory.
func ReleaseFilePath(dir string) string {
	return filepath.Join(dir, ReleaseFileName)
}

// LoadRelease reads, defaults, and validates the release file in dir.
func LoadRelease(dir string) (*Release, error) {
	path := ReleaseFilePath(dir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serrors.NewNotFoundError(
				"release file not found",
				path,
				"Run `stagehand init` to create one",
			)
		}
		return nil, fmt.Errorf("reading release file: %w", err)
	}

	rel, err := ParseRelease(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return rel, nil
}

// ParseRelease parses release file content, applies defaults, and validates.
// Unknown keys are rejected so typos fail loudly.
func ParseRelease(data []byte) (*Release, error) {
	var rel Release

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rel); err != nil && !errors.Is(err, io.EOF) {
		return nil, serrors.Wrap(serrors.ErrValidation, "parsing release file: "+err.Error())
	}

	out := rel.WithDefaults()
	if err := out.Validate(); err != nil {
		return nil, err
	}

	return out, nil
}

// releaseFileHeader is written above the YAML body by WriteRelease.
const releaseFileHeader = `# stagehand release configuration.
# Tags of the form <project>-<version>rc<n> drive the release pipeline.
`

// WriteRelease writes the release file for a project directory. An existing
// file is only replaced when force is set.
func WriteRelease(dir string, rel *Release, force bool) (string, error) {
	path := ReleaseFilePath(dir)

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	body, err := yaml.Marshal(rel)
	if err != nil {
		return "", fmt.Errorf("marshaling release file: %w", err)
	}

	content := append([]byte(releaseFileHeader), body...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing release file: %w", err)
	}

	return path, nil
}
