// Package bundle implements the filesystem bundle store: named, immutable
// collections of release artifacts with a YAML manifest recording per-file
// sizes and SHA-256 digests.
//
// A bundle lives under <root>/<name>/ with the layout
//
//	<name>/manifest.yaml
//	<name>/files/<artifact>
//
// Per-platform bundles are uploaded by build jobs and merged into one
// bundle per channel; the merged bundle is what a release manager hands to
// the publication tooling.
package bundle

import (
	"sort"
	"time"

	"sigs.k8s.io/yaml"
)

const (
	// ManifestFile is the manifest file name inside a bundle directory.
	ManifestFile = "manifest.yaml"

	// filesDir holds the artifact payload inside a bundle directory.
	filesDir = "files"
)

// FileEntry records one artifact stored in a bundle.
type FileEntry struct {
	// Path is the file name relative to the bundle's files directory.
	Path string `json:"path" yaml:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// SHA256 is the hex-encoded digest of the file content.
	SHA256 string `json:"sha256" yaml:"sha256"`
}

// Manifest describes one stored bundle.
type Manifest struct {
	// Name is the bundle name, e.g. "pypi-release-candidate-macos-14".
	Name string `json:"name" yaml:"name"`

	// Channel is the publication channel the bundle belongs to.
	Channel string `json:"channel" yaml:"channel"`

	// Version is the release version, e.g. "0.8.0".
	Version string `json:"version" yaml:"version"`

	// RC is the release-candidate number as validated, e.g. "2".
	RC string `json:"rc" yaml:"rc"`

	// Platform is the platform label that produced the bundle. Empty for
	// merged bundles.
	Platform string `json:"platform,omitempty" yaml:"platform,omitempty"`

	// RunID identifies the pipeline run that produced the bundle.
	RunID string `json:"runId,omitempty" yaml:"runId,omitempty"`

	// CreatedAt is when the bundle was stored.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`

	// MergedFrom lists the source bundle names for a merged bundle.
	MergedFrom []string `json:"mergedFrom,omitempty" yaml:"mergedFrom,omitempty"`

	// Files lists the stored artifacts, sorted by path.
	Files []FileEntry `json:"files" yaml:"files"`
}

// Qualified returns the candidate string the bundle was built for,
// e.g. "0.8.0rc2".
func (m *Manifest) Qualified() string {
	return m.Version + "rc" + m.RC
}

// Merged reports whether the bundle is a merged channel bundle.
func (m *Manifest) Merged() bool {
	return len(m.MergedFrom) > 0
}

// FileNames returns the stored file paths in manifest order.
func (m *Manifest) FileNames() []string {
	names := make([]string, 0, len(m.Files))
	for _, f := range m.Files {
		names = append(names, f.Path)
	}
	return names
}

// FindFile returns the entry for the given path.
func (m *Manifest) FindFile(path string) (FileEntry, bool) {
	for _, f := range m.Files {
		if f.Path == path {
			return f, true
		}
	}
	return FileEntry{}, false
}

// sortFiles orders the file list by path for deterministic manifests.
func sortFiles(files []FileEntry) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
}

// MarshalManifest serializes a manifest to YAML.
func MarshalManifest(m *Manifest) ([]byte, error) {
	return yaml.Marshal(m)
}

// ParseManifest deserializes a manifest from YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
