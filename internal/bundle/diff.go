package bundle

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
)

// DiffResult represents a comparison between two bundles.
type DiffResult struct {
	// HasChanges indicates if there are differences.
	HasChanges bool

	// Added files (in the second bundle, not the first).
	Added []string

	// Removed files (in the first bundle, not the second).
	Removed []string

	// Modified files (present in both with different content) plus the
	// manifest metadata entry when it changed.
	Modified []ModifiedFile
}

// ModifiedFile represents a file with changes.
type ModifiedFile struct {
	// Name is the file name within the bundle.
	Name string

	// Diff is the rendered diff output.
	Diff string
}

// NewDiffResult creates a new empty DiffResult.
func NewDiffResult() *DiffResult {
	return &DiffResult{
		Added:    make([]string, 0),
		Removed:  make([]string, 0),
		Modified: make([]ModifiedFile, 0),
	}
}

// IsEmpty returns true if there are no changes.
func (r *DiffResult) IsEmpty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Modified) == 0
}

// AddAdded records a file present only in the second bundle.
func (r *DiffResult) AddAdded(name string) {
	r.Added = append(r.Added, name)
	r.HasChanges = true
}

// AddRemoved records a file present only in the first bundle.
func (r *DiffResult) AddRemoved(name string) {
	r.Removed = append(r.Removed, name)
	r.HasChanges = true
}

// AddModified records a file with modifications.
func (r *DiffResult) AddModified(name, diff string) {
	r.Modified = append(r.Modified, ModifiedFile{
		Name: name,
		Diff: diff,
	})
	r.HasChanges = true
}

// Summary returns a summary string of changes.
func (r *DiffResult) Summary() string {
	if r.IsEmpty() {
		return "No changes"
	}

	parts := make([]string, 0, 3)
	if len(r.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(r.Added)))
	}
	if len(r.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(r.Removed)))
	}
	if len(r.Modified) > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", len(r.Modified)))
	}

	return strings.Join(parts, ", ")
}

// DiffOptions configures the diff operation.
type DiffOptions struct {
	// UseColor enables colorized diff output for the manifest comparison.
	UseColor bool
}

// manifestEntry names the metadata pseudo-file in diff output.
const manifestEntry = "manifest.yaml"

// Diff compares two stored bundles. Artifact files are compared by digest;
// the manifest metadata is compared with a YAML-aware diff.
func (s *Store) Diff(fromName, toName string, opts DiffOptions) (*DiffResult, error) {
	from, err := s.Get(fromName)
	if err != nil {
		return nil, err
	}
	to, err := s.Get(toName)
	if err != nil {
		return nil, err
	}

	result := NewDiffResult()

	for _, f := range to.Files {
		prev, ok := from.FindFile(f.Path)
		if !ok {
			result.AddAdded(f.Path)
			continue
		}
		if prev.SHA256 != f.SHA256 {
			result.AddModified(f.Path, digestDiff(prev, f))
		}
	}
	for _, f := range from.Files {
		if _, ok := to.FindFile(f.Path); !ok {
			result.AddRemoved(f.Path)
		}
	}

	metaDiff, err := compareManifestYAML(from, to, opts.UseColor)
	if err != nil {
		return nil, fmt.Errorf("comparing manifests: %w", err)
	}
	if metaDiff != "" {
		result.AddModified(manifestEntry, metaDiff)
	}

	return result, nil
}

// digestDiff renders a two-line content change note for a binary artifact.
func digestDiff(from, to FileEntry) string {
	return fmt.Sprintf("from: sha256:%s (%d bytes)\nto:   sha256:%s (%d bytes)",
		from.SHA256, from.Size, to.SHA256, to.Size)
}

// manifestForDiff strips fields that always differ between two bundles
// (name, provenance, the file list handled separately) so the comparison
// surfaces only meaningful metadata changes.
func manifestForDiff(m *Manifest) *Manifest {
	stripped := *m
	stripped.Name = ""
	stripped.RunID = ""
	stripped.CreatedAt = time.Time{}
	stripped.Files = nil
	return &stripped
}

// compareManifestYAML compares two manifests and returns a rendered diff.
// Returns empty string if no differences.
func compareManifestYAML(from, to *Manifest, useColor bool) (string, error) {
	fromYAML, err := MarshalManifest(manifestForDiff(from))
	if err != nil {
		return "", fmt.Errorf("serializing manifest %s: %w", from.Name, err)
	}

	toYAML, err := MarshalManifest(manifestForDiff(to))
	if err != nil {
		return "", fmt.Errorf("serializing manifest %s: %w", to.Name, err)
	}

	fromInput, err := parseYAMLInput(from.Name, fromYAML)
	if err != nil {
		return "", fmt.Errorf("parsing manifest %s: %w", from.Name, err)
	}

	toInput, err := parseYAMLInput(to.Name, toYAML)
	if err != nil {
		return "", fmt.Errorf("parsing manifest %s: %w", to.Name, err)
	}

	report, err := dyff.CompareInputFiles(fromInput, toInput)
	if err != nil {
		return "", fmt.Errorf("comparing YAML: %w", err)
	}

	if len(report.Diffs) == 0 {
		return "", nil
	}

	return renderDyffReport(report, useColor)
}

// parseYAMLInput parses YAML bytes into a dyff input file.
func parseYAMLInput(name string, data []byte) (ytbx.InputFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ytbx.InputFile{
			Location:  name,
			Documents: nil,
		}, nil
	}

	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}

	return ytbx.InputFile{
		Location:  name,
		Documents: docs,
	}, nil
}

// renderDyffReport renders a dyff report to a string.
func renderDyffReport(report dyff.Report, useColor bool) (string, error) {
	var buf bytes.Buffer

	reportWriter := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}

	if err := reportWriter.WriteReport(io.Writer(&buf)); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	result := buf.String()

	// Clean up output - remove trailing whitespace from lines
	lines := strings.Split(result, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
