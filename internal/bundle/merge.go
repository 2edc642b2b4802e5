package bundle

import (
	"fmt"
	"os"
	"path/filepath"

	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/release"
)

// MergeOptions controls a merge.
type MergeOptions struct {
	// Keep retains the source bundles after a successful merge.
	Keep bool

	// RunID stamps the merged manifest.
	RunID string
}

// Merge combines the named per-platform bundles into the channel's merged
// bundle for the candidate. Files appearing in more than one source must
// carry the same digest; a same-path different-digest pair fails the merge
// with the sources left in place. After a successful merge the sources are
// deleted unless opts.Keep is set.
func (s *Store) Merge(ch release.Channel, cand release.Candidate, sources []string, opts MergeOptions) (*Manifest, error) {
	if len(sources) == 0 {
		return nil, serrors.NewBundleError(
			"merge needs at least one source bundle",
			map[string]string{"Channel": ch.String()},
			"",
		)
	}

	target := release.MergedBundleName(ch, cand)
	if s.Exists(target) {
		return nil, serrors.NewBundleError(
			"merged bundle already exists",
			map[string]string{"Name": target},
			"Bundles are immutable; delete the existing bundle first",
		)
	}

	loaded := make([]*Manifest, 0, len(sources))
	for _, name := range sources {
		m, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		if m.Channel != ch.String() {
			return nil, serrors.NewBundleError(
				"source bundle belongs to a different channel",
				map[string]string{
					"Name":     m.Name,
					"Channel":  m.Channel,
					"Expected": ch.String(),
				},
				"",
			)
		}
		if m.Version != cand.Version.String() || m.RC != cand.RC {
			return nil, serrors.NewBundleError(
				"source bundle was built for a different candidate",
				map[string]string{
					"Name":     m.Name,
					"Built":    m.Qualified(),
					"Expected": cand.Qualified(),
				},
				"",
			)
		}
		loaded = append(loaded, m)
	}

	merged, err := mergeFileSets(loaded)
	if err != nil {
		return nil, err
	}

	dir := s.Dir(target)
	if err := os.MkdirAll(filepath.Join(dir, filesDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating bundle directory: %w", err)
	}

	for _, pick := range merged {
		src := s.FilePath(pick.from, pick.entry.Path)
		dst := filepath.Join(dir, filesDir, pick.entry.Path)

		_, digest, err := copyWithDigest(src, dst)
		if err != nil {
			s.discard(dir)
			return nil, fmt.Errorf("copying %s from %s: %w", pick.entry.Path, pick.from, err)
		}
		if digest != pick.entry.SHA256 {
			s.discard(dir)
			return nil, serrors.NewBundleError(
				"stored file does not match its recorded digest",
				map[string]string{
					"Name":     pick.from,
					"File":     pick.entry.Path,
					"Recorded": pick.entry.SHA256,
					"Stored":   digest,
				},
				"The source bundle is corrupt; rebuild it before merging",
			)
		}
	}

	manifest := Manifest{
		Name:       target,
		Channel:    ch.String(),
		Version:    cand.Version.String(),
		RC:         cand.RC,
		RunID:      opts.RunID,
		CreatedAt:  s.now().UTC(),
		MergedFrom: append([]string(nil), sources...),
	}
	for _, pick := range merged {
		manifest.Files = append(manifest.Files, pick.entry)
	}
	sortFiles(manifest.Files)

	if err := s.writeManifest(&manifest); err != nil {
		s.discard(dir)
		return nil, err
	}

	if !opts.Keep {
		for _, name := range sources {
			if err := s.Delete(name); err != nil {
				return &manifest, fmt.Errorf("merged bundle %s written, but deleting source %s failed: %w", target, name, err)
			}
		}
	}

	return &manifest, nil
}

// pickedFile is one file chosen for the merged bundle and the source
// bundle it is copied from.
type pickedFile struct {
	entry FileEntry
	from  string
}

// mergeFileSets combines the sources' file lists. Identical duplicates
// deduplicate to the first occurrence; a same-path different-digest pair is
// a conflict.
func mergeFileSets(sources []*Manifest) ([]pickedFile, error) {
	byPath := make(map[string]pickedFile)
	order := make([]string, 0)

	for _, m := range sources {
		for _, f := range m.Files {
			prev, ok := byPath[f.Path]
			if !ok {
				byPath[f.Path] = pickedFile{entry: f, from: m.Name}
				order = append(order, f.Path)
				continue
			}
			if prev.entry.SHA256 != f.SHA256 {
				return nil, serrors.NewBundleError(
					"merge conflict: same file name with different content",
					map[string]string{
						"File":   f.Path,
						prev.from: prev.entry.SHA256,
						m.Name:    f.SHA256,
					},
					"Rebuild the conflicting platform bundles for this candidate",
				)
			}
		}
	}

	picked := make([]pickedFile, 0, len(order))
	for _, path := range order {
		picked = append(picked, byPath[path])
	}
	return picked, nil
}
