package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	serrors "github.com/stagehand/cli/internal/errors"
)

// Store manages bundle IO rooted at a directory.
type Store struct {
	root string
	now  func() time.Time
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock used for manifest timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = clock
	}
}

// NewStore builds a store rooted at dir.
func NewStore(dir string, opts ...StoreOption) *Store {
	store := &Store{
		root: dir,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory for a bundle name.
func (s *Store) Dir(name string) string {
	return filepath.Join(s.root, name)
}

// FilePath returns the stored path of one artifact in a bundle.
func (s *Store) FilePath(name, path string) string {
	return filepath.Join(s.root, name, filesDir, path)
}

// manifestPath returns the manifest path for a bundle name.
func (s *Store) manifestPath(name string) string {
	return filepath.Join(s.root, name, ManifestFile)
}

// validateName rejects names that would escape the store root.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return serrors.NewBundleError(
			"bundle name must not be empty",
			nil,
			"",
		)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return serrors.NewBundleError(
			"bundle name must be a plain directory name",
			map[string]string{"Name": name},
			"",
		)
	}
	return nil
}

// Exists reports whether a bundle with the given name is stored.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.manifestPath(name))
	return err == nil
}

// Upload stores the given artifact files as a new bundle. The meta fields
// Name, Channel, Version, RC, Platform, and RunID are recorded as given;
// CreatedAt and Files are filled in while storing. Bundles are immutable:
// uploading a name that already exists fails.
func (s *Store) Upload(meta Manifest, paths []string) (*Manifest, error) {
	if err := validateName(meta.Name); err != nil {
		return nil, err
	}
	if s.Exists(meta.Name) {
		return nil, serrors.NewBundleError(
			"bundle already exists",
			map[string]string{"Name": meta.Name},
			"Bundles are immutable; delete the existing bundle first",
		)
	}

	dir := s.Dir(meta.Name)
	if err := os.MkdirAll(filepath.Join(dir, filesDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating bundle directory: %w", err)
	}

	manifest := meta
	manifest.CreatedAt = s.now().UTC()
	manifest.Files = make([]FileEntry, 0, len(paths))

	seen := make(map[string]string)
	for _, src := range paths {
		base := filepath.Base(src)
		if prev, ok := seen[base]; ok {
			s.discard(dir)
			return nil, serrors.NewBundleError(
				"duplicate artifact file name",
				map[string]string{"File": base, "First": prev, "Second": src},
				"Artifact file names within a bundle must be unique",
			)
		}
		seen[base] = src

		size, digest, err := copyWithDigest(src, filepath.Join(dir, filesDir, base))
		if err != nil {
			s.discard(dir)
			return nil, fmt.Errorf("storing %s: %w", base, err)
		}

		manifest.Files = append(manifest.Files, FileEntry{
			Path:   base,
			Size:   size,
			SHA256: digest,
		})
	}
	sortFiles(manifest.Files)

	if err := s.writeManifest(&manifest); err != nil {
		s.discard(dir)
		return nil, err
	}

	return &manifest, nil
}

// writeManifest persists the manifest of an already materialized bundle.
func (s *Store) writeManifest(m *Manifest) error {
	data, err := MarshalManifest(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(s.manifestPath(m.Name), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// discard removes a partially written bundle directory.
func (s *Store) discard(dir string) {
	_ = os.RemoveAll(dir)
}

// Get loads the manifest of a stored bundle.
func (s *Store) Get(name string) (*Manifest, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.manifestPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serrors.NewNotFoundError(
				"bundle not found",
				s.Dir(name),
				"Run `stagehand bundle list` to see stored bundles",
			)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, serrors.NewBundleError(
			"bundle manifest is not valid YAML",
			map[string]string{"Name": name},
			"",
		)
	}
	return m, nil
}

// List loads the manifests of all stored bundles, oldest first. Directories
// without a manifest file are ignored.
func (s *Store) List() ([]*Manifest, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading bundle root: %w", err)
	}

	manifests := make([]*Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if !s.Exists(entry.Name()) {
			continue
		}
		m, err := s.Get(entry.Name())
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}

	sort.Slice(manifests, func(i, j int) bool {
		if !manifests[i].CreatedAt.Equal(manifests[j].CreatedAt) {
			return manifests[i].CreatedAt.Before(manifests[j].CreatedAt)
		}
		return manifests[i].Name < manifests[j].Name
	})

	return manifests, nil
}

// Delete removes a stored bundle.
func (s *Store) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if !s.Exists(name) {
		return serrors.NewNotFoundError(
			"bundle not found",
			s.Dir(name),
			"Run `stagehand bundle list` to see stored bundles",
		)
	}
	if err := os.RemoveAll(s.Dir(name)); err != nil {
		return fmt.Errorf("deleting bundle %s: %w", name, err)
	}
	return nil
}

// VerifyFiles checks every stored file of a bundle against the sizes and
// digests its manifest records.
func (s *Store) VerifyFiles(m *Manifest) error {
	for _, f := range m.Files {
		path := s.FilePath(m.Name, f.Path)

		info, err := os.Stat(path)
		if err != nil {
			return serrors.NewBundleError(
				"bundle file missing",
				map[string]string{"Name": m.Name, "File": f.Path},
				"",
			)
		}
		if info.Size() != f.Size {
			return serrors.NewBundleError(
				"bundle file size mismatch",
				map[string]string{
					"Name":     m.Name,
					"File":     f.Path,
					"Recorded": fmt.Sprintf("%d", f.Size),
					"Stored":   fmt.Sprintf("%d", info.Size()),
				},
				"",
			)
		}

		digest, err := sha256File(path)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", f.Path, err)
		}
		if digest != f.SHA256 {
			return serrors.NewBundleError(
				"bundle file digest mismatch",
				map[string]string{
					"Name":     m.Name,
					"File":     f.Path,
					"Recorded": f.SHA256,
					"Stored":   digest,
				},
				"",
			)
		}
	}
	return nil
}

// copyWithDigest copies src to dst, returning the byte count and the
// hex-encoded SHA-256 of the content.
func copyWithDigest(src, dst string) (int64, string, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, "", err
	}

	hash := sha256.New()
	n, err := io.Copy(out, io.TeeReader(in, hash))
	if closeErr := out.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, "", err
	}

	return n, hex.EncodeToString(hash.Sum(nil)), nil
}

// sha256File returns the hex-encoded SHA-256 of a file.
func sha256File(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
