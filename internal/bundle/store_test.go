package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/release"
)

// newTestStore returns a store in a temp dir with a deterministic clock
// that advances one minute per call.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	return NewStore(t.TempDir(), WithClock(func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}))
}

// uploadTestBundle stores a bundle with the given files (name to content).
func uploadTestBundle(t *testing.T, s *Store, name, channel, platform string, files map[string]string) *Manifest {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(files))
	for fname, content := range files {
		p := filepath.Join(dir, fname)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		paths = append(paths, p)
	}
	sort.Strings(paths)

	m, err := s.Upload(Manifest{
		Name:     name,
		Channel:  channel,
		Version:  "0.8.0",
		RC:       "2",
		Platform: platform,
		RunID:    "run-1",
	}, paths)
	require.NoError(t, err)
	return m
}

func mustCandidate(t *testing.T, version, rc string) release.Candidate {
	t.Helper()
	c, err := release.NewCandidate(version, rc)
	require.NoError(t, err)
	return c
}

func digestOf(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func TestUpload_StoresFilesAndManifest(t *testing.T) {
	s := newTestStore(t)

	m := uploadTestBundle(t, s, "pypi-release-candidate-macos-14", "pypi", "macos-14", map[string]string{
		"pyiceberg-0.8.0.tar.gz":          "source archive",
		"pyiceberg-0.8.0-py3-none.whl":    "wheel content",
		"pyiceberg-0.8.0-py3-none.whl.gz": "compressed wheel",
	})

	assert.Equal(t, "pypi-release-candidate-macos-14", m.Name)
	assert.Equal(t, "pypi", m.Channel)
	assert.Equal(t, "0.8.0rc2", m.Qualified())
	assert.Equal(t, "macos-14", m.Platform)
	assert.False(t, m.Merged())
	assert.False(t, m.CreatedAt.IsZero())

	require.Len(t, m.Files, 3)
	// Files are sorted by path
	assert.Equal(t, "pyiceberg-0.8.0-py3-none.whl", m.Files[0].Path)
	assert.Equal(t, "pyiceberg-0.8.0-py3-none.whl.gz", m.Files[1].Path)
	assert.Equal(t, "pyiceberg-0.8.0.tar.gz", m.Files[2].Path)

	entry, ok := m.FindFile("pyiceberg-0.8.0.tar.gz")
	require.True(t, ok)
	assert.Equal(t, int64(len("source archive")), entry.Size)
	assert.Equal(t, digestOf("source archive"), entry.SHA256)

	// Stored payload matches, and a reload round-trips the manifest
	data, err := os.ReadFile(s.FilePath(m.Name, "pyiceberg-0.8.0.tar.gz"))
	require.NoError(t, err)
	assert.Equal(t, "source archive", string(data))

	loaded, err := s.Get(m.Name)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)
}

func TestUpload_RefusesExistingName(t *testing.T) {
	s := newTestStore(t)
	uploadTestBundle(t, s, "svn-release-candidate-ubuntu-22.04", "svn", "ubuntu-22.04", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "x",
	})

	_, err := s.Upload(Manifest{Name: "svn-release-candidate-ubuntu-22.04", Channel: "svn"}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrBundle))
	assert.Contains(t, err.Error(), "already exists")
}

func TestUpload_RejectsDuplicateFileNames(t *testing.T) {
	s := newTestStore(t)

	dirA := t.TempDir()
	dirB := t.TempDir()
	pathA := filepath.Join(dirA, "pyiceberg-0.8.0.tar.gz")
	pathB := filepath.Join(dirB, "pyiceberg-0.8.0.tar.gz")
	require.NoError(t, os.WriteFile(pathA, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(pathB, []byte("b"), 0o644))

	_, err := s.Upload(Manifest{Name: "svn-release-candidate-macos-13", Channel: "svn"}, []string{pathA, pathB})

	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrBundle))
	assert.False(t, s.Exists("svn-release-candidate-macos-13"), "partial bundle should be discarded")
}

func TestUpload_RejectsUnsafeName(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", " ", "a/b", `a\b`, "..", "."} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Upload(Manifest{Name: name}, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, serrors.ErrBundle))
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("pypi-release-candidate-macos-15")

	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrNotFound))
}

func TestList_SortedByCreation(t *testing.T) {
	s := newTestStore(t)

	// Uploaded in this order; the fake clock advances per upload.
	uploadTestBundle(t, s, "svn-release-candidate-windows-2022", "svn", "windows-2022", map[string]string{"a": "1"})
	uploadTestBundle(t, s, "svn-release-candidate-macos-13", "svn", "macos-13", map[string]string{"a": "1"})

	manifests, err := s.List()
	require.NoError(t, err)

	require.Len(t, manifests, 2)
	assert.Equal(t, "svn-release-candidate-windows-2022", manifests[0].Name)
	assert.Equal(t, "svn-release-candidate-macos-13", manifests[1].Name)
	assert.True(t, manifests[0].CreatedAt.Before(manifests[1].CreatedAt))
}

func TestList_EmptyRootIsNotAnError(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "does-not-exist-yet"))

	manifests, err := s.List()

	require.NoError(t, err)
	assert.Empty(t, manifests)
}

func TestList_IgnoresForeignDirectories(t *testing.T) {
	s := newTestStore(t)
	uploadTestBundle(t, s, "pypi-release-candidate-macos-14", "pypi", "macos-14", map[string]string{"a": "1"})
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "scratch"), 0o755))

	manifests, err := s.List()

	require.NoError(t, err)
	require.Len(t, manifests, 1)
	assert.Equal(t, "pypi-release-candidate-macos-14", manifests[0].Name)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	uploadTestBundle(t, s, "pypi-release-candidate-macos-14", "pypi", "macos-14", map[string]string{"a": "1"})

	require.NoError(t, s.Delete("pypi-release-candidate-macos-14"))
	assert.False(t, s.Exists("pypi-release-candidate-macos-14"))

	err := s.Delete("pypi-release-candidate-macos-14")
	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrNotFound))
}

func TestVerifyFiles_PassesForIntactBundle(t *testing.T) {
	s := newTestStore(t)
	m := uploadTestBundle(t, s, "svn-release-candidate-macos-15", "svn", "macos-15", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "payload",
	})

	assert.NoError(t, s.VerifyFiles(m))
}

func TestVerifyFiles_DetectsTamperedContent(t *testing.T) {
	s := newTestStore(t)
	m := uploadTestBundle(t, s, "svn-release-candidate-macos-15", "svn", "macos-15", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "payload",
	})

	// Same length, different bytes: must be caught by the digest, not the size.
	stored := s.FilePath(m.Name, "pyiceberg-0.8.0.tar.gz")
	require.NoError(t, os.WriteFile(stored, []byte("tampere"), 0o644))

	err := s.VerifyFiles(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrBundle))
	assert.Contains(t, err.Error(), "digest mismatch")
}

func TestVerifyFiles_DetectsMissingFile(t *testing.T) {
	s := newTestStore(t)
	m := uploadTestBundle(t, s, "svn-release-candidate-macos-15", "svn", "macos-15", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "payload",
	})

	require.NoError(t, os.Remove(s.FilePath(m.Name, "pyiceberg-0.8.0.tar.gz")))

	err := s.VerifyFiles(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
