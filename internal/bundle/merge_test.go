package bundle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/release"
)

func TestMerge_CombinesPlatformBundles(t *testing.T) {
	s := newTestStore(t)
	cand := mustCandidate(t, "0.8.0", "2")

	uploadTestBundle(t, s, "pypi-release-candidate-ubuntu-22.04", "pypi", "ubuntu-22.04", map[string]string{
		"pyiceberg-0.8.0.tar.gz":             "source archive",
		"pyiceberg-0.8.0-cp39-linux_x86.whl": "linux wheel",
	})
	uploadTestBundle(t, s, "pypi-release-candidate-macos-14", "pypi", "macos-14", map[string]string{
		"pyiceberg-0.8.0-cp39-macosx_arm.whl": "macos wheel",
	})

	m, err := s.Merge(release.ChannelPyPI, cand, []string{
		"pypi-release-candidate-ubuntu-22.04",
		"pypi-release-candidate-macos-14",
	}, MergeOptions{RunID: "run-9"})
	require.NoError(t, err)

	assert.Equal(t, "pypi-release-candidate-0.8.0rc2", m.Name)
	assert.Equal(t, "pypi", m.Channel)
	assert.Equal(t, "0.8.0rc2", m.Qualified())
	assert.Empty(t, m.Platform)
	assert.True(t, m.Merged())
	assert.Equal(t, []string{
		"pypi-release-candidate-ubuntu-22.04",
		"pypi-release-candidate-macos-14",
	}, m.MergedFrom)
	assert.Equal(t, []string{
		"pyiceberg-0.8.0-cp39-linux_x86.whl",
		"pyiceberg-0.8.0-cp39-macosx_arm.whl",
		"pyiceberg-0.8.0.tar.gz",
	}, m.FileNames())

	// The merged bundle verifies and the sources are gone.
	require.NoError(t, s.VerifyFiles(m))
	assert.False(t, s.Exists("pypi-release-candidate-ubuntu-22.04"))
	assert.False(t, s.Exists("pypi-release-candidate-macos-14"))
}

func TestMerge_KeepRetainsSources(t *testing.T) {
	s := newTestStore(t)
	cand := mustCandidate(t, "0.8.0", "2")

	uploadTestBundle(t, s, "svn-release-candidate-ubuntu-22.04", "svn", "ubuntu-22.04", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "source archive",
	})

	_, err := s.Merge(release.ChannelSVN, cand, []string{"svn-release-candidate-ubuntu-22.04"}, MergeOptions{Keep: true})
	require.NoError(t, err)

	assert.True(t, s.Exists("svn-release-candidate-ubuntu-22.04"))
	assert.True(t, s.Exists("svn-release-candidate-0.8.0rc2"))
}

func TestMerge_DeduplicatesIdenticalFiles(t *testing.T) {
	s := newTestStore(t)
	cand := mustCandidate(t, "0.8.0", "2")

	// Every platform produces the same source archive; only one copy survives.
	uploadTestBundle(t, s, "svn-release-candidate-ubuntu-22.04", "svn", "ubuntu-22.04", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "source archive",
	})
	uploadTestBundle(t, s, "svn-release-candidate-macos-14", "svn", "macos-14", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "source archive",
	})

	m, err := s.Merge(release.ChannelSVN, cand, []string{
		"svn-release-candidate-ubuntu-22.04",
		"svn-release-candidate-macos-14",
	}, MergeOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"pyiceberg-0.8.0.tar.gz"}, m.FileNames())
}

func TestMerge_ConflictLeavesSourcesIntact(t *testing.T) {
	s := newTestStore(t)
	cand := mustCandidate(t, "0.8.0", "2")

	uploadTestBundle(t, s, "svn-release-candidate-ubuntu-22.04", "svn", "ubuntu-22.04", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "built on linux",
	})
	uploadTestBundle(t, s, "svn-release-candidate-macos-14", "svn", "macos-14", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "built on macos",
	})

	_, err := s.Merge(release.ChannelSVN, cand, []string{
		"svn-release-candidate-ubuntu-22.04",
		"svn-release-candidate-macos-14",
	}, MergeOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrBundle))
	assert.Contains(t, err.Error(), "merge conflict")

	// Nothing was written and nothing was deleted.
	assert.False(t, s.Exists("svn-release-candidate-0.8.0rc2"))
	assert.True(t, s.Exists("svn-release-candidate-ubuntu-22.04"))
	assert.True(t, s.Exists("svn-release-candidate-macos-14"))
}

func TestMerge_RejectsChannelMismatch(t *testing.T) {
	s := newTestStore(t)
	cand := mustCandidate(t, "0.8.0", "2")

	uploadTestBundle(t, s, "svn-release-candidate-ubuntu-22.04", "svn", "ubuntu-22.04", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "x",
	})

	_, err := s.Merge(release.ChannelPyPI, cand, []string{"svn-release-candidate-ubuntu-22.04"}, MergeOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrBundle))
	assert.Contains(t, err.Error(), "different channel")
}

func TestMerge_RejectsCandidateMismatch(t *testing.T) {
	s := newTestStore(t)

	uploadTestBundle(t, s, "svn-release-candidate-ubuntu-22.04", "svn", "ubuntu-22.04", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "x",
	})

	_, err := s.Merge(release.ChannelSVN, mustCandidate(t, "0.8.0", "3"), []string{"svn-release-candidate-ubuntu-22.04"}, MergeOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrBundle))
	assert.Contains(t, err.Error(), "different candidate")
}

func TestMerge_RejectsExistingTarget(t *testing.T) {
	s := newTestStore(t)
	cand := mustCandidate(t, "0.8.0", "2")

	uploadTestBundle(t, s, "svn-release-candidate-0.8.0rc2", "svn", "", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "x",
	})
	uploadTestBundle(t, s, "svn-release-candidate-ubuntu-22.04", "svn", "ubuntu-22.04", map[string]string{
		"pyiceberg-0.8.0.tar.gz": "x",
	})

	_, err := s.Merge(release.ChannelSVN, cand, []string{"svn-release-candidate-ubuntu-22.04"}, MergeOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrBundle))
	assert.Contains(t, err.Error(), "already exists")
}

func TestMerge_RejectsEmptySources(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Merge(release.ChannelSVN, mustCandidate(t, "0.8.0", "2"), nil, MergeOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrBundle))
}

func TestMerge_MissingSource(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Merge(release.ChannelSVN, mustCandidate(t, "0.8.0", "2"), []string{"svn-release-candidate-macos-13"}, MergeOptions{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrNotFound))
}
