package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand/cli/internal/config"
	"github.com/stagehand/cli/internal/release"
)

func TestNewPlan_DefaultMatrix(t *testing.T) {
	p, err := NewPlan(config.DefaultRelease("pyiceberg"))
	require.NoError(t, err)

	// 2 gates + 2 channels x 5 platforms + 2 merges.
	assert.Equal(t, 14, p.Len())

	jobs := p.Jobs()
	assert.Equal(t, ValidateJobID, jobs[0].ID)
	assert.Equal(t, KindValidate, jobs[0].Kind)
	assert.Empty(t, jobs[0].Needs)

	assert.Equal(t, VerifyJobID, jobs[1].ID)
	assert.Equal(t, []string{ValidateJobID}, jobs[1].Needs)

	build, ok := p.Job("build/svn/ubuntu-22.04")
	require.True(t, ok)
	assert.Equal(t, KindBuild, build.Kind)
	assert.Equal(t, release.ChannelSVN, build.Channel)
	assert.Equal(t, "ubuntu-22.04", build.Platform)
	assert.Equal(t, []string{ValidateJobID, VerifyJobID}, build.Needs)

	merge, ok := p.Job("merge/pypi")
	require.True(t, ok)
	assert.Equal(t, KindMerge, merge.Kind)
	assert.Equal(t, release.ChannelPyPI, merge.Channel)
	assert.Equal(t, []string{
		"build/pypi/ubuntu-22.04",
		"build/pypi/windows-2022",
		"build/pypi/macos-13",
		"build/pypi/macos-14",
		"build/pypi/macos-15",
	}, merge.Needs)
}

func TestNewPlan_OrderIsTopological(t *testing.T) {
	p, err := NewPlan(config.DefaultRelease("pyiceberg"))
	require.NoError(t, err)

	index := make(map[string]int)
	for i, job := range p.Jobs() {
		index[job.ID] = i
	}
	for _, job := range p.Jobs() {
		for _, need := range job.Needs {
			assert.Less(t, index[need], index[job.ID],
				"need %s must precede %s", need, job.ID)
		}
	}
}

func TestNewPlan_NarrowedMatrix(t *testing.T) {
	rel := &config.Release{
		Project:   "pyiceberg",
		Channels:  []string{"pypi"},
		Platforms: []string{"macos-14"},
	}

	p, err := NewPlan(rel)
	require.NoError(t, err)

	var ids []string
	for _, job := range p.Jobs() {
		ids = append(ids, job.ID)
	}
	assert.Equal(t, []string{"validate", "verify", "build/pypi/macos-14", "merge/pypi"}, ids)
}

func TestNewPlan_RejectsDuplicatePlatform(t *testing.T) {
	rel := &config.Release{
		Project:   "pyiceberg",
		Channels:  []string{"svn"},
		Platforms: []string{"macos-14", "macos-14"},
	}

	_, err := NewPlan(rel)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate job")
}

func TestAssemble_RejectsUnknownNeed(t *testing.T) {
	_, err := assemble([]Job{
		{ID: "a", Kind: KindValidate},
		{ID: "b", Kind: KindVerify, Needs: []string{"missing"}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown job")
}

func TestAssemble_RejectsForwardNeed(t *testing.T) {
	_, err := assemble([]Job{
		{ID: "a", Kind: KindValidate, Needs: []string{"b"}},
		{ID: "b", Kind: KindVerify},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not precede")
}

func TestPlan_JobLookup(t *testing.T) {
	p, err := NewPlan(config.DefaultRelease("pyiceberg"))
	require.NoError(t, err)

	_, ok := p.Job("build/pypi/macos-15")
	assert.True(t, ok)

	_, ok = p.Job("build/pypi/fedora-40")
	assert.False(t, ok)
}

func TestJobIDs(t *testing.T) {
	assert.Equal(t, "build/pypi/macos-14", BuildJobID(release.ChannelPyPI, "macos-14"))
	assert.Equal(t, "merge/svn", MergeJobID(release.ChannelSVN))
}
