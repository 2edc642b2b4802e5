package project

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/release"
)

// fakeSource is a VersionSource with a canned answer.
type fakeSource struct {
	version string
	err     error
}

func (f *fakeSource) DeclaredVersion(ctx context.Context) (string, error) {
	return f.version, f.err
}

func (f *fakeSource) Name() string {
	return "fake"
}

func mustCandidate(t *testing.T, version, rc string) release.Candidate {
	t.Helper()
	c, err := release.NewCandidate(version, rc)
	require.NoError(t, err)
	return c
}

func TestCheck_VersionsAgree(t *testing.T) {
	src := &fakeSource{version: "0.8.0"}

	err := Check(context.Background(), src, mustCandidate(t, "0.8.0", "2"))

	assert.NoError(t, err)
}

func TestCheck_VersionsDisagree(t *testing.T) {
	src := &fakeSource{version: "0.8.0"}

	err := Check(context.Background(), src, mustCandidate(t, "0.8.1", "1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrConsistency))

	// Both values must be named for the operator
	var detail *serrors.DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "0.8.0", detail.Context["Declared"])
	assert.Equal(t, "0.8.1", detail.Context["Validated"])
}

func TestCheck_ComparisonIsByteForByte(t *testing.T) {
	// Numerically equal but textually different versions must not pass.
	src := &fakeSource{version: "0.8.00"}

	err := Check(context.Background(), src, mustCandidate(t, "0.8.0", "1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, serrors.ErrConsistency))
}

func TestCheck_SourceErrorPropagates(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}

	err := Check(context.Background(), src, mustCandidate(t, "0.8.0", "1"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fake")
	assert.False(t, errors.Is(err, serrors.ErrConsistency), "a read failure is not a consistency failure")
}
