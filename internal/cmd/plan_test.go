// Package cmd provides CLI command implementations.
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/stagehand/cli/internal/errors"
)

func TestNewPlanCmd(t *testing.T) {
	cmd := NewPlanCmd()

	assert.Equal(t, "plan", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	for _, flag := range []string{"tag", "release-version", "rc", "dir", "platforms"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestPlan_DefaultRelease(t *testing.T) {
	// No release file: the plan falls back to the built-in defaults.
	assert.NoError(t, execRoot(t, "plan", "--dir", t.TempDir()))
}

func TestPlan_JSON(t *testing.T) {
	assert.NoError(t, execRoot(t, "plan", "--dir", t.TempDir(), "-o", "json"))
}

func TestPlan_WithCandidate(t *testing.T) {
	assert.NoError(t, execRoot(t, "plan", "--dir", t.TempDir(), "--tag", "pyiceberg-0.8.0rc2"))
}

func TestPlan_NarrowedPlatforms(t *testing.T) {
	assert.NoError(t, execRoot(t, "plan", "--dir", t.TempDir(), "--platforms", "ubuntu-22.04"))
}

func TestPlan_UnknownPlatform(t *testing.T) {
	err := execRoot(t, "plan", "--dir", t.TempDir(), "--platforms", "atari-2600")
	require.Error(t, err)
	assert.Equal(t, serrors.ExitValidationError, serrors.ExitCodeFromError(err))
	assert.Contains(t, err.Error(), "not in the release matrix")
}

func TestPlan_BadTrigger(t *testing.T) {
	err := execRoot(t, "plan", "--dir", t.TempDir(), "--tag", "pyiceberg-0.8.0")
	require.Error(t, err)
	assert.Equal(t, serrors.ExitParseError, serrors.ExitCodeFromError(err))
}
