// Package cmd provides CLI command implementations.
package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/stagehand/cli/internal/errors"
)

func writePyProject(t *testing.T, dir, version string) {
	t.Helper()
	content := "[tool.poetry]\nname = \"pyiceberg\"\nversion = \"" + version + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(content), 0o644))
}

func TestNewVerifyCmd(t *testing.T) {
	cmd := NewVerifyCmd()

	assert.Equal(t, "verify", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	for _, flag := range []string{"tag", "release-version", "rc", "dir", "use-pyproject"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestVerify_Match(t *testing.T) {
	dir := t.TempDir()
	writePyProject(t, dir, "0.8.0")

	err := execRoot(t, "verify", "--tag", "pyiceberg-0.8.0rc2", "--dir", dir, "--use-pyproject")
	assert.NoError(t, err)
}

func TestVerify_Mismatch(t *testing.T) {
	dir := t.TempDir()
	writePyProject(t, dir, "0.9.0")

	err := execRoot(t, "verify", "--tag", "pyiceberg-0.8.0rc2", "--dir", dir, "--use-pyproject")
	require.Error(t, err)
	assert.Equal(t, serrors.ExitConsistencyError, serrors.ExitCodeFromError(err))
	assert.Contains(t, err.Error(), "does not match")
}

func TestVerify_MissingPyProject(t *testing.T) {
	err := execRoot(t, "verify", "--tag", "pyiceberg-0.8.0rc2", "--dir", t.TempDir(), "--use-pyproject")
	require.Error(t, err)
	assert.Equal(t, serrors.ExitNotFound, serrors.ExitCodeFromError(err))
}

func TestVerify_BadTrigger(t *testing.T) {
	dir := t.TempDir()
	writePyProject(t, dir, "0.8.0")

	err := execRoot(t, "verify", "--tag", "pyiceberg-0.8.0", "--dir", dir, "--use-pyproject")
	require.Error(t, err)
	assert.Equal(t, serrors.ExitParseError, serrors.ExitCodeFromError(err))
}
