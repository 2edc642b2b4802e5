// Package integration wires the release pipeline's packages together
// against the real filesystem and process runner, without the CLI layer in
// between.
package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stagehand/cli/internal/config"
	"github.com/stagehand/cli/internal/release"
)

// writeProject writes a project directory whose build and smoke commands
// are shell no-ops. The build command may use the {platform} placeholder so
// each platform produces a distinct wheel.
func writeProject(t *testing.T, platforms []string, buildCmd, smokeCmd string) string {
	t.Helper()

	dir := t.TempDir()

	var sb strings.Builder
	sb.WriteString("project: demo\n")
	sb.WriteString("channels:\n  - svn\n  - pypi\n")
	sb.WriteString("platforms:\n")
	for _, p := range platforms {
		sb.WriteString("  - " + p + "\n")
	}
	sb.WriteString("bundleDir: bundles\n")
	sb.WriteString("build:\n")
	sb.WriteString("  command: \"" + buildCmd + "\"\n")
	sb.WriteString("  versionCommand: \"true {package_version}\"\n")
	sb.WriteString("  dist: dist\n")
	sb.WriteString("smoke:\n")
	sb.WriteString("  command: \"" + smokeCmd + "\"\n")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".stagehand.yaml"), []byte(sb.String()), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dist"), 0o755))

	pyproject := "[tool.poetry]\nname = \"demo\"\nversion = \"0.8.0\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(pyproject), 0o644))

	return dir
}

// loadProject reads the release file a fixture wrote.
func loadProject(t *testing.T, dir string) *config.Release {
	t.Helper()

	rel, err := config.LoadRelease(dir)
	require.NoError(t, err)
	return rel
}

// testCandidate returns the candidate every fixture is built for.
func testCandidate(t *testing.T) release.Candidate {
	t.Helper()

	cand, err := release.NewCandidate("0.8.0", "2")
	require.NoError(t, err)
	return cand
}
