package project

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfNoPoetry skips the test if the poetry binary is not available.
func skipIfNoPoetry(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("poetry"); err != nil {
		t.Skip("poetry binary not available")
	}
}

func TestBinary_PathDefault(t *testing.T) {
	b := &Binary{}
	assert.Equal(t, "poetry", b.path())

	b.Path = "/opt/poetry/bin/poetry"
	assert.Equal(t, "/opt/poetry/bin/poetry", b.path())
}

func TestBinary_AvailableWithEmptyPATH(t *testing.T) {
	origPath := os.Getenv("PATH")
	defer os.Setenv("PATH", origPath)

	os.Setenv("PATH", "")

	assert.False(t, NewBinary().Available())
}

func TestBinary_CheckVersionNoBinary(t *testing.T) {
	origPath := os.Getenv("PATH")
	defer os.Setenv("PATH", origPath)

	os.Setenv("PATH", "")

	err := NewBinary().CheckVersion(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPoetryNotFound)
}

func TestBinary_DeclaredVersionNoBinary(t *testing.T) {
	origPath := os.Getenv("PATH")
	defer os.Setenv("PATH", origPath)

	os.Setenv("PATH", "")

	_, err := NewBinary().DeclaredVersion(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestBinary_DeclaredVersion(t *testing.T) {
	skipIfNoPoetry(t)

	dir := writePyProject(t, `
[tool.poetry]
name = "probe"
version = "0.1.0"
description = ""
authors = []
`)

	got, err := NewBinary().DeclaredVersion(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", got)
}

func TestResolveSource_FallsBackWithoutPoetry(t *testing.T) {
	origPath := os.Getenv("PATH")
	defer os.Setenv("PATH", origPath)

	os.Setenv("PATH", "")

	src := ResolveSource(t.TempDir(), "")
	assert.IsType(t, &PyProjectSource{}, src)
}
