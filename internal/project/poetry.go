// Package project reads the authoritative version a project declares and
// gates releases on it agreeing with the validated candidate.
package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/stagehand/cli/internal/version"
)

var (
	// ErrPoetryNotFound is returned when the poetry binary is not found.
	ErrPoetryNotFound = errors.New("poetry binary not found")
	// ErrPoetryUnsupported is returned when the poetry binary is too old.
	ErrPoetryUnsupported = errors.New("poetry binary version unsupported")
)

// Binary wraps calls to the external poetry binary.
type Binary struct {
	// Path is the path to the poetry binary. If empty, "poetry" is used from PATH.
	Path string

	// Stdout for poetry command output. If nil, os.Stdout is used.
	Stdout io.Writer

	// Stderr for poetry command errors. If nil, os.Stderr is used.
	Stderr io.Writer
}

// NewBinary creates a new Binary wrapper using "poetry" from PATH.
func NewBinary() *Binary {
	return &Binary{
		Path:   "poetry",
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Available reports whether the poetry binary can be resolved.
func (b *Binary) Available() bool {
	_, err := exec.LookPath(b.path())
	return err == nil
}

// CheckVersion verifies the poetry binary exists and meets the minimum
// supported version.
func (b *Binary) CheckVersion(ctx context.Context) error {
	info := version.DetectPoetry()

	if !info.Found {
		return ErrPoetryNotFound
	}

	if !info.Supported {
		return fmt.Errorf("%w: need %s or newer, found %s",
			ErrPoetryUnsupported, version.MinPoetryVersion, info.Version)
	}

	return nil
}

// DeclaredVersion runs `poetry version --short` in the project directory and
// returns the declared version with surrounding whitespace removed.
func (b *Binary) DeclaredVersion(ctx context.Context, dir string) (string, error) {
	out, err := b.runCapture(ctx, dir, "version", "--short")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// runCapture executes a poetry command and captures its output.
func (b *Binary) runCapture(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, b.path(), args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("poetry %s failed with exit code %d: %s",
				strings.Join(args, " "), exitErr.ExitCode(), stderr.String())
		}
		return nil, fmt.Errorf("poetry %s: %w", strings.Join(args, " "), err)
	}

	return stdout.Bytes(), nil
}

func (b *Binary) path() string {
	if b.Path != "" {
		return b.Path
	}
	return "poetry"
}

// PoetrySource reads the declared version through the poetry binary.
type PoetrySource struct {
	Binary *Binary
	Dir    string
}

// DeclaredVersion implements VersionSource.
func (s *PoetrySource) DeclaredVersion(ctx context.Context) (string, error) {
	return s.Binary.DeclaredVersion(ctx, s.Dir)
}

// Name implements VersionSource.
func (s *PoetrySource) Name() string {
	return "poetry"
}
