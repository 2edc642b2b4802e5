package project

import (
	"context"
	"fmt"

	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/release"
)

// VersionSource reads the authoritative version a project declares.
type VersionSource interface {
	// DeclaredVersion returns the declared version string.
	DeclaredVersion(ctx context.Context) (string, error)

	// Name identifies the source for diagnostics.
	Name() string
}

// ResolveSource picks the version source for a project directory: the
// poetry binary when it is available, the pyproject.toml file otherwise.
func ResolveSource(dir, poetryPath string) VersionSource {
	b := NewBinary()
	if poetryPath != "" {
		b.Path = poetryPath
	}
	if b.Available() {
		return &PoetrySource{Binary: b, Dir: dir}
	}
	return NewPyProjectSource(dir)
}

// Check compares the declared project version byte-for-byte against the
// validated candidate version. It is a hard gate: on mismatch nothing
// downstream may run.
func Check(ctx context.Context, src VersionSource, c release.Candidate) error {
	declared, err := src.DeclaredVersion(ctx)
	if err != nil {
		return fmt.Errorf("reading declared version via %s: %w", src.Name(), err)
	}

	if declared != c.Version.String() {
		return serrors.NewConsistencyError(
			fmt.Sprintf("version declared via %s does not match the validated release version", src.Name()),
			declared,
			c.Version.String(),
		)
	}

	return nil
}
