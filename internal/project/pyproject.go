package project

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	serrors "github.com/stagehand/cli/internal/errors"
)

// PyProjectFile is the conventional name of the project metadata file.
const PyProjectFile = "pyproject.toml"

// pyprojectDoc mirrors the version-bearing tables of pyproject.toml. Both
// the PEP 621 [project] table and the legacy [tool.poetry] table are read.
type pyprojectDoc struct {
	Project struct {
		Version string `toml:"version"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Version string `toml:"version"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// PyProjectSource reads the declared version directly from pyproject.toml.
// It is the fallback when the poetry binary is not available.
type PyProjectSource struct {
	Path string
}

// NewPyProjectSource creates a source for the pyproject.toml in dir.
func NewPyProjectSource(dir string) *PyProjectSource {
	return &PyProjectSource{Path: filepath.Join(dir, PyProjectFile)}
}

// DeclaredVersion implements VersionSource.
func (s *PyProjectSource) DeclaredVersion(ctx context.Context) (string, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return "", serrors.NewNotFoundError(
			"project metadata file not found",
			s.Path,
			"Run from the project root or pass --dir",
		)
	}

	var doc pyprojectDoc
	if _, err := toml.DecodeFile(s.Path, &doc); err != nil {
		return "", serrors.Wrap(serrors.ErrValidation, "parsing "+s.Path+": "+err.Error())
	}

	// The poetry table wins when both are present, matching what the
	// poetry binary itself would report.
	if doc.Tool.Poetry.Version != "" {
		return doc.Tool.Poetry.Version, nil
	}
	if doc.Project.Version != "" {
		return doc.Project.Version, nil
	}

	return "", serrors.NewNotFoundError(
		"no version declared in project metadata",
		s.Path,
		"Declare version under [tool.poetry] or [project]",
	)
}

// Name implements VersionSource.
func (s *PyProjectSource) Name() string {
	return PyProjectFile
}
