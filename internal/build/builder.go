package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/stagehand/cli/internal/config"
	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/output"
	"github.com/stagehand/cli/internal/release"
)

// ArtifactKind classifies a file produced by a build.
type ArtifactKind string

const (
	// ArtifactSource is the source archive, produced on the designated
	// source platform only.
	ArtifactSource ArtifactKind = "source"

	// ArtifactBinary is a platform package. Every binary artifact is
	// smoke-tested before it is accepted.
	ArtifactBinary ArtifactKind = "binary"
)

// Artifact is one file collected from the dist directory.
type Artifact struct {
	// Name is the file name within the dist directory.
	Name string

	// Path is the absolute path on disk.
	Path string

	// Kind is the artifact classification.
	Kind ArtifactKind

	// Size is the file size in bytes.
	Size int64
}

// Report summarizes one finished platform build.
type Report struct {
	// Channel is the publication channel the build ran for.
	Channel release.Channel

	// Platform is the target platform label.
	Platform string

	// PackageVersion is the version the artifacts were built with.
	PackageVersion string

	// Artifacts lists the collected files, sorted by name.
	Artifacts []Artifact

	// Duration is the wall time of the whole build sequence.
	Duration time.Duration
}

// Builder runs the build sequence for one platform and channel: stage the
// package version, build, collect artifacts, smoke-test each binary.
type Builder struct {
	runner  Runner
	release *config.Release
	dir     string
}

// NewBuilder returns a builder for the project rooted at dir. A nil runner
// defaults to ExecRunner.
func NewBuilder(rel *config.Release, dir string, runner Runner) *Builder {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Builder{
		runner:  runner,
		release: rel,
		dir:     dir,
	}
}

// PackageVersion returns the version a channel builds with: the
// package-index channel stages the RC-qualified version, the
// source-control channel ships the plain repository version.
func PackageVersion(ch release.Channel, c release.Candidate) string {
	if ch == release.ChannelPyPI {
		return c.Qualified()
	}
	return c.Version.String()
}

// Build runs the full sequence for one platform and channel and returns the
// collected artifacts. Leftover files in the dist directory are cleared
// first so the collected set reflects this build alone. Any command failure,
// including a smoke-test failure, fails the build.
func (b *Builder) Build(ctx context.Context, ch release.Channel, platform string, cand release.Candidate) (*Report, error) {
	vars := Vars{
		Project:        b.release.Project,
		Version:        cand.Version.String(),
		RC:             cand.RC,
		PackageVersion: PackageVersion(ch, cand),
		Platform:       platform,
		Channel:        ch.String(),
	}

	start := time.Now()

	if err := b.cleanDist(); err != nil {
		return nil, err
	}

	// The source-control channel ships the plain repository version, so
	// the version-staging step only runs for the package index.
	if ch == release.ChannelPyPI && b.release.Build.VersionCommand != "" {
		if err := b.runStep(ctx, "version", b.release.Build.VersionCommand, vars, nil); err != nil {
			return nil, err
		}
	}

	if err := b.runStep(ctx, "build", b.release.Build.Command, vars, nil); err != nil {
		return nil, err
	}

	artifacts, err := b.collect(platform)
	if err != nil {
		return nil, err
	}
	if len(artifacts) == 0 {
		return nil, serrors.NewBuildError(
			"build produced no artifacts",
			map[string]string{"Dist": b.distDir(), "Platform": platform},
			"Check build.command and build.dist in .stagehand.yaml",
		)
	}

	for _, a := range artifacts {
		if a.Kind != ArtifactBinary {
			continue
		}
		smokeVars := vars
		smokeVars.Artifact = a.Path
		extra := map[string]string{"Artifact": a.Name}
		if err := b.runStep(ctx, "smoke", b.release.Smoke.Command, smokeVars, extra); err != nil {
			return nil, err
		}
	}

	return &Report{
		Channel:        ch,
		Platform:       platform,
		PackageVersion: vars.PackageVersion,
		Artifacts:      artifacts,
		Duration:       time.Since(start),
	}, nil
}

// runStep expands and executes one command template.
func (b *Builder) runStep(ctx context.Context, step, template string, vars Vars, extra map[string]string) error {
	argv, err := SplitCommand(vars.Expand(template))
	if err != nil {
		return err
	}

	cmd := Command{Argv: argv, Dir: b.dir}
	output.Debug("running "+step+" command", "cmd", cmd.String(), "dir", b.dir)

	res, err := b.runner.Run(ctx, cmd)
	if err != nil {
		details := map[string]string{
			"Step":    step,
			"Command": cmd.String(),
		}
		for k, v := range extra {
			details[k] = v
		}
		if s := strings.TrimSpace(res.Stderr); s != "" {
			details["Stderr"] = s
		}
		return serrors.NewBuildError(step+" command failed", details, "")
	}

	output.Debug(step+" command finished", "cmd", cmd.String(), "duration", res.Duration)
	return nil
}

// cleanDist removes leftover entries from the dist directory so artifacts
// of an earlier build are not collected into this one. A missing directory
// is fine; the build tool creates it.
func (b *Builder) cleanDist() error {
	dist := b.distDir()

	entries, err := os.ReadDir(dist)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cleaning dist directory: %w", err)
	}

	if len(entries) > 0 {
		output.Debug("clearing stale dist entries", "dist", dist, "count", len(entries))
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dist, e.Name())); err != nil {
			return fmt.Errorf("cleaning dist directory: %w", err)
		}
	}

	return nil
}

// collect gathers the artifacts the build wrote into the dist directory.
// Source archives are dropped on every platform but the designated one.
func (b *Builder) collect(platform string) ([]Artifact, error) {
	dist := b.distDir()

	entries, err := os.ReadDir(dist)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serrors.NewBuildError(
				"dist directory not found after build",
				map[string]string{"Dist": dist},
				"Check build.dist in .stagehand.yaml",
			)
		}
		return nil, fmt.Errorf("reading dist directory: %w", err)
	}

	sourceAllowed := platform == b.release.SourcePlatform

	var artifacts []Artifact
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		kind := Classify(e.Name())
		if kind == ArtifactSource && !sourceAllowed {
			output.Debug("dropping source archive on non-source platform",
				"file", e.Name(), "platform", platform)
			continue
		}

		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("reading dist entry %s: %w", e.Name(), err)
		}

		artifacts = append(artifacts, Artifact{
			Name: e.Name(),
			Path: filepath.Join(dist, e.Name()),
			Kind: kind,
			Size: info.Size(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Name < artifacts[j].Name
	})

	return artifacts, nil
}

// Classify reports whether a dist file is the source archive or a binary
// package.
func Classify(name string) ArtifactKind {
	if strings.HasSuffix(name, ".tar.gz") {
		return ArtifactSource
	}
	return ArtifactBinary
}

func (b *Builder) distDir() string {
	return filepath.Join(b.dir, b.release.Build.Dist)
}
