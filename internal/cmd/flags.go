// Package cmd provides CLI command implementations.
package cmd

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/bundle"
	"github.com/stagehand/cli/internal/config"
	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/output"
	"github.com/stagehand/cli/internal/release"
	"github.com/stagehand/cli/internal/trigger"
)

// timeRound is the display granularity for durations.
const timeRound = 10 * time.Millisecond

// TriggerFlags holds the mutually exclusive release trigger inputs shared
// by every command that needs a candidate.
type TriggerFlags struct {
	Tag     string
	Version string
	RC      string
}

// AddTo registers the trigger flags on a command.
func (f *TriggerFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Tag, "tag", "", "Release tag, e.g. pyiceberg-0.8.0rc2")
	cmd.Flags().StringVar(&f.Version, "release-version", "", "Release version for a manual run, e.g. 0.8.0")
	cmd.Flags().StringVar(&f.RC, "rc", "", "Release candidate number for a manual run, e.g. 2")
}

// Empty reports whether none of the trigger flags were supplied.
func (f *TriggerFlags) Empty() bool {
	return f.Tag == "" && f.Version == "" && f.RC == ""
}

// Resolve selects the trigger from the flags and resolves it into the
// run's candidate.
func (f *TriggerFlags) Resolve(project string) (trigger.Trigger, release.Candidate, error) {
	trig, err := trigger.FromInputs(f.Tag, f.Version, f.RC)
	if err != nil {
		return nil, release.Candidate{}, err
	}

	cand, err := trig.Resolve(project)
	if err != nil {
		return nil, release.Candidate{}, err
	}

	output.Debug("trigger resolved",
		"trigger", trig.Describe(),
		"version", cand.Version.String(),
		"rc", cand.RC,
	)
	return trig, cand, nil
}

// loadProjectRelease reads the release file from the project directory.
// A missing file falls back to the defaults so scripted runs work in a
// bare checkout.
func loadProjectRelease(dir string) (*config.Release, error) {
	rel, err := config.LoadRelease(dir)
	if err != nil {
		if errors.Is(err, serrors.ErrNotFound) {
			output.Debug("no release file, using defaults",
				"dir", dir,
				"project", config.DefaultProject,
			)
			return config.DefaultRelease(config.DefaultProject), nil
		}
		return nil, err
	}
	return rel, nil
}

// resolveStore opens the bundle store for a project. The root is resolved
// with precedence --bundle-dir flag, STAGEHAND_BUNDLE_DIR, release file,
// then user config; a relative root is anchored at the project directory.
func resolveStore(dir, flagValue string, rel *config.Release) *bundle.Store {
	configValue := rel.BundleDir
	if configValue == "" {
		configValue = GetGlobalConfig().Config.BundleDir
	}

	resolved := config.ResolveBundleDir(config.ResolveBundleDirOptions{
		FlagValue:   flagValue,
		ConfigValue: configValue,
	})

	root := resolved.BundleDir
	if !filepath.IsAbs(root) {
		root = filepath.Join(dir, root)
	}

	output.Debug("bundle store resolved", "root", root, "source", resolved.Source)
	return bundle.NewStore(root)
}

// narrowPlatforms filters the release platform matrix to the requested
// labels. An empty request keeps the full matrix.
func narrowPlatforms(rel *config.Release, requested []string) (*config.Release, error) {
	if len(requested) == 0 {
		return rel, nil
	}

	for _, p := range requested {
		if !rel.HasPlatform(p) {
			return nil, serrors.NewValidationError(
				"platform is not in the release matrix",
				"platforms",
				p,
				"Declare the platform in "+config.ReleaseFileName+" first",
			)
		}
	}

	narrowed := *rel
	narrowed.Platforms = append([]string(nil), requested...)
	if !narrowed.HasPlatform(narrowed.SourcePlatform) {
		narrowed.SourcePlatform = narrowed.Platforms[0]
	}
	return &narrowed, nil
}
