// Package cmd provides CLI command implementations.
package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/build"
	"github.com/stagehand/cli/internal/bundle"
	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/output"
	"github.com/stagehand/cli/internal/release"
)

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	var tf TriggerFlags
	var (
		dirFlag       string
		channelFlag   string
		platformFlag  string
		bundleDirFlag string
		runIDFlag     string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run one platform build job",
		Long: `Run exactly one platform and channel build job.

This is the per-runner entry point: it stages the package version for the
package-index channel, runs the build command, smoke-tests every binary
artifact, and uploads the results as the platform's bundle. The validation
gates are expected to have passed already; only the trigger inputs are
re-resolved here.

Examples:
  # Build the pypi artifacts for one platform
  stagehand build --tag pyiceberg-0.8.0rc2 --channel pypi --platform macos-14

  # Build the svn artifacts, stamping the hosting system's run ID
  stagehand build --tag pyiceberg-0.8.0rc2 --channel svn --platform ubuntu-22.04 --run-id "$GITHUB_RUN_ID"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuildJob(cmd, args, &tf, dirFlag, channelFlag, platformFlag, bundleDirFlag, runIDFlag)
		},
	}

	tf.AddTo(cmd)
	cmd.Flags().StringVar(&dirFlag, "dir", ".", "Project directory")
	cmd.Flags().StringVar(&channelFlag, "channel", "", "Publication channel to build for (svn, pypi)")
	cmd.Flags().StringVar(&platformFlag, "platform", "", "Platform label this runner builds on")
	cmd.Flags().StringVar(&bundleDirFlag, "bundle-dir", "", "Bundle store root (env: STAGEHAND_BUNDLE_DIR)")
	cmd.Flags().StringVar(&runIDFlag, "run-id", "", "Run identifier stamped into the bundle (default: generated)")
	_ = cmd.MarkFlagRequired("channel")
	_ = cmd.MarkFlagRequired("platform")

	return cmd
}

func runBuildJob(_ *cobra.Command, _ []string, tf *TriggerFlags, dir, channel, platform, bundleDir, runID string) error {
	ctx := context.Background()

	rel, err := loadProjectRelease(dir)
	if err != nil {
		return err
	}

	ch, err := release.ParseChannel(channel)
	if err != nil {
		return err
	}
	if !hasChannel(rel.Channels, ch) {
		return serrors.NewValidationError(
			"channel is not declared by the release file",
			"channel",
			channel,
			"Declare the channel in "+rel.Project+"'s release file first",
		)
	}
	if !rel.HasPlatform(platform) {
		return serrors.NewValidationError(
			"platform is not in the release matrix",
			"platform",
			platform,
			"Declare the platform in the release file first",
		)
	}

	_, cand, err := tf.Resolve(rel.Project)
	if err != nil {
		return err
	}

	if runID == "" {
		runID = uuid.NewString()
	}

	builder := build.NewBuilder(rel, dir, nil)

	var report *build.Report
	title := fmt.Sprintf("Building %s %s for %s/%s...", rel.Project, cand.Qualified(), ch, platform)
	err = output.RunWithSpinner(ctx, title, func() error {
		var buildErr error
		report, buildErr = builder.Build(ctx, ch, platform, cand)
		return buildErr
	})
	if err != nil {
		return err
	}

	output.Println(output.FormatCheckmark(fmt.Sprintf(
		"built and smoke-tested %d artifacts in %s", len(report.Artifacts), report.Duration.Round(timeRound),
	)))
	paths := make([]string, 0, len(report.Artifacts))
	for _, a := range report.Artifacts {
		output.Println(output.FormatArtifactLine(a.Name, platform))
		paths = append(paths, a.Path)
	}

	store := resolveStore(dir, bundleDir, rel)
	manifest := bundle.Manifest{
		Name:     release.PlatformBundleName(ch, platform),
		Channel:  ch.String(),
		Version:  cand.Version.String(),
		RC:       cand.RC,
		Platform: platform,
		RunID:    runID,
	}

	m, err := store.Upload(manifest, paths)
	if err != nil {
		return err
	}

	output.Println(output.FormatCheckmark("uploaded bundle " + m.Name))
	return nil
}

// hasChannel reports whether the channel list names the channel.
func hasChannel(channels []string, ch release.Channel) bool {
	for _, c := range channels {
		if c == ch.String() {
			return true
		}
	}
	return false
}
