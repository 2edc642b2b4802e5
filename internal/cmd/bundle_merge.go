// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/bundle"
	"github.com/stagehand/cli/internal/output"
	"github.com/stagehand/cli/internal/release"
)

// NewBundleMergeCmd creates the bundle merge command.
func NewBundleMergeCmd() *cobra.Command {
	var sf storeFlags
	var tf TriggerFlags
	var (
		channelFlag string
		keepFlag    bool
		runIDFlag   string
	)

	cmd := &cobra.Command{
		Use:   "merge [sources...]",
		Short: "Merge per-platform bundles into the channel bundle",
		Long: `Merge a channel's per-platform bundles into its release-candidate
bundle.

Without source arguments the channel's bundle for every platform in the
release matrix is merged. Files appearing in more than one source must be
identical; a same-name content conflict fails the merge with the sources
left in place. On success the per-platform bundles are deleted unless
--keep is set.

The candidate is read from the source manifests; pass --tag or
--release-version and --rc to pin it explicitly.

Examples:
  # Merge all pypi platform bundles
  stagehand bundle merge --channel pypi

  # Merge named sources, keeping them afterwards
  stagehand bundle merge --channel svn --keep svn-release-candidate-ubuntu-22.04 svn-release-candidate-macos-14`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundleMerge(cmd, args, &sf, &tf, channelFlag, keepFlag, runIDFlag)
		},
	}

	sf.AddTo(cmd)
	tf.AddTo(cmd)
	cmd.Flags().StringVar(&channelFlag, "channel", "", "Publication channel to merge (svn, pypi)")
	cmd.Flags().BoolVar(&keepFlag, "keep", false, "Keep the source bundles after merging")
	cmd.Flags().StringVar(&runIDFlag, "run-id", "", "Run identifier stamped into the merged bundle")
	_ = cmd.MarkFlagRequired("channel")

	return cmd
}

func runBundleMerge(_ *cobra.Command, args []string, sf *storeFlags, tf *TriggerFlags, channel string, keep bool, runID string) error {
	h, err := sf.Open()
	if err != nil {
		return err
	}

	ch, err := release.ParseChannel(channel)
	if err != nil {
		return err
	}

	sources := args
	if len(sources) == 0 {
		sources = make([]string, 0, len(h.release.Platforms))
		for _, platform := range h.release.Platforms {
			sources = append(sources, release.PlatformBundleName(ch, platform))
		}
	}

	cand, err := mergeCandidate(h, tf, sources)
	if err != nil {
		return err
	}

	m, err := h.store.Merge(ch, cand, sources, bundle.MergeOptions{
		Keep:  keep,
		RunID: runID,
	})
	if err != nil {
		return err
	}

	output.Println(output.FormatCheckmark("merged " + m.Name))
	for _, src := range m.MergedFrom {
		output.Println("  " + output.StyleDim.Render("← "+src))
	}
	for _, f := range m.Files {
		output.Println(output.FormatCheckLine(f.Path, output.FormatBytes(f.Size)))
	}

	return nil
}

// mergeCandidate resolves the candidate for a merge: explicit trigger
// inputs win, otherwise the first source manifest supplies it. Merge
// itself still checks every source against the result.
func mergeCandidate(h *storeHandle, tf *TriggerFlags, sources []string) (release.Candidate, error) {
	if !tf.Empty() {
		_, cand, err := tf.Resolve(h.release.Project)
		return cand, err
	}

	m, err := h.store.Get(sources[0])
	if err != nil {
		return release.Candidate{}, err
	}
	return release.NewCandidate(m.Version, m.RC)
}
