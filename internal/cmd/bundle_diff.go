// Package cmd provides CLI command implementations.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/bundle"
	"github.com/stagehand/cli/internal/output"
)

// NewBundleDiffCmd creates the bundle diff command.
func NewBundleDiffCmd() *cobra.Command {
	var sf storeFlags
	var noColorFlag bool

	cmd := &cobra.Command{
		Use:   "diff <from> <to>",
		Short: "Compare two bundles",
		Long: `Compare two stored bundles.

Artifact files are compared by digest; the manifest metadata is compared
field by field with a YAML-aware diff.

Examples:
  # Compare a platform bundle against the merged bundle
  stagehand bundle diff pypi-release-candidate-macos-14 pypi-release-candidate-0.8.0rc2

  # Compare two candidates' merged bundles
  stagehand bundle diff pypi-release-candidate-0.8.0rc1 pypi-release-candidate-0.8.0rc2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundleDiff(cmd, args, &sf, noColorFlag)
		},
	}

	sf.AddTo(cmd)
	cmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colorized diff output")

	return cmd
}

func runBundleDiff(_ *cobra.Command, args []string, sf *storeFlags, noColor bool) error {
	h, err := sf.Open()
	if err != nil {
		return err
	}

	useColor := output.IsTTY() && !noColor

	result, err := h.store.Diff(args[0], args[1], bundle.DiffOptions{
		UseColor: useColor,
	})
	if err != nil {
		return err
	}

	styles := output.DefaultStyles()
	if !useColor {
		styles = output.NoColorStyles()
	}

	modified := make([]output.ModifiedItem, 0, len(result.Modified))
	for _, m := range result.Modified {
		modified = append(modified, output.ModifiedItem{Name: m.Name, Diff: m.Diff})
	}

	rendered := output.RenderDiff(result.Added, result.Removed, modified, styles)
	output.Println(strings.TrimRight(rendered, "\n"))

	return nil
}
