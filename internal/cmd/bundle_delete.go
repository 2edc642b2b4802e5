// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/output"
)

// NewBundleDeleteCmd creates the bundle delete command.
func NewBundleDeleteCmd() *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "delete <name>...",
		Short: "Delete stored bundles",
		Long: `Delete one or more bundles from the store.

Bundles are immutable, so deleting is the only way to make room for a
re-staged candidate under the same name.

Examples:
  # Delete one bundle
  stagehand bundle delete pypi-release-candidate-macos-14

  # Delete a candidate's merged bundles
  stagehand bundle delete svn-release-candidate-0.8.0rc2 pypi-release-candidate-0.8.0rc2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundleDelete(cmd, args, &sf)
		},
	}

	sf.AddTo(cmd)

	return cmd
}

func runBundleDelete(_ *cobra.Command, args []string, sf *storeFlags) error {
	h, err := sf.Open()
	if err != nil {
		return err
	}

	for _, name := range args {
		if err := h.store.Delete(name); err != nil {
			return err
		}
		output.Println(output.FormatCheckmark("deleted " + name))
	}

	return nil
}
