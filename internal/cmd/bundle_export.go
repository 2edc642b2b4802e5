// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/bundle"
	"github.com/stagehand/cli/internal/output"
)

// NewBundleExportCmd creates the bundle export command.
func NewBundleExportCmd() *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "export <name> [dest]",
		Short: "Export a bundle as a tar.xz archive",
		Long: `Export a stored bundle, manifest included, as a tar.xz archive.

The archive can be moved between machines and restored with
'stagehand bundle import'.

Arguments:
  name    Bundle to export
  dest    Archive path (default: <name>` + bundle.ArchiveSuffix + ` in the working directory)

Examples:
  # Export next to the working directory
  stagehand bundle export pypi-release-candidate-0.8.0rc2

  # Export to an explicit path
  stagehand bundle export pypi-release-candidate-0.8.0rc2 /tmp/candidate.tar.xz`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundleExport(cmd, args, &sf)
		},
	}

	sf.AddTo(cmd)

	return cmd
}

func runBundleExport(_ *cobra.Command, args []string, sf *storeFlags) error {
	h, err := sf.Open()
	if err != nil {
		return err
	}

	dest := ""
	if len(args) == 2 {
		dest = args[1]
	}

	path, err := h.store.Export(args[0], dest)
	if err != nil {
		return err
	}

	output.Println(output.FormatCheckmark("exported " + args[0] + " to " + path))
	return nil
}
