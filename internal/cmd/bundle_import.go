// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/output"
)

// NewBundleImportCmd creates the bundle import command.
func NewBundleImportCmd() *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "import <archive>",
		Short: "Import a bundle from a tar.xz archive",
		Long: `Import a bundle archive produced by 'stagehand bundle export'.

Every extracted file is verified against the digests in the archived
manifest; a mismatch rejects the import and leaves the store unchanged.

Examples:
  # Import an exported bundle
  stagehand bundle import pypi-release-candidate-0.8.0rc2.tar.xz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundleImport(cmd, args, &sf)
		},
	}

	sf.AddTo(cmd)

	return cmd
}

func runBundleImport(_ *cobra.Command, args []string, sf *storeFlags) error {
	h, err := sf.Open()
	if err != nil {
		return err
	}

	m, err := h.store.Import(args[0])
	if err != nil {
		return err
	}

	output.Println(output.FormatCheckmark("imported " + m.Name))
	for _, f := range m.Files {
		output.Println(output.FormatCheckLine(f.Path, output.FormatBytes(f.Size)))
	}

	return nil
}
