// Package cmd provides CLI command implementations.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/bundle"
	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/output"
)

// NewBundleListCmd creates the bundle list command.
func NewBundleListCmd() *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored bundles",
		Long: `List the bundles in the store, oldest first.

Examples:
  # List bundles as a table
  stagehand bundle list

  # List bundles as JSON
  stagehand bundle list -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundleList(cmd, args, &sf)
		},
	}

	sf.AddTo(cmd)

	return cmd
}

func runBundleList(_ *cobra.Command, _ []string, sf *storeFlags) error {
	format := outputFormatOr(output.FormatTable)
	if format != output.FormatTable && format != output.FormatJSON && format != output.FormatYAML {
		return serrors.NewValidationError(
			"unsupported output format",
			"output",
			format.String(),
			"Valid formats: "+strings.Join(output.ValidListFormats(), ", "),
		)
	}

	h, err := sf.Open()
	if err != nil {
		return err
	}

	manifests, err := h.store.List()
	if err != nil {
		return err
	}

	if format != output.FormatTable {
		return output.WriteObject(manifests, format, os.Stdout)
	}

	if len(manifests) == 0 {
		output.Println("No bundles in " + h.store.Root())
		return nil
	}

	rows := make([]output.BundleRow, 0, len(manifests))
	for _, m := range manifests {
		rows = append(rows, output.BundleRow{
			Name:     m.Name,
			Channel:  m.Channel,
			Platform: platformColumn(m),
			Files:    fmt.Sprintf("%d (%s)", len(m.Files), output.FormatBytes(totalSize(m))),
			Created:  m.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	output.Println(output.RenderBundleTable(rows))

	return nil
}

// platformColumn renders the platform cell; merged bundles have none.
func platformColumn(m *bundle.Manifest) string {
	if m.Merged() {
		return "(merged)"
	}
	return m.Platform
}

// totalSize sums the stored file sizes.
func totalSize(m *bundle.Manifest) int64 {
	var total int64
	for _, f := range m.Files {
		total += f.Size
	}
	return total
}
