// Package cmd provides CLI command implementations.
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/output"
)

// NewBundleShowCmd creates the bundle show command.
func NewBundleShowCmd() *cobra.Command {
	var sf storeFlags
	var verifyFlag bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show one bundle manifest",
		Long: `Show a stored bundle: its manifest fields and its file tree.

Examples:
  # Show a bundle
  stagehand bundle show pypi-release-candidate-macos-14

  # Show the raw manifest
  stagehand bundle show pypi-release-candidate-macos-14 -o yaml

  # Re-verify the stored files against their manifest digests
  stagehand bundle show pypi-release-candidate-macos-14 --verify`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundleShow(cmd, args, &sf, verifyFlag)
		},
	}

	sf.AddTo(cmd)
	cmd.Flags().BoolVar(&verifyFlag, "verify", false, "Verify the stored files against their digests")

	return cmd
}

func runBundleShow(_ *cobra.Command, args []string, sf *storeFlags, verify bool) error {
	format := outputFormatOr("")
	if format != "" && format != output.FormatJSON && format != output.FormatYAML {
		return serrors.NewValidationError(
			"unsupported output format",
			"output",
			format.String(),
			"Valid formats: json, yaml",
		)
	}

	h, err := sf.Open()
	if err != nil {
		return err
	}

	m, err := h.store.Get(args[0])
	if err != nil {
		return err
	}

	if verify {
		if err := h.store.VerifyFiles(m); err != nil {
			return err
		}
	}

	if format != "" {
		return output.WriteObject(m, format, os.Stdout)
	}

	output.Println("Name:      " + m.Name)
	output.Println("Channel:   " + m.Channel)
	output.Println("Candidate: " + m.Qualified())
	if m.Platform != "" {
		output.Println("Platform:  " + m.Platform)
	}
	if m.RunID != "" {
		output.Println("Run:       " + m.RunID)
	}
	output.Println("Created:   " + m.CreatedAt.Format("2006-01-02 15:04:05"))
	if m.Merged() {
		output.Println("Merged from:")
		for _, src := range m.MergedFrom {
			output.Println("  - " + src)
		}
	}
	output.Println("")

	files := make(map[string]string, len(m.Files))
	for _, f := range m.Files {
		files[f.Path] = output.FormatBytes(f.Size)
	}
	output.Println(strings.TrimRight(output.RenderFileTree(m.Name, files), "\n"))

	if verify {
		output.Println("")
		output.Println(output.FormatCheckmark("all file digests verified"))
	}

	return nil
}
