// Package cmd provides CLI command implementations.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/output"
	"github.com/stagehand/cli/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show stagehand version information.

Displays:
  - stagehand version, commit, and build date
  - poetry binary version and compatibility`,
		RunE: runVersion,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	poetryInfo := version.DetectPoetry()

	output.Println(fmt.Sprintf("stagehand version %s", info.Version))
	output.Println(fmt.Sprintf("  Commit:    %s", info.GitCommit))
	output.Println(fmt.Sprintf("  Built:     %s", info.BuildDate))
	output.Println(fmt.Sprintf("  Go:        %s", info.GoVersion))
	output.Println("")
	output.Println("Poetry:")
	output.Println(poetryInfo.String())

	if poetryInfo.Found && !poetryInfo.Supported {
		output.Warn("poetry binary version unsupported",
			"minimum", version.MinPoetryVersion,
			"found", poetryInfo.Version,
			"message", poetryInfo.Message,
		)
	}

	return nil
}
