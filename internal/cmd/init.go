// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/config"
	"github.com/stagehand/cli/internal/output"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	var (
		dirFlag   string
		forceFlag bool
	)

	cmd := &cobra.Command{
		Use:   "init [project]",
		Short: "Write a starter release file",
		Long: `Write a starter ` + config.ReleaseFileName + ` to the project directory.

The file declares the project name, the publication channels, the platform
matrix, and the build and smoke-test command templates. Edit it to match
the project; every value has a sensible default.

Arguments:
  project    Project name used as the tag prefix (default: ` + config.DefaultProject + `)

Examples:
  # Write the release file for the default project
  stagehand init

  # Write the release file for another project
  stagehand init my-package --dir ./my-package

  # Overwrite an existing release file
  stagehand init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args, dirFlag, forceFlag)
		},
	}

	cmd.Flags().StringVar(&dirFlag, "dir", ".", "Project directory")
	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Overwrite an existing release file")

	return cmd
}

func runInit(_ *cobra.Command, args []string, dir string, force bool) error {
	project := config.DefaultProject
	if len(args) == 1 {
		project = args[0]
	}

	rel := config.DefaultRelease(project)
	path, err := config.WriteRelease(dir, rel, force)
	if err != nil {
		return err
	}

	output.Println(output.FormatCheckmark("wrote " + path))
	output.Println("")
	output.Println("Next steps:")
	output.Println("  1. Adjust channels, platforms, and build commands as needed")
	output.Println("  2. Check a candidate with: stagehand verify --tag " + rel.Project + "-0.1.0rc1")
	output.Println("  3. Preview the pipeline with: stagehand plan")

	return nil
}
