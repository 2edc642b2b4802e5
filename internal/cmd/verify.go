// Package cmd provides CLI command implementations.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/output"
	"github.com/stagehand/cli/internal/project"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	var tf TriggerFlags
	var (
		dirFlag          string
		usePyprojectFlag bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the candidate against the project version",
		Long: `Validate the release trigger, then check that the version the project
declares matches the validated release version exactly.

The declared version is read via the poetry binary when it is available,
falling back to pyproject.toml. Any mismatch fails the run before any
build work starts.

Examples:
  # Verify a pushed tag against the project in the current directory
  stagehand verify --tag pyiceberg-0.8.0rc2

  # Verify explicit inputs against another checkout
  stagehand verify --release-version 0.8.0 --rc 2 --dir ../pyiceberg

  # Force the pyproject.toml accessor
  stagehand verify --tag pyiceberg-0.8.0rc2 --use-pyproject`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args, &tf, dirFlag, usePyprojectFlag)
		},
	}

	tf.AddTo(cmd)
	cmd.Flags().StringVar(&dirFlag, "dir", ".", "Project directory")
	cmd.Flags().BoolVar(&usePyprojectFlag, "use-pyproject", false, "Read the declared version from pyproject.toml instead of poetry")

	return cmd
}

func runVerify(_ *cobra.Command, _ []string, tf *TriggerFlags, dir string, usePyproject bool) error {
	ctx := context.Background()

	rel, err := loadProjectRelease(dir)
	if err != nil {
		return err
	}

	_, cand, err := tf.Resolve(rel.Project)
	if err != nil {
		return err
	}
	output.Println(output.FormatCheckLine("trigger validated", cand.Qualified()))

	var src project.VersionSource
	if usePyproject {
		src = project.NewPyProjectSource(dir)
	} else {
		src = project.ResolveSource(dir, GetGlobalConfig().Config.Poetry)
	}

	if err := project.Check(ctx, src, cand); err != nil {
		return err
	}

	detail := fmt.Sprintf("%s declares %s", src.Name(), cand.Version.String())
	output.Println(output.FormatCheckLine("version consistent", detail))

	return nil
}
