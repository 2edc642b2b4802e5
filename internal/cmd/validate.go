// Package cmd provides CLI command implementations.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/output"
)

// validateResult is the machine-readable product of trigger validation.
type validateResult struct {
	Project   string `json:"project" yaml:"project"`
	Trigger   string `json:"trigger" yaml:"trigger"`
	Version   string `json:"version" yaml:"version"`
	RC        string `json:"rc" yaml:"rc"`
	Candidate string `json:"candidate" yaml:"candidate"`
}

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	var tf TriggerFlags
	var (
		dirFlag        string
		outputFileFlag string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the release trigger",
		Long: `Validate the release trigger and print the resolved candidate.

A run starts from exactly one of two triggers: a pushed tag of the form
<project>-<version>rc<n>, or explicit --release-version and --rc inputs.
The trigger is validated into the VERSION and RC values every later stage
consumes.

Output defaults to KEY=VALUE lines for shell or CI consumption; use
--output-file to append them to an environment file.

Examples:
  # Validate a pushed tag
  stagehand validate --tag pyiceberg-0.8.0rc2

  # Validate explicit inputs
  stagehand validate --release-version 0.8.0 --rc 2

  # Append VERSION and RC to a CI environment file
  stagehand validate --tag pyiceberg-0.8.0rc2 --output-file "$GITHUB_ENV"

  # Machine-readable output
  stagehand validate --tag pyiceberg-0.8.0rc2 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, &tf, dirFlag, outputFileFlag)
		},
	}

	tf.AddTo(cmd)
	cmd.Flags().StringVar(&dirFlag, "dir", ".", "Project directory")
	cmd.Flags().StringVar(&outputFileFlag, "output-file", "", "File to append VERSION and RC lines to")

	return cmd
}

func runValidate(_ *cobra.Command, _ []string, tf *TriggerFlags, dir, outputFile string) error {
	format := outputFormatOr(output.FormatEnv)
	if format != output.FormatEnv && format != output.FormatJSON && format != output.FormatYAML {
		return serrors.NewValidationError(
			"unsupported output format",
			"output",
			format.String(),
			"Valid formats: "+strings.Join(output.ValidResolveFormats(), ", "),
		)
	}

	rel, err := loadProjectRelease(dir)
	if err != nil {
		return err
	}

	trig, cand, err := tf.Resolve(rel.Project)
	if err != nil {
		return err
	}

	result := validateResult{
		Project:   rel.Project,
		Trigger:   string(trig.Kind()),
		Version:   cand.Version.String(),
		RC:        cand.RC,
		Candidate: cand.Qualified(),
	}

	envVars := []output.EnvVar{
		{Key: "VERSION", Value: result.Version},
		{Key: "RC", Value: result.RC},
	}

	if outputFile != "" {
		if err := appendEnvFile(outputFile, envVars); err != nil {
			return fmt.Errorf("appending to %s: %w", outputFile, err)
		}
		output.Debug("appended outputs", "file", outputFile)
	}

	output.Info("release candidate validated",
		"candidate", result.Candidate,
		"trigger", result.Trigger,
	)

	if format == output.FormatEnv {
		return output.WriteEnv(envVars, os.Stdout)
	}
	return output.WriteObject(result, format, os.Stdout)
}

// appendEnvFile appends KEY=VALUE lines to the file, creating it when
// missing. This matches the append contract of CI environment files.
func appendEnvFile(path string, vars []output.EnvVar) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	writeErr := output.WriteEnv(vars, f)
	if closeErr := f.Close(); closeErr != nil && writeErr == nil {
		writeErr = closeErr
	}
	return writeErr
}
