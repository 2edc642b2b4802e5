// Package cmd provides CLI command implementations.
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	serrors "github.com/stagehand/cli/internal/errors"
	"github.com/stagehand/cli/internal/output"
	"github.com/stagehand/cli/internal/pipeline"
)

// planJob is one job of the rendered plan.
type planJob struct {
	ID       string   `json:"id" yaml:"id"`
	Kind     string   `json:"kind" yaml:"kind"`
	Channel  string   `json:"channel,omitempty" yaml:"channel,omitempty"`
	Platform string   `json:"platform,omitempty" yaml:"platform,omitempty"`
	Needs    []string `json:"needs,omitempty" yaml:"needs,omitempty"`
}

// planResult is the machine-readable plan.
type planResult struct {
	Project   string    `json:"project" yaml:"project"`
	Candidate string    `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Channels  []string  `json:"channels" yaml:"channels"`
	Platforms []string  `json:"platforms" yaml:"platforms"`
	Jobs      []planJob `json:"jobs" yaml:"jobs"`
}

// NewPlanCmd creates the plan command.
func NewPlanCmd() *cobra.Command {
	var tf TriggerFlags
	var (
		dirFlag       string
		platformsFlag []string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the pipeline jobs without running them",
		Long: `Materialize the release pipeline for the project and render it.

The pipeline is two validation gates followed by one build job per channel
and platform, then one merge job per channel. Nothing is executed; the
plan shows exactly which jobs a run would schedule and what each waits
for.

Examples:
  # Show the full pipeline
  stagehand plan

  # Show the pipeline for a narrowed platform matrix
  stagehand plan --platforms ubuntu-22.04,macos-14

  # Label the plan with a candidate and emit JSON
  stagehand plan --tag pyiceberg-0.8.0rc2 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args, &tf, dirFlag, platformsFlag)
		},
	}

	tf.AddTo(cmd)
	cmd.Flags().StringVar(&dirFlag, "dir", ".", "Project directory")
	cmd.Flags().StringSliceVar(&platformsFlag, "platforms", nil, "Narrow the platform matrix to these labels")

	return cmd
}

func runPlan(_ *cobra.Command, _ []string, tf *TriggerFlags, dir string, platforms []string) error {
	format := outputFormatOr(output.FormatTable)
	if format != output.FormatTable && format != output.FormatJSON && format != output.FormatYAML {
		return serrors.NewValidationError(
			"unsupported output format",
			"output",
			format.String(),
			"Valid formats: "+strings.Join(output.ValidListFormats(), ", "),
		)
	}

	rel, err := loadProjectRelease(dir)
	if err != nil {
		return err
	}

	rel, err = narrowPlatforms(rel, platforms)
	if err != nil {
		return err
	}

	result := planResult{
		Project:   rel.Project,
		Channels:  rel.Channels,
		Platforms: rel.Platforms,
	}

	// The candidate does not shape the graph; resolving it here only
	// labels the plan and fails fast on bad trigger inputs.
	if !tf.Empty() {
		_, cand, err := tf.Resolve(rel.Project)
		if err != nil {
			return err
		}
		result.Candidate = cand.Qualified()
	}

	p, err := pipeline.NewPlan(rel)
	if err != nil {
		return err
	}

	for _, job := range p.Jobs() {
		result.Jobs = append(result.Jobs, planJob{
			ID:       job.ID,
			Kind:     string(job.Kind),
			Channel:  job.Channel.String(),
			Platform: job.Platform,
			Needs:    job.Needs,
		})
	}

	if format != output.FormatTable {
		return output.WriteObject(result, format, os.Stdout)
	}

	output.Println("Project:   " + result.Project)
	if result.Candidate != "" {
		output.Println("Candidate: " + result.Candidate)
	}
	output.Println("")

	rows := make([]output.JobRow, 0, len(result.Jobs))
	for _, j := range result.Jobs {
		rows = append(rows, output.JobRow{
			ID:       j.ID,
			Kind:     j.Kind,
			Channel:  j.Channel,
			Platform: j.Platform,
			Needs:    strings.Join(j.Needs, ", "),
		})
	}
	output.Println(output.RenderPlanTable(rows))

	return nil
}
