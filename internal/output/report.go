package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ReportOptions controls run report output.
type ReportOptions struct {
	// JSON outputs structured JSON instead of human-readable text
	JSON bool
	// Writer is the output destination
	Writer io.Writer
}

// RunReport is the structured result of one pipeline run.
type RunReport struct {
	RunID     string         `json:"runId"`
	Project   string         `json:"project"`
	Candidate string         `json:"candidate"`
	Version   string         `json:"version"`
	RC        string         `json:"rc"`
	Jobs      []JobReport    `json:"jobs"`
	Bundles   []BundleReport `json:"bundles,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// JobReport describes one job's outcome.
type JobReport struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Duration string `json:"duration,omitempty"`
	Error    string `json:"error,omitempty"`
}

// BundleReport describes one bundle produced by the run.
type BundleReport struct {
	Name    string   `json:"name"`
	Channel string   `json:"channel"`
	Files   []string `json:"files"`
}

// WriteRunReport writes the report of a pipeline run.
func WriteRunReport(report *RunReport, opts ReportOptions) error {
	if opts.JSON {
		return writeReportJSON(report, opts.Writer)
	}
	return writeReportHuman(report, opts.Writer)
}

// writeReportJSON writes the report as JSON.
func writeReportJSON(report *RunReport, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// writeReportHuman writes the report in human-readable format.
func writeReportHuman(report *RunReport, w io.Writer) error {
	var sb strings.Builder

	// Release info
	sb.WriteString("Release:\n")
	sb.WriteString(fmt.Sprintf("  Project:   %s\n", report.Project))
	sb.WriteString(fmt.Sprintf("  Candidate: %s\n", report.Candidate))
	sb.WriteString(fmt.Sprintf("  Version:   %s\n", report.Version))
	sb.WriteString(fmt.Sprintf("  RC:        %s\n", report.RC))
	sb.WriteString("\n")

	// Job outcomes
	if len(report.Jobs) > 0 {
		sb.WriteString("Jobs:\n")
		for _, job := range report.Jobs {
			sb.WriteString("  " + FormatJobLine(job.ID, job.Status))
			if job.Duration != "" {
				sb.WriteString("  " + StyleDim.Render(job.Duration))
			}
			sb.WriteString("\n")
			if job.Error != "" {
				sb.WriteString(fmt.Sprintf("      %s\n", job.Error))
			}
		}
		sb.WriteString("\n")
	}

	// Bundles
	if len(report.Bundles) > 0 {
		sb.WriteString("Bundles:\n")
		for _, b := range report.Bundles {
			sb.WriteString("  " + FormatCheckmark(b.Name) + "\n")
			for _, f := range b.Files {
				sb.WriteString("      " + StyleDim.Render(f) + "\n")
			}
		}
		sb.WriteString("\n")
	}

	// Warnings
	if len(report.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, warning := range report.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", warning))
		}
		sb.WriteString("\n")
	}

	// Errors
	if len(report.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range report.Errors {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", e))
		}
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}
