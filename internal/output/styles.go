package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette: named values for all ANSI 256 colors used in the CLI.
// These are the single source of truth; never use inline lipgloss.Color literals.
var (
	// colorCyan is used for identifiable nouns: job ids, bundle names, versions.
	colorCyan = lipgloss.Color("14")

	// colorGreen is used for the "succeeded" job status (bright, high-visibility).
	colorGreen = lipgloss.Color("82")

	// colorYellow is used for the "running" job status (medium visibility).
	colorYellow = lipgloss.Color("220")

	// colorRed is used for the "skipped" job status.
	colorRed = lipgloss.Color("196")

	// colorBoldRed is used for the "failed" job status (matches ERROR level).
	colorBoldRed = lipgloss.Color("204")

	// colorGreenCheck is used for the completion checkmark (✔).
	colorGreenCheck = lipgloss.Color("10")

	// colorDimGray is used for borders and other structural chrome.
	colorDimGray = lipgloss.Color("240")
)

// Semantic styles map domain concepts to visual presentation.
var (
	// StyleNoun styles identifiable nouns (job ids, bundle names, versions).
	StyleNoun = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleAction styles action verbs (validating, building, merging).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (prefixes, separators, hints).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Styles groups the styles handed to renderers, so tests can disable color
// for deterministic output.
type Styles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the colored style set.
func DefaultStyles() *Styles {
	return &Styles{
		Success: lipgloss.NewStyle().Foreground(colorGreen),
		Warning: lipgloss.NewStyle().Foreground(colorYellow),
		Error:   lipgloss.NewStyle().Foreground(colorRed),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),
	}
}

// NoColorStyles returns an unstyled set for deterministic test output.
func NoColorStyles() *Styles {
	return &Styles{
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Bold:    lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle(),
	}
}

// Job status strings as produced by the pipeline state machine.
const (
	statusPending   = "pending"
	statusRunning   = "running"
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
	statusSkipped   = "skipped"
)

// statusStyle returns the lipgloss style for a given job status string.
// Unknown statuses return an unstyled default.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case statusPending:
		return lipgloss.NewStyle().Faint(true)
	case statusRunning:
		return lipgloss.NewStyle().Foreground(colorYellow)
	case statusSucceeded:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case statusSkipped:
		return lipgloss.NewStyle().Foreground(colorRed)
	case statusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(colorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minJobColumnWidth is the minimum width for the job id column before the
// status suffix. This ensures status words align consistently.
const minJobColumnWidth = 40

// FormatJobLine renders a job identifier with a right-aligned, color-coded
// status suffix.
//
// Format: j:<kind/channel/platform>  <status>
//
// The "j:" prefix is dim, the id is cyan, and the status uses statusStyle.
func FormatJobLine(id, status string) string {
	padding := minJobColumnWidth - len(id)
	if padding < 2 {
		padding = 2
	}

	prefix := StyleDim.Render("j:")
	styledID := StyleNoun.Render(id)
	styledStatus := statusStyle(status).Render(status)

	return prefix + styledID + strings.Repeat(" ", padding) + styledStatus
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(colorGreenCheck).Render("✔")
	return check + " " + msg
}

// minCheckLabelWidth is the minimum width for the check label column before
// the detail suffix, so details align across consecutive check lines.
const minCheckLabelWidth = 32

// FormatCheckLine renders a passed check with an optional dim detail column.
//
// Format: ✔ <label>  <detail>
func FormatCheckLine(label, detail string) string {
	check := lipgloss.NewStyle().Foreground(colorGreenCheck).Render("✔")
	if detail == "" {
		return check + " " + label
	}

	padding := minCheckLabelWidth - len(label)
	if padding < 2 {
		padding = 2
	}

	return check + " " + label + strings.Repeat(" ", padding) + StyleDim.Render(detail)
}

// FormatArtifactLine renders an artifact with the platform that produced it.
//
// Format: ▸ <artifact> ← <platform>
func FormatArtifactLine(artifact, platform string) string {
	bullet := StyleDim.Render("▸")
	arrow := StyleDim.Render("←")
	return fmt.Sprintf("  %s %s %s %s", bullet, StyleNoun.Render(artifact), arrow, platform)
}
