package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ModifiedItem represents a changed file for diff rendering.
type ModifiedItem struct {
	Name string
	Diff string
}

// RenderDiff renders a bundle comparison. It takes raw name lists rather
// than the bundle types directly so it stays free of import cycles.
func RenderDiff(added, removed []string, modified []ModifiedItem, styles *Styles) string {
	if len(added)+len(removed)+len(modified) == 0 {
		return "No changes detected."
	}

	var sb strings.Builder

	section := func(title, marker string, style lipgloss.Style, names []string) {
		if len(names) == 0 {
			return
		}
		sb.WriteString(style.Render(title))
		sb.WriteByte('\n')
		for _, name := range names {
			fmt.Fprintf(&sb, "  %s %s\n", marker, style.Render(name))
		}
		sb.WriteByte('\n')
	}

	section("Added:", "+", styles.Success, added)
	section("Removed:", "-", styles.Error, removed)

	if len(modified) > 0 {
		sb.WriteString(styles.Warning.Render("Modified:"))
		sb.WriteByte('\n')
		for _, mod := range modified {
			fmt.Fprintf(&sb, "  ~ %s\n", styles.Warning.Render(mod.Name))
			sb.WriteString(indentDiff(mod.Diff, "    "))
			sb.WriteByte('\n')
		}
	}

	fmt.Fprintf(&sb, "Summary: %s\n", diffSummary(len(added), len(removed), len(modified)))
	return sb.String()
}

// indentDiff indents a diff body for display under a file name, dropping
// blank lines.
func indentDiff(diff, indent string) string {
	if diff == "" {
		return ""
	}

	var sb strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		if line != "" {
			sb.WriteString(indent)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// diffSummary formats counts as "1 added, 2 removed, 3 modified".
func diffSummary(added, removed, modified int) string {
	parts := make([]string, 0, 3)
	if added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", added))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", removed))
	}
	if modified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", modified))
	}
	if len(parts) == 0 {
		return "No changes"
	}
	return strings.Join(parts, ", ")
}
