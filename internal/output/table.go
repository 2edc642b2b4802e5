package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// renderTable renders rows under headers with the shared border and
// header styling.
func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle := lipgloss.NewStyle()

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDimGray)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Rows(rows...).
		String()
}

// JobRow is one pipeline job for plan table output.
type JobRow struct {
	ID       string
	Kind     string
	Channel  string
	Platform string
	Needs    string
}

// RenderPlanTable renders the pipeline jobs as a table.
func RenderPlanTable(jobs []JobRow) string {
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{j.ID, j.Kind, j.Channel, j.Platform, j.Needs})
	}
	return renderTable([]string{"JOB", "KIND", "CHANNEL", "PLATFORM", "NEEDS"}, rows)
}

// BundleRow is one bundle for list table output.
type BundleRow struct {
	Name     string
	Channel  string
	Platform string
	Files    string
	Created  string
}

// RenderBundleTable renders stored bundles as a table.
func RenderBundleTable(bundles []BundleRow) string {
	rows := make([][]string, 0, len(bundles))
	for _, b := range bundles {
		rows = append(rows, []string{b.Name, b.Channel, b.Platform, b.Files, b.Created})
	}
	return renderTable([]string{"NAME", "CHANNEL", "PLATFORM", "FILES", "CREATED"}, rows)
}
