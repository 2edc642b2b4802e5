package output

import (
	"fmt"
	"strings"
)

// OutputFormat specifies the output format.
type OutputFormat string

const (
	// FormatYAML outputs in YAML format.
	FormatYAML OutputFormat = "yaml"

	// FormatJSON outputs in JSON format.
	FormatJSON OutputFormat = "json"

	// FormatTable outputs in table format.
	FormatTable OutputFormat = "table"

	// FormatEnv outputs KEY=VALUE lines for shell or CI consumption.
	FormatEnv OutputFormat = "env"
)

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// Valid checks if the output format is known.
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatYAML, FormatJSON, FormatTable, FormatEnv:
		return true
	default:
		return false
	}
}

// ParseOutputFormat parses a string into an OutputFormat. The second return
// reports whether the input named a known format.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML, true
	case "json":
		return FormatJSON, true
	case "table":
		return FormatTable, true
	case "env":
		return FormatEnv, true
	default:
		return OutputFormat(s), false
	}
}

// ValidFormats returns a slice of valid output format strings.
func ValidFormats() []string {
	return []string{"yaml", "json", "table", "env"}
}

// ValidResolveFormats returns valid formats for the validate command.
func ValidResolveFormats() []string {
	return []string{"env", "json", "yaml"}
}

// ValidListFormats returns valid formats for listing commands.
func ValidListFormats() []string {
	return []string{"table", "json", "yaml"}
}

// FormatBytes renders a byte count in binary units.
func FormatBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%dB", v)
	}
	div, exp := int64(unit), 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(v)/float64(div), "KMGTPE"[exp])
}
