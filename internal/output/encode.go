package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// EnvVar is one KEY=VALUE pair for env-format output. Order is preserved.
type EnvVar struct {
	Key   string
	Value string
}

// WriteObject writes v to the writer in the specified format.
func WriteObject(v any, format OutputFormat, w io.Writer) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		err := encoder.Encode(v)
		if closeErr := encoder.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		return err
	case FormatTable, FormatEnv:
		return fmt.Errorf("format %s not supported for object output", format)
	}

	// Default to YAML
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	err := encoder.Encode(v)
	if closeErr := encoder.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// WriteEnv writes KEY=VALUE lines in the given order, one per line. The
// output is suitable for appending to a CI environment file.
func WriteEnv(vars []EnvVar, w io.Writer) error {
	for _, v := range vars {
		if _, err := fmt.Fprintf(w, "%s=%s\n", v.Key, v.Value); err != nil {
			return err
		}
	}
	return nil
}
