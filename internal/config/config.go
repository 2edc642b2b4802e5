// Package config provides configuration loading and management.
package config

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty"`
}

// Config represents the stagehand CLI user configuration.
// Loaded from ~/.stagehand/config.yaml.
type Config struct {
	// Poetry is the path to the poetry binary.
	// Env: STAGEHAND_POETRY, Default: "poetry" from PATH
	Poetry string `json:"poetry,omitempty"`

	// BundleDir is the bundle store root, relative paths resolve against
	// the project directory.
	// Env: STAGEHAND_BUNDLE_DIR, Default: "dist/bundles"
	BundleDir string `json:"bundleDir,omitempty"`

	// Concurrency caps parallel build jobs in a local run.
	// Env: STAGEHAND_CONCURRENCY, Default: 0 (one worker per platform)
	Concurrency int `json:"concurrency,omitempty"`

	// Log contains logging-related settings.
	Log LogConfig `json:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *Config {
	return &Config{
		Poetry:    "poetry",
		BundleDir: "dist/bundles",
	}
}

// WithDefaults returns a copy of the config with defaults filled in for
// unset values.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.Poetry == "" {
		out.Poetry = "poetry"
	}
	if out.BundleDir == "" {
		out.BundleDir = "dist/bundles"
	}
	return &out
}

// GlobalConfig holds CLI-wide configuration resolved during
// PersistentPreRunE. It is populated once at startup and passed explicitly
// into every sub-command constructor.
type GlobalConfig struct {
	// Config is the loaded user configuration with defaults applied.
	Config *Config

	// ConfigPath is the resolved --config path.
	ConfigPath string

	// Verbose enables debug logging.
	Verbose bool
}
