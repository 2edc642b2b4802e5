// Package config provides configuration loading and management.
package config

import (
	"os"

	"github.com/stagehand/cli/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// candidate is one value in a precedence chain.
type candidate struct {
	source ConfigSource
	value  string
}

// pickValue selects the first candidate with a value and records the
// later non-empty ones as shadowed. The last candidate is the built-in
// default; shadowDefault controls whether it appears in the shadow
// record when outranked.
func pickValue(candidates []candidate, shadowDefault bool) (candidate, map[ConfigSource]string) {
	shadowed := make(map[ConfigSource]string)
	winner := candidates[len(candidates)-1]
	found := false

	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if !found {
			winner = c
			found = true
			continue
		}
		if c.source == SourceDefault && !shadowDefault {
			continue
		}
		shadowed[c.source] = c.value
	}

	return winner, shadowed
}

// ResolveBundleDirOptions contains options for bundle dir resolution.
type ResolveBundleDirOptions struct {
	// FlagValue is the --bundle-dir flag value (empty if not set).
	FlagValue string
	// ConfigValue is the bundleDir value from config file (empty if not set).
	ConfigValue string
}

// ResolveBundleDirResult contains the resolved bundle dir and its source.
type ResolveBundleDirResult struct {
	// BundleDir is the resolved bundle store root.
	BundleDir string
	// Source indicates where the bundle dir came from.
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolveBundleDir resolves the bundle store root using precedence:
// (1) --bundle-dir flag, (2) STAGEHAND_BUNDLE_DIR env, (3) config.bundleDir,
// (4) built-in default.
func ResolveBundleDir(opts ResolveBundleDirOptions) ResolveBundleDirResult {
	picked, shadowed := pickValue([]candidate{
		{SourceFlag, opts.FlagValue},
		{SourceEnv, os.Getenv("STAGEHAND_BUNDLE_DIR")},
		{SourceConfig, opts.ConfigValue},
		{SourceDefault, DefaultConfig().BundleDir},
	}, false)

	return ResolveBundleDirResult{
		BundleDir: picked.value,
		Source:    picked.source,
		Shadowed:  shadowed,
	}
}

// ResolveConfigPathOptions contains options for config path resolution.
type ResolveConfigPathOptions struct {
	// FlagValue is the --config flag value (empty if not set).
	FlagValue string
}

// ResolveConfigPathResult contains the resolved config path and its source.
type ResolveConfigPathResult struct {
	// ConfigPath is the resolved config file path.
	ConfigPath string
	// Source indicates where the config path came from.
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) STAGEHAND_CONFIG env, (3) ~/.stagehand/config.yaml
// default.
func ResolveConfigPath(opts ResolveConfigPathOptions) (ResolveConfigPathResult, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return ResolveConfigPathResult{}, err
	}

	picked, shadowed := pickValue([]candidate{
		{SourceFlag, opts.FlagValue},
		{SourceEnv, os.Getenv("STAGEHAND_CONFIG")},
		{SourceDefault, paths.ConfigFile},
	}, true)

	return ResolveConfigPathResult{
		ConfigPath: picked.value,
		Source:     picked.source,
		Shadowed:   shadowed,
	}, nil
}

// ResolvedValue is one configuration value with its resolution provenance.
type ResolvedValue struct {
	// Key is the configuration key.
	Key string
	// Value is the resolved value.
	Value string
	// Source indicates where the value came from.
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// LogResolvedValues logs configuration resolution at DEBUG level when verbose.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
