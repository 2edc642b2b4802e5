// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/config"
	"github.com/stagehand/cli/internal/output"
)

var (
	// Global flags
	configFlag       string
	outputFormatFlag string
	verboseFlag      bool
	timestampsFlag   bool

	// Resolved configuration (loaded during PersistentPreRunE)
	globalConfig *config.GlobalConfig
)

// NewRootCmd creates the root command for the stagehand CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stagehand",
		Short:         "Release candidate staging pipeline",
		Long:          `stagehand validates release candidates, builds and smoke-tests them per platform, and merges the results into per-channel bundles.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd)
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: STAGEHAND_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&outputFormatFlag, "output", "o", "", "Output format; each command picks its own default")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewPlanCmd())
	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewBundleCmd())

	return rootCmd
}

// initializeGlobals sets up logging and loads configuration.
func initializeGlobals(cmd *cobra.Command) error {
	resolved, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{
		FlagValue: configFlag,
	})
	if err != nil {
		return err
	}

	cfg, err := config.NewLoader().LoadWithDefaults(resolved.ConfigPath)
	if err != nil {
		return err
	}

	globalConfig = &config.GlobalConfig{
		Config:     cfg,
		ConfigPath: resolved.ConfigPath,
		Verbose:    verboseFlag,
	}

	// Build LogConfig with precedence: flag > config > default(true)
	logCfg := output.LogConfig{
		Verbose: verboseFlag,
	}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if cfg.Log.Timestamps != nil {
		logCfg.Timestamps = cfg.Log.Timestamps
	}
	// else: nil means SetupLogging defaults to true

	output.SetupLogging(logCfg)

	if verboseFlag {
		config.LogResolvedValues([]config.ResolvedValue{
			{Key: "config", Value: resolved.ConfigPath, Source: resolved.Source, Shadowed: resolved.Shadowed},
		})
	}

	return nil
}

// GetGlobalConfig returns the configuration resolved at startup.
func GetGlobalConfig() *config.GlobalConfig {
	if globalConfig == nil {
		return &config.GlobalConfig{Config: config.DefaultConfig()}
	}
	return globalConfig
}

// outputFormatOr returns the global --output flag value, or def when the
// flag was not set.
func outputFormatOr(def output.OutputFormat) output.OutputFormat {
	if outputFormatFlag == "" {
		return def
	}
	return output.OutputFormat(outputFormatFlag)
}
