// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stagehand/cli/internal/bundle"
	"github.com/stagehand/cli/internal/config"
)

// NewBundleCmd creates the bundle command group.
func NewBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Bundle store operations",
		Long: `Operate on the bundle store.

Bundles are immutable, digest-verified artifact sets: one per platform
build, and one merged bundle per channel. The store is a plain directory
tree; these commands list, inspect, merge, move, and compare its bundles.`,
	}

	// Add subcommands
	cmd.AddCommand(NewBundleListCmd())
	cmd.AddCommand(NewBundleShowCmd())
	cmd.AddCommand(NewBundleMergeCmd())
	cmd.AddCommand(NewBundleDeleteCmd())
	cmd.AddCommand(NewBundleExportCmd())
	cmd.AddCommand(NewBundleImportCmd())
	cmd.AddCommand(NewBundleDiffCmd())

	return cmd
}

// storeFlags are the store location flags every bundle subcommand takes.
type storeFlags struct {
	dir       string
	bundleDir string
}

// AddTo registers the store location flags on a command.
func (f *storeFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "dir", ".", "Project directory")
	cmd.Flags().StringVar(&f.bundleDir, "bundle-dir", "", "Bundle store root (env: STAGEHAND_BUNDLE_DIR)")
}

// Open resolves and opens the bundle store.
func (f *storeFlags) Open() (*storeHandle, error) {
	rel, err := loadProjectRelease(f.dir)
	if err != nil {
		return nil, err
	}
	return &storeHandle{
		release: rel,
		store:   resolveStore(f.dir, f.bundleDir, rel),
	}, nil
}

// storeHandle pairs an opened store with the release it belongs to.
type storeHandle struct {
	release *config.Release
	store   *bundle.Store
}
