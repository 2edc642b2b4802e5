package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Paths holds the per-user filesystem locations stagehand reads from.
type Paths struct {
	// HomeDir is the stagehand settings directory, ~/.stagehand.
	HomeDir string

	// ConfigFile is the user config file inside HomeDir.
	ConfigFile string
}

// DefaultPaths locates the stagehand settings directory under the current
// user's home.
func DefaultPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(home, ".stagehand")
	return &Paths{
		HomeDir:    dir,
		ConfigFile: filepath.Join(dir, "config.yaml"),
	}, nil
}

// GetConfigFile returns the user config file path, honoring
// STAGEHAND_CONFIG when set.
func GetConfigFile() (string, error) {
	if p := os.Getenv("STAGEHAND_CONFIG"); p != "" {
		return p, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

// ExpandPath replaces a leading ~ with the user's home directory. ~user
// forms are returned unchanged.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	rest := path[1:]
	if rest != "" && rest[0] != '/' && rest[0] != filepath.Separator {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, rest), nil
}
