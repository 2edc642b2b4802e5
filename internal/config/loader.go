package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable prefix for stagehand configuration.
const envPrefix = "STAGEHAND"

// Loader reads the user config file and merges STAGEHAND_* environment
// variables over it.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a configuration loader with the environment bindings
// registered.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees environment values for explicitly bound keys.
	_ = v.BindEnv("poetry", "STAGEHAND_POETRY")
	_ = v.BindEnv("bundleDir", "STAGEHAND_BUNDLE_DIR")
	_ = v.BindEnv("concurrency", "STAGEHAND_CONCURRENCY")
	_ = v.BindEnv("log.timestamps", "STAGEHAND_LOG_TIMESTAMPS")

	return &Loader{v: v}
}

// Load reads configuration from configFile, or from the default location
// when configFile is empty. A missing file is not an error: the result
// then carries only environment values.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	path, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	l.v.SetConfigFile(path)
	l.v.SetConfigType("yaml")

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// LoadWithDefaults loads configuration and fills unset values with the
// built-in defaults.
func (l *Loader) LoadWithDefaults(configFile string) (*Config, error) {
	cfg, err := l.Load(configFile)
	if err != nil {
		return nil, err
	}
	return cfg.WithDefaults(), nil
}
