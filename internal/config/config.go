// Package config loads allcode settings from defaults, an optional
// config file, ALLCODE_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/allcode-tools/allcode/internal/logging"
)

// EnvPrefix is the prefix of environment variables read by Load.
// The variable for key "dry-run" is ALLCODE_DRY_RUN.
const EnvPrefix = "ALLCODE"

// Config holds the settings of an unpack run.
type Config struct {
	// Dir is the directory relative record paths are resolved against.
	Dir string `mapstructure:"dir"`
	// Atomic writes each file through a temporary file and a rename.
	Atomic bool `mapstructure:"atomic"`
	// Contain rejects records whose path is absolute or escapes Dir.
	Contain bool `mapstructure:"contain"`
	// DryRun parses and reports without writing.
	DryRun bool `mapstructure:"dry-run"`
	// Hash reports the h1 hash of the written files.
	Hash    bool `mapstructure:"hash"`
	Verbose bool `mapstructure:"verbose"`
	Quiet   bool `mapstructure:"quiet"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{Dir: "."}
}

// Load resolves the configuration. If file is not empty it must name an
// existing config file; its format is taken from the extension.
// Flags are bound by name, so a flag "dry-run" sets key "dry-run".
func Load(flags *pflag.FlagSet, file string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("dir", defaults.Dir)
	v.SetDefault("atomic", defaults.Atomic)
	v.SetDefault("contain", defaults.Contain)
	v.SetDefault("dry-run", defaults.DryRun)
	v.SetDefault("hash", defaults.Hash)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("quiet", defaults.Quiet)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Dir == "" {
		cfg.Dir = defaults.Dir
	}
	return cfg, nil
}

// LogLevel returns the logging level selected by Verbose and Quiet.
// Verbose wins when both are set.
func (c *Config) LogLevel() logging.Level {
	switch {
	case c.Verbose:
		return logging.Verbose
	case c.Quiet:
		return logging.Quiet
	default:
		return logging.Normal
	}
}
