// Package config holds the compiler's tunables. Values come from an
// optional liftc.yaml, with environment variables taking precedence so CI
// can flip switches without editing files.
package config

import (
	"fmt"
	"os"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the working directory when no explicit
// config path is given.
const ConfigFileName = "liftc.yaml"

// Config is the top-level liftc.yaml configuration.
type Config struct {
	// ArenaSize is the initial closure arena size in bytes. The arena grows
	// on demand; this only sets the starting allocation.
	ArenaSize int `yaml:"arena_size"`

	// DebugChecks enables the structural runtime guards (record slot
	// bounds). Off by default; these should be unreachable.
	DebugChecks bool `yaml:"debug_checks"`

	// Cache is the path of the sqlite build cache keeping table indices
	// stable across incremental builds. Empty disables caching.
	Cache string `yaml:"cache"`

	// LogFile, when set, receives structured JSON logs in addition to the
	// text output on stderr.
	LogFile string `yaml:"log_file"`

	// LogLevel is one of debug, info, warn, error. Default info.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ArenaSize: 64 * 1024,
		LogLevel:  "info",
	}
}

// Load reads a yaml config file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// WithEnvOverrides applies LIFTC_* environment variables on top of cfg.
func (c Config) WithEnvOverrides() Config {
	c.ArenaSize = env.Int("LIFTC_ARENA_SIZE", c.ArenaSize)
	if env.Has("LIFTC_DEBUG_CHECKS") {
		c.DebugChecks = env.Bool("LIFTC_DEBUG_CHECKS")
	}
	c.Cache = env.Str("LIFTC_CACHE", c.Cache)
	c.LogFile = env.Str("LIFTC_LOG_FILE", c.LogFile)
	c.LogLevel = env.Str("LIFTC_LOG_LEVEL", c.LogLevel)
	return c
}
