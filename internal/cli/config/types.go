// Package config provides configuration management for the truffle CLI.
//
// Settings are layered, highest priority first: changed command-line
// flags, TRUFFLE_* environment variables, truffle.yaml, defaults. The
// analysis settings shared with other tools live in internal/config.
package config

import (
	"fmt"
	"slices"

	intconfig "github.com/truffle-sql/truffle/internal/config"
)

// AnalysisConfig is an alias for the shared analysis settings.
type AnalysisConfig = intconfig.AnalysisConfig

// Output modes accepted by the output key.
var OutputModes = []string{"auto", "text", "json", "yaml"}

// Config holds all CLI configuration options.
type Config struct {
	AnalysisConfig `koanf:",squash"`

	MigrationsDir string `koanf:"migrations_dir"`
	OutputFormat  string `koanf:"output"`
	Verbose       bool   `koanf:"verbose"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultMigrationsDir = intconfig.DefaultMigrationsDir
	DefaultDialect       = intconfig.DefaultDialect
	DefaultOutput        = "auto" // TTY=text, otherwise plain text without color
)

// Validate checks the dialect, features and output mode.
func (c *Config) Validate() error {
	if err := c.AnalysisConfig.Validate(); err != nil {
		return err
	}
	if !slices.Contains(OutputModes, c.OutputFormat) {
		return fmt.Errorf("invalid output %q (want one of %v)", c.OutputFormat, OutputModes)
	}
	return nil
}

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	cfg := &Config{
		MigrationsDir: DefaultMigrationsDir,
		OutputFormat:  DefaultOutput,
		ProjectRoot:   ".",
	}
	intconfig.ApplyDefaults(&cfg.AnalysisConfig)
	return cfg
}
