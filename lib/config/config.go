// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for experiment tooling.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Encoding configures how definitions are written for distribution.
	Encoding EncodingConfig `yaml:"encoding"`

	// Validation configures definition checks.
	Validation ValidationConfig `yaml:"validation"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`

	// explicit records base fields the config file set, so built-in
	// environment defaults do not replace them.
	explicit explicitFields
}

type explicitFields struct {
	compression bool
	strict      bool
}

// explicitBase decodes only the base fields that have built-in
// environment defaults.
type explicitBase struct {
	Encoding struct {
		Compression *string `yaml:"compression"`
	} `yaml:"encoding"`
	Validation struct {
		Strict *bool `yaml:"strict"`
	} `yaml:"validation"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths      *PathsConfig              `yaml:"paths,omitempty"`
	Encoding   *EncodingConfig           `yaml:"encoding,omitempty"`
	Validation *ValidationOverrideConfig `yaml:"validation,omitempty"`
	LogLevel   string                    `yaml:"log_level,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for experiment data.
	Root string `yaml:"root"`

	// Definitions holds definition files. Relative definition paths
	// given to commands are resolved here when they do not exist in
	// the working directory.
	Definitions string `yaml:"definitions"`

	// Output is where converted definitions are written when no
	// explicit output path is given.
	Output string `yaml:"output"`
}

// EncodingConfig configures the distributed definition format.
type EncodingConfig struct {
	// Format is json or cbor.
	// Default: json
	Format string `yaml:"format"`

	// Compression is none, lz4, or zstd.
	// Default: none (development), zstd (production)
	Compression string `yaml:"compression"`
}

// ValidationConfig configures definition checks.
type ValidationConfig struct {
	// Strict turns empty bucket names and empty bucket lists into
	// errors.
	// Default: false (development), true (production)
	Strict bool `yaml:"strict"`
}

// ValidationOverrideConfig distinguishes "not overridden" from false.
type ValidationOverrideConfig struct {
	Strict *bool `yaml:"strict,omitempty"`
}

var (
	formatValues      = []string{"json", "cbor"}
	compressionValues = []string{"none", "lz4", "zstd"}
	logLevelValues    = []string{"debug", "info", "warn", "error"}
)

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "experiment")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:        defaultRoot,
			Definitions: filepath.Join(defaultRoot, "definitions"),
			Output:      filepath.Join(defaultRoot, "out"),
		},
		Encoding: EncodingConfig{
			Format:      "json",
			Compression: "none",
		},
		LogLevel: "info",
	}
}

// Load loads configuration from EXPERIMENT_CONFIG environment variable.
//
// There are no fallbacks or defaults: if EXPERIMENT_CONFIG is not set,
// this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("EXPERIMENT_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("EXPERIMENT_CONFIG environment variable not set; " +
			"set it to the path of your experiment.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// Environment variables do not override config values. The only
// expansion performed is ${HOME}, ${EXPERIMENT_ROOT}, and
// ${VAR:-default} in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	var base explicitBase
	if err := yaml.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	c.explicit = explicitFields{
		compression: base.Encoding.Compression != nil,
		strict:      base.Validation.Strict != nil,
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: strict validation and compressed output,
		// each only where the base config leaves it unset.
		if overrides == nil {
			overrides = &ConfigOverrides{}
			if !c.explicit.compression {
				overrides.Encoding = &EncodingConfig{Compression: "zstd"}
			}
			if !c.explicit.strict {
				strict := true
				overrides.Validation = &ValidationOverrideConfig{Strict: &strict}
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Definitions != "" {
			c.Paths.Definitions = overrides.Paths.Definitions
		}
		if overrides.Paths.Output != "" {
			c.Paths.Output = overrides.Paths.Output
		}
	}

	if overrides.Encoding != nil {
		if overrides.Encoding.Format != "" {
			c.Encoding.Format = overrides.Encoding.Format
		}
		if overrides.Encoding.Compression != "" {
			c.Encoding.Compression = overrides.Encoding.Compression
		}
	}

	if overrides.Validation != nil && overrides.Validation.Strict != nil {
		c.Validation.Strict = *overrides.Validation.Strict
	}

	if overrides.LogLevel != "" {
		c.LogLevel = overrides.LogLevel
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"EXPERIMENT_ROOT": c.Paths.Root,
		"HOME":            os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["EXPERIMENT_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Definitions = expandVars(c.Paths.Definitions, vars)
	c.Paths.Output = expandVars(c.Paths.Output, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}

	if !slices.Contains(formatValues, c.Encoding.Format) {
		errs = append(errs, fmt.Errorf("encoding.format must be one of: %v", formatValues))
	}
	if !slices.Contains(compressionValues, c.Encoding.Compression) {
		errs = append(errs, fmt.Errorf("encoding.compression must be one of: %v", compressionValues))
	}
	if !slices.Contains(logLevelValues, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level must be one of: %v", logLevelValues))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates the output directory if it doesn't exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Root, c.Paths.Output} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}

// DefinitionPath resolves a definition path given on the command line.
// Absolute paths and paths that exist relative to the working
// directory are returned unchanged; otherwise the path is joined onto
// Paths.Definitions.
func (c *Config) DefinitionPath(path string) string {
	if filepath.IsAbs(path) || c.Paths.Definitions == "" {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(c.Paths.Definitions, path)
}
