// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/experiment/lib/testutil"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}

	if cfg.Encoding.Format != "json" {
		t.Errorf("expected format=json, got %s", cfg.Encoding.Format)
	}

	if cfg.Encoding.Compression != "none" {
		t.Errorf("expected compression=none, got %s", cfg.Encoding.Compression)
	}

	if cfg.Validation.Strict {
		t.Error("expected strict=false for development")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_RequiresExperimentConfig(t *testing.T) {
	t.Setenv("EXPERIMENT_CONFIG", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when EXPERIMENT_CONFIG not set, got nil")
	}

	expectedMsg := "EXPERIMENT_CONFIG environment variable not set"
	if !strings.HasPrefix(err.Error(), expectedMsg) {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithExperimentConfig(t *testing.T) {
	configPath := testutil.WriteFile(t, "experiment.yaml", `
environment: staging
paths:
  root: /test/root
encoding:
  format: cbor
`)
	t.Setenv("EXPERIMENT_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}

	if cfg.Paths.Root != "/test/root" {
		t.Errorf("expected root=/test/root, got %s", cfg.Paths.Root)
	}

	if cfg.Encoding.Format != "cbor" {
		t.Errorf("expected format=cbor, got %s", cfg.Encoding.Format)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := testutil.WriteFile(t, "experiment.yaml", `
environment: staging

paths:
  root: /custom/root
  definitions: /custom/definitions

encoding:
  format: cbor
  compression: lz4

validation:
  strict: true

log_level: debug
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Paths.Definitions != "/custom/definitions" {
		t.Errorf("expected definitions=/custom/definitions, got %s", cfg.Paths.Definitions)
	}

	if cfg.Encoding.Compression != "lz4" {
		t.Errorf("expected compression=lz4, got %s", cfg.Encoding.Compression)
	}

	if !cfg.Validation.Strict {
		t.Error("expected strict=true")
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level=debug, got %s", cfg.LogLevel)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	configPath := testutil.WriteFile(t, "experiment.yaml", "environment: [unclosed")
	if _, err := LoadFile(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	configPath := testutil.WriteFile(t, "experiment.yaml", `
environment: production

paths:
  root: /default/root

validation:
  strict: true

production:
  paths:
    root: /prod/root
  encoding:
    compression: lz4
  validation:
    strict: false
  log_level: warn
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Paths.Root != "/prod/root" {
		t.Errorf("expected root=/prod/root, got %s", cfg.Paths.Root)
	}

	if cfg.Encoding.Compression != "lz4" {
		t.Errorf("expected compression=lz4 from production override, got %s", cfg.Encoding.Compression)
	}

	if cfg.Validation.Strict {
		t.Error("expected strict=false from production override")
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("expected log_level=warn, got %s", cfg.LogLevel)
	}
}

func TestProductionDefaults(t *testing.T) {
	configPath := testutil.WriteFile(t, "experiment.yaml", "environment: production\n")

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if !cfg.Validation.Strict {
		t.Error("expected strict=true by default in production")
	}

	if cfg.Encoding.Compression != "zstd" {
		t.Errorf("expected compression=zstd by default in production, got %s", cfg.Encoding.Compression)
	}
}

func TestProductionDefaultsKeepExplicitBaseFields(t *testing.T) {
	configPath := testutil.WriteFile(t, "experiment.yaml", `
environment: production
encoding:
  compression: none
validation:
  strict: false
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Validation.Strict {
		t.Error("expected explicit strict=false to survive production defaults")
	}
	if cfg.Encoding.Compression != "none" {
		t.Errorf("expected explicit compression=none to survive production defaults, got %s", cfg.Encoding.Compression)
	}
}

func TestProductionDefaultsFillOnlyUnsetFields(t *testing.T) {
	configPath := testutil.WriteFile(t, "experiment.yaml", `
environment: production
encoding:
  compression: lz4
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Encoding.Compression != "lz4" {
		t.Errorf("expected compression=lz4, got %s", cfg.Encoding.Compression)
	}
	if !cfg.Validation.Strict {
		t.Error("expected strict=true from production defaults")
	}
}

func TestOverrideLeavesUnsetFields(t *testing.T) {
	configPath := testutil.WriteFile(t, "experiment.yaml", `
environment: staging
validation:
  strict: true
staging:
  encoding:
    format: cbor
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if !cfg.Validation.Strict {
		t.Error("strict should survive an override section that does not mention it")
	}
	if cfg.Encoding.Format != "cbor" {
		t.Errorf("expected format=cbor, got %s", cfg.Encoding.Format)
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	t.Setenv("EXPERIMENT_ROOT", "/env/root")
	t.Setenv("EXPERIMENT_ENVIRONMENT", "staging")

	configPath := testutil.WriteFile(t, "experiment.yaml", `
environment: development
paths:
  root: /file/root
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Environment != Development {
		t.Errorf("expected environment=development from file, got %s (env vars should not override)", cfg.Environment)
	}

	if cfg.Paths.Root != "/file/root" {
		t.Errorf("expected root=/file/root from file, got %s (env vars should not override)", cfg.Paths.Root)
	}
}

func TestPathExpansion(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	configPath := testutil.WriteFile(t, "experiment.yaml", `
paths:
  root: ${HOME}/experiments
  definitions: ${EXPERIMENT_ROOT}/defs
  output: ${EXPERIMENT_OUTPUT_UNSET_FOR_TEST:-/tmp/out}
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Paths.Root != "/home/tester/experiments" {
		t.Errorf("root = %s", cfg.Paths.Root)
	}
	if cfg.Paths.Definitions != "/home/tester/experiments/defs" {
		t.Errorf("definitions = %s", cfg.Paths.Definitions)
	}
	if cfg.Paths.Output != "/tmp/out" {
		t.Errorf("output = %s", cfg.Paths.Output)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/experiments",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/experiments",
		},
		{
			input:    "${EXPERIMENT_MISSING_FOR_TEST:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid environment",
			modify: func(c *Config) {
				c.Environment = "invalid"
			},
			wantErr: true,
		},
		{
			name: "empty root path",
			modify: func(c *Config) {
				c.Paths.Root = ""
			},
			wantErr: true,
		},
		{
			name: "invalid format",
			modify: func(c *Config) {
				c.Encoding.Format = "xml"
			},
			wantErr: true,
		},
		{
			name: "invalid compression",
			modify: func(c *Config) {
				c.Encoding.Compression = "gzip"
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			modify: func(c *Config) {
				c.LogLevel = "verbose"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Encoding.Format = "xml"
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, field := range []string{"encoding.format", "log_level"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestEnsurePaths(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.Paths.Root = filepath.Join(tmpDir, "experiment")
	cfg.Paths.Output = filepath.Join(cfg.Paths.Root, "out")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}

	for _, path := range []string{cfg.Paths.Root, cfg.Paths.Output} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("path %s not created: %v", path, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("path %s is not a directory", path)
		}
	}
}

func TestDefinitionPath(t *testing.T) {
	definitions := t.TempDir()
	cfg := Default()
	cfg.Paths.Definitions = definitions

	if got := cfg.DefinitionPath("/abs/checkout.jsonc"); got != "/abs/checkout.jsonc" {
		t.Errorf("absolute path changed: %s", got)
	}

	want := filepath.Join(definitions, "checkout-layout-not-in-cwd.jsonc")
	if got := cfg.DefinitionPath("checkout-layout-not-in-cwd.jsonc"); got != want {
		t.Errorf("DefinitionPath = %s, want %s", got, want)
	}
}
