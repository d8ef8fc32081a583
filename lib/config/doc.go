// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for experiment
// tooling.
//
// Configuration is loaded from a single file specified by either the
// EXPERIMENT_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks, no ~/.config
// discovery, and no automatic file search.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production defaults are stricter:
// validation is strict and distributed definitions are
// zstd-compressed.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${EXPERIMENT_ROOT}, and ${VAR:-default} patterns are
// expanded. No other environment variables override config values.
//
// This package depends on no other packages in this module.
package config
