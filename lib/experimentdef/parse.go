// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experimentdef

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Definition. Bucket decoding errors
// unwrap to *experiment.MalformedBucketError.
func Parse(data []byte) (*Definition, error) {
	stripped := jsonc.ToJSON(data)

	var definition Definition
	if err := json.Unmarshal(stripped, &definition); err != nil {
		return nil, fmt.Errorf("parsing experiment definition: %w", err)
	}
	return &definition, nil
}

// ParseYAML converts a YAML definition to JSON and parses it with the
// same rules as Parse, so both source formats produce identical
// records.
func ParseYAML(data []byte) (*Definition, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing experiment definition YAML: %w", err)
	}

	converted, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("converting experiment definition YAML to JSON: %w", err)
	}
	return Parse(converted)
}

// ReadFile reads a definition from disk. Files ending in .yaml or .yml
// are parsed as YAML; everything else as JSONC.
func ReadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var definition *Definition
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		definition, err = ParseYAML(data)
	default:
		definition, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return definition, nil
}

// Load reads either a definition source file or a frame written by
// Encode (see IsFrame).
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !IsFrame(data) {
		return ReadFile(path)
	}

	definition, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return definition, nil
}

// NameFromPath extracts an experiment name from a file path by
// stripping the directory and extension. For example,
// "definitions/checkout-layout.jsonc" returns "checkout-layout".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
