// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experimentdef

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/experiment/lib/codec"
	"github.com/bureau-foundation/experiment/lib/compression"
)

// Format is the body encoding of a distributed definition.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat parses a format from its configuration name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatCBOR:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or cbor)", name)
	}
}

// Encode serializes a definition in format and frames it with the
// requested compression.
func Encode(definition *Definition, format Format, tag compression.Tag) ([]byte, error) {
	var (
		body []byte
		err  error
	)
	switch format {
	case FormatJSON:
		body, err = json.Marshal(definition)
	case FormatCBOR:
		body, err = codec.Marshal(definition)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding definition %q as %s: %w", definition.Name, format, err)
	}

	return compression.Encode(body, tag)
}

// Decode reverses Encode. The body format is detected from its first
// byte: a JSON document starts with '{' while a CBOR map has major
// type 5.
func Decode(frame []byte) (*Definition, Format, error) {
	body, _, err := compression.Decode(frame)
	if err != nil {
		return nil, "", fmt.Errorf("decoding definition frame: %w", err)
	}

	format, err := detectFormat(body)
	if err != nil {
		return nil, "", err
	}

	var definition Definition
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(body, &definition); err != nil {
			return nil, format, fmt.Errorf("decoding JSON definition: %w", err)
		}
	case FormatCBOR:
		if err := codec.Unmarshal(body, &definition); err != nil {
			return nil, format, fmt.Errorf("decoding CBOR definition: %w", err)
		}
	}
	return &definition, format, nil
}

// IsFrame reports whether data looks like the output of Encode rather
// than a JSONC or YAML source document. Frames start with a compression
// tag byte, which no text document starts with.
func IsFrame(data []byte) bool {
	return len(data) > 0 && data[0] <= byte(compression.Zstd)
}

func detectFormat(body []byte) (Format, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return "", fmt.Errorf("empty definition body")
	}
	if trimmed[0] == '{' {
		return FormatJSON, nil
	}
	if body[0]>>5 == 5 {
		return FormatCBOR, nil
	}
	return "", fmt.Errorf("unrecognized definition body (first byte 0x%02x)", body[0])
}
