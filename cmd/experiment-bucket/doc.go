// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Experiment-bucket checks, encodes, and compares experiment
// definitions: named lists of test buckets, each with an optional
// payload.
//
// Definitions are authored as JSONC or YAML and distributed as framed
// JSON or CBOR, optionally compressed with lz4 or zstd. Every command
// that reads a definition accepts either form.
//
// Exit codes:
//
//	0  success
//	1  validate found issues, or diff found changes
//	2  error (bad arguments, unreadable file, malformed definition)
//
// Configuration comes from --config or EXPERIMENT_CONFIG; without
// either, built-in development defaults apply.
package main
