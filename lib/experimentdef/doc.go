// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package experimentdef reads, validates, compares, and encodes
// experiment definitions: the documents that list the buckets of one
// experiment.
//
// Definitions are authored on disk as JSONC (JSON with // and /* */
// comments and trailing commas) or YAML, and distributed in their
// canonical JSON form or as deterministic CBOR, optionally compressed.
//
// The typical flow:
//
//  1. ReadFile, Parse, or ParseYAML: source bytes → Definition
//  2. Validate: version, bucket name and value uniqueness
//  3. Encode: Definition → framed json or cbor for distribution
//  4. Decode on the consumer side, then Diff against the previous
//     revision to see which buckets were added, removed, or modified
//
// Load accepts either a source file or an encoded frame.
//
// Bucket identity follows [experiment.TestBucket.Equal]: two buckets
// with the same name are the same bucket, and a bucket whose other
// fields changed is reported as modified rather than as a removal and
// an addition.
package experimentdef
