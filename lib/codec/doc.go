// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration for
// experiment records.
//
// Experiment records use two serialization formats:
//
//   - JSON for the canonical wire contract: definition files, the
//     config-delivery path, and CLI output.
//   - CBOR for compact internal transport and on-disk state where
//     the same records travel between services.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same logical record always produces identical bytes, so encoded
// definitions can be hashed and compared byte-for-byte.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// # Struct Tag Rules
//
// Types that serve both JSON and CBOR carry only `json` tags.
// fxamacker/cbor v2 reads `json` tags as fallback when `cbor` tags are
// absent, so one tag controls field naming and omitempty for both
// formats. Types with custom JSON encoders (Payload, TestBucket) also
// implement cbor.Marshaler and cbor.Unmarshaler so both formats share
// one key set.
package codec
