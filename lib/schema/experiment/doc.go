// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package experiment defines the bucket record that describes one
// variant of an experiment, and the [Payload] container that attaches
// auxiliary configuration to a bucket.
//
// Both types have a canonical JSON form that is part of the
// compatibility contract with every consumer of experiment
// definitions:
//
//	{"name":"grp1","value":1,"description":"group 1","payload":{"longValue":10}}
//
// A key's absence means the field (or payload shape) was never set;
// producers never emit null placeholders, and consumers ignore keys
// they do not recognize. The same key set is used for the CBOR form
// (see lib/codec).
//
// # Two equalities
//
// [TestBucket] exposes two deliberately different comparisons:
//
//   - [TestBucket.Equal] compares names only. Existing consumers rely on
//     it to deduplicate buckets by name in collections, so buckets that
//     share a name but differ in value, description or payload are
//     Equal. [TestBucket.NameHash] is the matching hash.
//   - [TestBucket.FullEqual] compares every field, including a deep
//     comparison of the payload. Use it to verify that a record
//     survived a round trip unchanged. [TestBucket.FullHash] is the
//     matching hash.
//
// Never key a collection by one tier's hash and compare with the
// other tier's equality.
//
// # Concurrency
//
// A built TestBucket is immutable and safe to share between
// goroutines. A Payload is mutable until it is attached to a bucket or
// encoded; callers must not mutate it concurrently with readers.
package experiment
