// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compression frames encoded experiment definitions with an
// optional compression layer.
//
// A frame is one tag byte, the uncompressed length as an unsigned
// varint, and the (possibly compressed) body:
//
//	[tag][uvarint length][body]
//
// Encoders fall back to [None] when the requested algorithm does not
// shrink the input, so a reader must always honor the tag it finds
// rather than the one it asked for.
package compression
