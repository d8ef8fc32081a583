// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Tag identifies the algorithm used for a frame body. Tag values are
// written to disk; changing them breaks existing frames.
type Tag uint8

const (
	// None stores the body uncompressed.
	None Tag = 0

	// LZ4 is LZ4 block compression. Fast, modest ratio.
	LZ4 Tag = 1

	// Zstd is zstd at the default level. Better ratio for the
	// text-heavy JSON form of definitions.
	Zstd Tag = 2
)

// maxFrameLength bounds the declared uncompressed length so a corrupt
// header cannot trigger a huge allocation.
const maxFrameLength = 64 << 20

// errIncompressible is returned internally when compression does not
// reduce the size. Encode falls back to None.
var errIncompressible = errors.New("data is incompressible")

// String returns the configuration name of a tag.
func (tag Tag) String() string {
	switch tag {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// ParseTag parses a tag from its configuration name.
func ParseTag(name string) (Tag, error) {
	switch name {
	case "none", "":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, lz4, or zstd)", name)
	}
}

// Encode frames data, compressing it with tag when that makes it
// smaller.
func Encode(data []byte, tag Tag) ([]byte, error) {
	body := data
	used := None

	switch tag {
	case None:
	case LZ4, Zstd:
		compressed, err := compress(data, tag)
		switch {
		case err == nil:
			body, used = compressed, tag
		case errors.Is(err, errIncompressible):
		default:
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}

	frame := make([]byte, 0, 1+binary.MaxVarintLen64+len(body))
	frame = append(frame, byte(used))
	frame = binary.AppendUvarint(frame, uint64(len(data)))
	frame = append(frame, body...)
	return frame, nil
}

// Decode reverses Encode and reports the tag the frame was written
// with.
func Decode(frame []byte) ([]byte, Tag, error) {
	if len(frame) == 0 {
		return nil, 0, errors.New("empty frame")
	}
	tag := Tag(frame[0])

	length, read := binary.Uvarint(frame[1:])
	if read <= 0 {
		return nil, tag, errors.New("frame: malformed length header")
	}
	if length > maxFrameLength {
		return nil, tag, fmt.Errorf("frame: declared length %d exceeds limit %d", length, maxFrameLength)
	}
	body := frame[1+read:]
	size := int(length)

	switch tag {
	case None:
		if len(body) != size {
			return nil, tag, fmt.Errorf("uncompressed frame: size %d does not match expected %d", len(body), size)
		}
		return body, tag, nil
	case LZ4:
		data, err := decompressLZ4(body, size)
		return data, tag, err
	case Zstd:
		data, err := decompressZstd(body, size)
		return data, tag, err
	default:
		return nil, tag, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

func compress(data []byte, tag Tag) ([]byte, error) {
	if tag == LZ4 {
		return compressLZ4(data)
	}
	return compressZstd(data)
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock returns 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, size int) ([]byte, error) {
	destination := make([]byte, size)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
	}
	return destination, nil
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use when only
// EncodeAll and DecodeAll are called.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compression: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compression: zstd decoder initialization failed: " + err.Error())
	}
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, size int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != size {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), size)
	}
	return result, nil
}
