// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2).
var encMode cbor.EncMode

// decMode is the CBOR decoder. Unknown fields are silently ignored for
// forward compatibility.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Record maps only ever have string keys. When the target is
		// any (payload map and array values), decode to
		// map[string]any instead of the CBOR default
		// map[interface{}]interface{} so values compare and re-encode
		// the same way JSON-decoded values do.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// Positive and negative integers both land as int64 when they
		// fit, matching the JSON decoder's canonical integer type.
		IntDec: cbor.IntDecConvertSigned,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// RawMessage is a raw encoded CBOR value. Type alias so consumers
// import only lib/codec, not fxamacker/cbor directly.
type RawMessage = cbor.RawMessage

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for the
// entire contents of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
