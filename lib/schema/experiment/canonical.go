// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"
)

// Canonical values are the trees produced by decoding a record from
// JSON or CBOR: nil, bool, string, int64, float64, []any, and
// map[string]any. Integers that fit in int64 are always int64; every
// other number is float64. Equality and shape checks operate on this
// form only.

// decodeValue decodes a single JSON value into its canonical form.
// Trailing data after the value is an error.
func decodeValue(data []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return canonicalValue(raw)
}

// canonicalValue converts a JSON-compatible Go value into its
// canonical form. Values outside the fast paths (typed slices and
// maps, structs, []byte) take a JSON round trip so they compare the
// same way they will after being encoded and decoded.
func canonicalValue(v any) (any, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case bool, string:
		return value, nil
	case []any:
		result := make([]any, len(value))
		for i, element := range value {
			converted, err := canonicalValue(element)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			result[i] = converted
		}
		return result, nil
	case map[string]any:
		result := make(map[string]any, len(value))
		for key, element := range value {
			converted, err := canonicalValue(element)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			result[key] = converted
		}
		return result, nil
	case json.Number:
		return literalNumber(value)
	}

	if number, ok := canonicalNumber(v); ok {
		return number, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeValue(data)
}

// canonicalNumber converts any Go numeric type to int64 when the value
// is an integer that fits and to float64 otherwise. Reports false for
// non-numeric values.
func canonicalNumber(v any) (any, bool) {
	switch number := v.(type) {
	case int64:
		return number, true
	case int:
		return int64(number), true
	case int8:
		return int64(number), true
	case int16:
		return int64(number), true
	case int32:
		return int64(number), true
	case uint8:
		return int64(number), true
	case uint16:
		return int64(number), true
	case uint32:
		return int64(number), true
	case uint:
		return unsignedNumber(uint64(number)), true
	case uint64:
		return unsignedNumber(number), true
	case float32:
		return float64(number), true
	case float64:
		return number, true
	}
	return nil, false
}

// literalNumber converts a decoded JSON number literal. "-0" stays a
// negative zero float so it survives a round trip. Literals outside
// the float64 range are an error.
func literalNumber(number json.Number) (any, error) {
	if integer, err := number.Int64(); err == nil {
		if integer == 0 && strings.HasPrefix(string(number), "-") {
			return math.Copysign(0, -1), nil
		}
		return integer, nil
	}
	float, err := number.Float64()
	if err != nil || math.IsInf(float, 0) {
		return nil, fmt.Errorf("number %s out of range", number)
	}
	return float, nil
}

// toInteger accepts int64 and a zero float, which is how a "-0"
// literal decodes.
func toInteger(raw any) (int64, bool) {
	switch number := raw.(type) {
	case int64:
		return number, true
	case float64:
		if number == 0 {
			return 0, true
		}
	}
	return 0, false
}

func unsignedNumber(number uint64) any {
	if number <= math.MaxInt64 {
		return int64(number)
	}
	return float64(number)
}

// valuesEqual compares two canonical trees. Numbers compare by value
// across int64 and float64 because JSON does not preserve the
// distinction for integral floats.
func valuesEqual(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case int64:
		switch y := b.(type) {
		case int64:
			return x == y
		case float64:
			return integralEqual(x, y)
		}
		return false
	case float64:
		switch y := b.(type) {
		case float64:
			return floatsEqual(x, y)
		case int64:
			return integralEqual(y, x)
		}
		return false
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valuesEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for key, element := range x {
			other, present := y[key]
			if !present || !valuesEqual(element, other) {
				return false
			}
		}
		return true
	}
	return false
}

// opaqueEqual compares two caller-supplied opaque values by their
// canonical form. Values that cannot be canonicalized (NaN inside a
// map, channels) fall back to reflect.DeepEqual.
func opaqueEqual(a, b any) bool {
	canonicalA, errA := canonicalValue(a)
	canonicalB, errB := canonicalValue(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return valuesEqual(canonicalA, canonicalB)
}

// floatsEqual compares by bit pattern with every NaN equal to every
// other NaN, so 0.0 and -0.0 differ.
func floatsEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Float64bits(a) == math.Float64bits(b)
}

func integralEqual(integer int64, float float64) bool {
	if float != math.Trunc(float) || float < math.MinInt64 || float >= math.MaxInt64 {
		return false
	}
	return int64(float) == integer
}

// describe names the JSON type of a canonical value for error messages.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case int64:
		return "integer"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// cloneValue deep-copies the container parts of an opaque value.
// Leaves are shared; strings and numbers are immutable and other leaf
// types are the caller's responsibility.
func cloneValue(v any) any {
	switch value := v.(type) {
	case []any:
		result := make([]any, len(value))
		for i, element := range value {
			result[i] = cloneValue(element)
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(value))
		for key, element := range value {
			result[key] = cloneValue(element)
		}
		return result
	default:
		return v
	}
}
