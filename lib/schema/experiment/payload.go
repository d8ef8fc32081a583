// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/bureau-foundation/experiment/lib/codec"
)

// Kind identifies which shape a Payload holds.
type Kind uint8

const (
	// KindNone is an empty payload: no shape populated.
	KindNone Kind = iota
	KindStringValue
	KindLongValue
	KindDoubleValue
	KindStringArray
	KindLongArray
	KindDoubleArray
	KindArray
	KindMap
)

// shape binds a Kind to its wire key and to the check that turns a
// canonical decoded value into the Go value stored for that Kind.
type shape struct {
	kind     Kind
	key      string
	expected string
	convert  func(raw any) (any, error)
}

// shapes is indexed by Kind-1 and is also the canonical key order used
// when reading a payload document.
var shapes = [...]shape{
	{KindStringValue, "stringValue", "string", convertString},
	{KindLongValue, "longValue", "integer", convertLong},
	{KindDoubleValue, "doubleValue", "number", convertDouble},
	{KindStringArray, "stringArray", "array of strings", convertStringArray},
	{KindLongArray, "longArray", "array of integers", convertLongArray},
	{KindDoubleArray, "doubleArray", "array of numbers", convertDoubleArray},
	{KindArray, "array", "array", convertArray},
	{KindMap, "map", "object", convertMap},
}

// String returns the wire key for k, or "none" for KindNone.
func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}
	if int(k) <= len(shapes) {
		return shapes[k-1].key
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// Payload carries at most one auxiliary value for a bucket, in one of
// a fixed set of shapes. The zero value is an empty payload.
//
// Setting a shape replaces whatever shape was set before. Slices and
// maps passed to setters are stored without copying; treat them as
// owned by the payload from then on.
type Payload struct {
	kind  Kind
	value any
}

func (p *Payload) SetStringValue(value string) {
	p.set(KindStringValue, value)
}

func (p *Payload) SetLongValue(value int64) {
	p.set(KindLongValue, value)
}

func (p *Payload) SetDoubleValue(value float64) {
	p.set(KindDoubleValue, value)
}

func (p *Payload) SetStringArray(value []string) {
	if value == nil {
		value = []string{}
	}
	p.set(KindStringArray, value)
}

func (p *Payload) SetLongArray(value []int64) {
	if value == nil {
		value = []int64{}
	}
	p.set(KindLongArray, value)
}

func (p *Payload) SetDoubleArray(value []float64) {
	if value == nil {
		value = []float64{}
	}
	p.set(KindDoubleArray, value)
}

// SetArray stores a sequence of opaque JSON-compatible values.
func (p *Payload) SetArray(value []any) {
	if value == nil {
		value = []any{}
	}
	p.set(KindArray, value)
}

// SetMap stores a string-keyed map of opaque JSON-compatible values.
func (p *Payload) SetMap(value map[string]any) {
	if value == nil {
		value = map[string]any{}
	}
	p.set(KindMap, value)
}

func (p *Payload) set(kind Kind, value any) {
	p.kind = kind
	p.value = value
}

// Kind reports which shape is populated.
func (p Payload) Kind() Kind { return p.kind }

// IsEmpty reports whether no shape is populated.
func (p Payload) IsEmpty() bool { return p.kind == KindNone }

// The getters below return the stored value when that shape is
// populated and the shape's zero value otherwise. Slice getters return
// nil for an unpopulated shape. Map returns a fresh empty map so the
// result is always writable.

func (p Payload) StringValue() string {
	value, _ := p.value.(string)
	return value
}

func (p Payload) LongValue() int64 {
	value, _ := p.value.(int64)
	return value
}

func (p Payload) DoubleValue() float64 {
	value, _ := p.value.(float64)
	return value
}

func (p Payload) StringArray() []string {
	value, _ := p.value.([]string)
	return value
}

func (p Payload) LongArray() []int64 {
	value, _ := p.value.([]int64)
	return value
}

func (p Payload) DoubleArray() []float64 {
	value, _ := p.value.([]float64)
	return value
}

func (p Payload) Array() []any {
	value, _ := p.value.([]any)
	return value
}

func (p Payload) Map() map[string]any {
	if value, ok := p.value.(map[string]any); ok && p.kind == KindMap {
		return value
	}
	return map[string]any{}
}

// Clone returns a copy of p that shares no slices or maps with it.
func (p Payload) Clone() Payload {
	switch value := p.value.(type) {
	case []string:
		return Payload{kind: p.kind, value: slices.Clone(value)}
	case []int64:
		return Payload{kind: p.kind, value: slices.Clone(value)}
	case []float64:
		return Payload{kind: p.kind, value: slices.Clone(value)}
	default:
		return Payload{kind: p.kind, value: cloneValue(value)}
	}
}

// DeepEqual reports whether other is a Payload (or non-nil *Payload)
// with the same populated shape and an equal value. Sequences compare
// element-wise and maps key-wise, recursing into opaque values. Two
// empty payloads are equal. This is the only equality Payload has.
func (p Payload) DeepEqual(other any) bool {
	o, ok := asPayload(other)
	if !ok || p.kind != o.kind {
		return false
	}

	switch p.kind {
	case KindNone:
		return true
	case KindStringValue:
		return p.StringValue() == o.StringValue()
	case KindLongValue:
		return p.LongValue() == o.LongValue()
	case KindDoubleValue:
		return floatsEqual(p.DoubleValue(), o.DoubleValue())
	case KindStringArray:
		return slices.Equal(p.StringArray(), o.StringArray())
	case KindLongArray:
		return slices.Equal(p.LongArray(), o.LongArray())
	case KindDoubleArray:
		return slices.EqualFunc(p.DoubleArray(), o.DoubleArray(), floatsEqual)
	case KindArray, KindMap:
		return opaqueEqual(p.value, o.value)
	default:
		return false
	}
}

func asPayload(v any) (Payload, bool) {
	switch payload := v.(type) {
	case Payload:
		return payload, true
	case *Payload:
		if payload != nil {
			return *payload, true
		}
	}
	return Payload{}, false
}

// MarshalJSON encodes the payload as an object holding only the
// populated shape's key, or {} when empty.
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.kind == KindNone {
		return []byte("{}"), nil
	}

	value, err := json.Marshal(p.value)
	if err != nil {
		return nil, fmt.Errorf("encoding payload %s: %w", p.kind, err)
	}

	var buffer bytes.Buffer
	buffer.WriteString(`{"`)
	buffer.WriteString(p.kind.String())
	buffer.WriteString(`":`)
	buffer.Write(value)
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// UnmarshalJSON decodes a payload object. Unknown keys are ignored and
// a null value for a shape key is treated as absent. On error p is
// left unchanged.
func (p *Payload) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		return nil
	}

	raw, err := decodeValue(data)
	if err != nil {
		return &MalformedPayloadError{Expected: "object", Err: err}
	}

	parsed, err := payloadFromValue(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePayload decodes a canonical JSON payload document.
func ParsePayload(data []byte) (Payload, error) {
	var payload Payload
	if err := payload.UnmarshalJSON(data); err != nil {
		return Payload{}, err
	}
	return payload, nil
}

// MarshalCBOR encodes the payload with the same key set as its JSON
// form.
func (p Payload) MarshalCBOR() ([]byte, error) {
	object := map[string]any{}
	if p.kind != KindNone {
		object[p.kind.String()] = p.value
	}
	return codec.Marshal(object)
}

// UnmarshalCBOR decodes a payload map with the same rules as
// UnmarshalJSON.
func (p *Payload) UnmarshalCBOR(data []byte) error {
	var raw any
	if err := codec.Unmarshal(data, &raw); err != nil {
		return &MalformedPayloadError{Expected: "map", Err: err}
	}
	if raw == nil {
		return nil
	}

	canonical, err := canonicalValue(raw)
	if err != nil {
		return &MalformedPayloadError{Expected: "map", Err: err}
	}

	parsed, err := payloadFromValue(canonical)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Payload) String() string {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("Payload{%s: %v}", p.kind, p.value)
	}
	return string(data)
}

// payloadFromValue builds a Payload from a canonical decoded value.
// Keys are visited in shape order so the reported key is stable when
// a document is malformed in more than one way.
func payloadFromValue(raw any) (Payload, error) {
	object, ok := raw.(map[string]any)
	if !ok {
		return Payload{}, &MalformedPayloadError{
			Expected: "object",
			Err:      fmt.Errorf("got %s", describe(raw)),
		}
	}

	var result Payload
	for _, candidate := range shapes {
		element, present := object[candidate.key]
		if !present || element == nil {
			continue
		}

		value, err := candidate.convert(element)
		if err != nil {
			return Payload{}, &MalformedPayloadError{Key: candidate.key, Expected: candidate.expected, Err: err}
		}

		if result.kind != KindNone {
			return Payload{}, &MalformedPayloadError{
				Key:      candidate.key,
				Expected: "at most one shape",
				Err:      fmt.Errorf("%w: %q and %q", ErrMultipleShapes, result.kind.String(), candidate.key),
			}
		}
		result = Payload{kind: candidate.kind, value: value}
	}
	return result, nil
}

func convertString(raw any) (any, error) {
	value, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("got %s", describe(raw))
	}
	return value, nil
}

func convertLong(raw any) (any, error) {
	value, ok := toInteger(raw)
	if !ok {
		return nil, fmt.Errorf("got %s", describe(raw))
	}
	return value, nil
}

func convertDouble(raw any) (any, error) {
	value, ok := toFloat(raw)
	if !ok {
		return nil, fmt.Errorf("got %s", describe(raw))
	}
	return value, nil
}

func toFloat(raw any) (float64, bool) {
	switch number := raw.(type) {
	case float64:
		return number, true
	case int64:
		return float64(number), true
	}
	return 0, false
}

func convertStringArray(raw any) (any, error) {
	return convertElements(raw, func(element any) (string, bool) {
		value, ok := element.(string)
		return value, ok
	})
}

func convertLongArray(raw any) (any, error) {
	return convertElements(raw, toInteger)
}

func convertDoubleArray(raw any) (any, error) {
	return convertElements(raw, toFloat)
}

// convertElements checks every element of a decoded array and collects
// them into a typed slice.
func convertElements[T any](raw any, element func(any) (T, bool)) (any, error) {
	array, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("got %s", describe(raw))
	}
	result := make([]T, len(array))
	for i, item := range array {
		value, ok := element(item)
		if !ok {
			return nil, fmt.Errorf("element %d: got %s", i, describe(item))
		}
		result[i] = value
	}
	return result, nil
}

func convertArray(raw any) (any, error) {
	array, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("got %s", describe(raw))
	}
	return array, nil
}

func convertMap(raw any) (any, error) {
	object, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("got %s", describe(raw))
	}
	return object, nil
}

func isJSONNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
