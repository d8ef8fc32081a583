// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/bureau-foundation/experiment/lib/codec"
)

// TestBucket is one named, numbered variant of an experiment: a
// treatment or control group, with an optional Payload.
//
// The zero value is a valid bucket with an empty name and description,
// value 0, and no payload. Buckets are immutable; build them with
// [NewTestBucket], [NewTestBucketWithPayload], or [NewBucketBuilder].
//
// Value must be unique among the buckets of one experiment and name is
// the bucket's identity, but TestBucket itself validates neither. See
// lib/experimentdef for the definition-level checks.
type TestBucket struct {
	name        string
	value       int
	description string
	payload     *Payload
}

// NewTestBucket returns a bucket without a payload.
func NewTestBucket(name string, value int, description string) TestBucket {
	return TestBucket{name: name, value: value, description: description}
}

// NewTestBucketWithPayload returns a bucket that owns a deep copy of
// payload.
func NewTestBucketWithPayload(name string, value int, description string, payload Payload) TestBucket {
	return NewBucketBuilder().
		Name(name).
		Value(value).
		Description(description).
		Payload(payload).
		Build()
}

func (b TestBucket) Name() string        { return b.name }
func (b TestBucket) Value() int          { return b.value }
func (b TestBucket) Description() string { return b.description }

// Payload returns a copy of the bucket's payload, and false if the
// bucket has none.
func (b TestBucket) Payload() (Payload, bool) {
	if b.payload == nil {
		return Payload{}, false
	}
	return b.payload.Clone(), true
}

// Equal reports whether other is a TestBucket (or non-nil *TestBucket)
// with the same name. Value, description, and payload are ignored:
// consumers deduplicate buckets by name with this comparison, so it
// must stay name-only. Use FullEqual to compare whole records.
func (b TestBucket) Equal(other any) bool {
	o, ok := asBucket(other)
	return ok && b.name == o.name
}

// FullEqual reports whether other is a TestBucket (or non-nil
// *TestBucket) with the same name, value, and description, and either
// no payload on both sides or payloads that are DeepEqual.
func (b TestBucket) FullEqual(other any) bool {
	o, ok := asBucket(other)
	if !ok {
		return false
	}
	if b.name != o.name || b.value != o.value || b.description != o.description {
		return false
	}
	if b.payload == nil || o.payload == nil {
		return b.payload == nil && o.payload == nil
	}
	return b.payload.DeepEqual(*o.payload)
}

func asBucket(v any) (TestBucket, bool) {
	switch bucket := v.(type) {
	case TestBucket:
		return bucket, true
	case *TestBucket:
		if bucket != nil {
			return *bucket, true
		}
	}
	return TestBucket{}, false
}

// DedupByName returns buckets with every bucket that is Equal to an
// earlier one removed. Order is preserved.
func DedupByName(buckets []TestBucket) []TestBucket {
	seen := make(map[string]bool, len(buckets))
	result := make([]TestBucket, 0, len(buckets))
	for _, bucket := range buckets {
		if seen[bucket.name] {
			continue
		}
		seen[bucket.name] = true
		result = append(result, bucket)
	}
	return result
}

// bucketWire fixes the canonical key order: name, value, description,
// payload. Payload is omitted when absent.
type bucketWire struct {
	Name        string   `json:"name"`
	Value       int      `json:"value"`
	Description string   `json:"description"`
	Payload     *Payload `json:"payload,omitempty"`
}

func (b TestBucket) wire() bucketWire {
	return bucketWire{
		Name:        b.name,
		Value:       b.value,
		Description: b.description,
		Payload:     b.payload,
	}
}

// MarshalJSON encodes the canonical bucket object.
func (b TestBucket) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.wire())
}

// UnmarshalJSON decodes a bucket object. Missing or null name and
// description become "", a missing value becomes 0, and a missing
// payload stays absent. Unknown keys are ignored. On error b is left
// unchanged.
func (b *TestBucket) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		return nil
	}

	raw, err := decodeValue(data)
	if err != nil {
		return &MalformedBucketError{Err: err}
	}

	parsed, err := bucketFromValue(raw)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseBucket decodes a canonical JSON bucket document.
func ParseBucket(data []byte) (TestBucket, error) {
	var bucket TestBucket
	if err := bucket.UnmarshalJSON(data); err != nil {
		return TestBucket{}, err
	}
	return bucket, nil
}

// MarshalCBOR encodes the bucket with the same key set as its JSON
// form.
func (b TestBucket) MarshalCBOR() ([]byte, error) {
	return codec.Marshal(b.wire())
}

// UnmarshalCBOR decodes a bucket map with the same rules as
// UnmarshalJSON.
func (b *TestBucket) UnmarshalCBOR(data []byte) error {
	var raw any
	if err := codec.Unmarshal(data, &raw); err != nil {
		return &MalformedBucketError{Err: err}
	}
	if raw == nil {
		return nil
	}

	canonical, err := canonicalValue(raw)
	if err != nil {
		return &MalformedBucketError{Err: err}
	}

	parsed, err := bucketFromValue(canonical)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b TestBucket) String() string {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Sprintf("TestBucket{name: %q, value: %d, description: %q}", b.name, b.value, b.description)
	}
	return string(data)
}

// bucketFromValue builds a TestBucket from a canonical decoded value.
func bucketFromValue(raw any) (TestBucket, error) {
	object, ok := raw.(map[string]any)
	if !ok {
		return TestBucket{}, &MalformedBucketError{Err: fmt.Errorf("expected object, got %s", describe(raw))}
	}

	var bucket TestBucket

	if element := object["name"]; element != nil {
		name, ok := element.(string)
		if !ok {
			return TestBucket{}, &MalformedBucketError{Field: "name", Err: fmt.Errorf("expected string, got %s", describe(element))}
		}
		bucket.name = name
	}

	if element := object["value"]; element != nil {
		value, ok := toInteger(element)
		if !ok {
			return TestBucket{}, &MalformedBucketError{Field: "value", Err: fmt.Errorf("expected integer, got %s", describe(element))}
		}
		if value < math.MinInt || value > math.MaxInt {
			return TestBucket{}, &MalformedBucketError{Field: "value", Err: fmt.Errorf("integer %d out of range", value)}
		}
		bucket.value = int(value)
	}

	if element := object["description"]; element != nil {
		description, ok := element.(string)
		if !ok {
			return TestBucket{}, &MalformedBucketError{Field: "description", Err: fmt.Errorf("expected string, got %s", describe(element))}
		}
		bucket.description = description
	}

	if element := object["payload"]; element != nil {
		payload, err := payloadFromValue(element)
		if err != nil {
			return TestBucket{}, &MalformedBucketError{Field: "payload", Err: err}
		}
		bucket.payload = &payload
	}

	return bucket, nil
}

// BucketBuilder accumulates bucket fields. Each setter returns the
// builder for chaining; calling a setter twice keeps the last value.
// Fields never set keep their zero values.
type BucketBuilder struct {
	name        string
	value       int
	description string
	payload     *Payload
}

// NewBucketBuilder returns an empty builder.
func NewBucketBuilder() *BucketBuilder {
	return &BucketBuilder{}
}

func (builder *BucketBuilder) Name(name string) *BucketBuilder {
	builder.name = name
	return builder
}

func (builder *BucketBuilder) Value(value int) *BucketBuilder {
	builder.value = value
	return builder
}

func (builder *BucketBuilder) Description(description string) *BucketBuilder {
	builder.description = description
	return builder
}

func (builder *BucketBuilder) Payload(payload Payload) *BucketBuilder {
	builder.payload = &payload
	return builder
}

// Build returns the bucket. The bucket gets its own copy of the
// payload, so later changes to the builder or to slices the caller
// handed to the payload do not reach it.
func (builder *BucketBuilder) Build() TestBucket {
	bucket := TestBucket{
		name:        builder.name,
		value:       builder.value,
		description: builder.description,
	}
	if builder.payload != nil {
		payload := builder.payload.Clone()
		bucket.payload = &payload
	}
	return bucket
}
