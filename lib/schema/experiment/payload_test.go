// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/bureau-foundation/experiment/lib/codec"
)

// samplePayloads returns one populated payload per shape, plus an
// empty one.
func samplePayloads() map[string]Payload {
	var (
		empty, stringValue, longValue, doubleValue Payload
		stringArray, longArray, doubleArray        Payload
		array, object                              Payload
	)
	stringValue.SetStringValue("wide layout")
	longValue.SetLongValue(-9007199254740993)
	doubleValue.SetDoubleValue(0.25)
	stringArray.SetStringArray([]string{"a", "", "c"})
	longArray.SetLongArray([]int64{1, -2, math.MaxInt64})
	doubleArray.SetDoubleArray([]float64{1.5, 2, -0.125})
	array.SetArray([]any{"x", 1, 2.5, true, nil, []any{"nested"}, map[string]any{"k": "v"}})
	object.SetMap(map[string]any{
		"threshold": 0.75,
		"limit":     10,
		"labels":    []string{"a", "b"},
		"nested":    map[string]any{"enabled": false, "ids": []int{3, 4}},
	})

	return map[string]Payload{
		"empty":       empty,
		"stringValue": stringValue,
		"longValue":   longValue,
		"doubleValue": doubleValue,
		"stringArray": stringArray,
		"longArray":   longArray,
		"doubleArray": doubleArray,
		"array":       array,
		"map":         object,
	}
}

func TestPayloadJSONRoundTrip(t *testing.T) {
	t.Parallel()
	for name, payload := range samplePayloads() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			data, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			parsed, err := ParsePayload(data)
			if err != nil {
				t.Fatalf("ParsePayload(%s): %v", data, err)
			}
			if !parsed.DeepEqual(payload) {
				t.Errorf("round trip: got %s, want %s", parsed, payload)
			}
			if parsed.Kind() != payload.Kind() {
				t.Errorf("Kind = %s, want %s", parsed.Kind(), payload.Kind())
			}
		})
	}
}

func TestPayloadCBORRoundTrip(t *testing.T) {
	t.Parallel()
	for name, payload := range samplePayloads() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			data, err := codec.Marshal(payload)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var decoded Payload
			if err := codec.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !decoded.DeepEqual(payload) {
				t.Errorf("round trip: got %s, want %s", decoded, payload)
			}
		})
	}
}

func TestPayloadCanonicalJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		set  func(*Payload)
		want string
	}{
		{"empty", func(*Payload) {}, `{}`},
		{"longValue", func(p *Payload) { p.SetLongValue(10) }, `{"longValue":10}`},
		{"stringValue", func(p *Payload) { p.SetStringValue("x") }, `{"stringValue":"x"}`},
		{"doubleValue", func(p *Payload) { p.SetDoubleValue(0.4) }, `{"doubleValue":0.4}`},
		{"nil stringArray", func(p *Payload) { p.SetStringArray(nil) }, `{"stringArray":[]}`},
		{"longArray", func(p *Payload) { p.SetLongArray([]int64{1, 2}) }, `{"longArray":[1,2]}`},
		{"doubleArray", func(p *Payload) { p.SetDoubleArray([]float64{0.5}) }, `{"doubleArray":[0.5]}`},
		{"array", func(p *Payload) { p.SetArray([]any{1, "a"}) }, `{"array":[1,"a"]}`},
		{"nil map", func(p *Payload) { p.SetMap(nil) }, `{"map":{}}`},
		{"map keys sorted", func(p *Payload) { p.SetMap(map[string]any{"b": 1, "a": 2}) }, `{"map":{"a":2,"b":1}}`},
		{"last setter wins", func(p *Payload) {
			p.SetStringValue("dropped")
			p.SetLongValue(3)
		}, `{"longValue":3}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var payload Payload
			test.set(&payload)
			data, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != test.want {
				t.Errorf("Marshal = %s, want %s", data, test.want)
			}
		})
	}
}

func TestPayloadNegativeZeroRoundTrip(t *testing.T) {
	t.Parallel()
	negativeZero := math.Copysign(0, -1)

	var doubleValue, doubleArray Payload
	doubleValue.SetDoubleValue(negativeZero)
	doubleArray.SetDoubleArray([]float64{1, negativeZero})

	for name, payload := range map[string]Payload{"doubleValue": doubleValue, "doubleArray": doubleArray} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			data, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			parsed, err := ParsePayload(data)
			if err != nil {
				t.Fatalf("ParsePayload(%s): %v", data, err)
			}
			if !parsed.DeepEqual(payload) {
				t.Errorf("round trip of %s: got %s", data, parsed)
			}
		})
	}

	parsed, err := ParsePayload([]byte(`{"doubleValue":-0}`))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if !math.Signbit(parsed.DoubleValue()) {
		t.Errorf("doubleValue -0 decoded as %v, want negative zero", parsed.DoubleValue())
	}
}

func TestPayloadNegativeZeroLiteralAsInteger(t *testing.T) {
	t.Parallel()
	parsed, err := ParsePayload([]byte(`{"longArray":[-0,2]}`))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if got := parsed.LongArray(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("LongArray = %v, want [0 2]", got)
	}
}

func TestPayloadMarshalNaNFails(t *testing.T) {
	t.Parallel()
	var payload Payload
	payload.SetDoubleValue(math.NaN())
	if _, err := json.Marshal(payload); err == nil {
		t.Error("Marshal of NaN should fail")
	}
}

func TestPayloadGettersDefault(t *testing.T) {
	t.Parallel()
	var payload Payload
	if !payload.IsEmpty() || payload.Kind() != KindNone {
		t.Errorf("zero payload Kind = %s, want none", payload.Kind())
	}
	payload.SetStringValue("only")

	if payload.StringValue() != "only" {
		t.Errorf("StringValue = %q", payload.StringValue())
	}
	if payload.LongValue() != 0 || payload.DoubleValue() != 0 {
		t.Error("unset scalar getters should return zero")
	}
	if len(payload.StringArray()) != 0 || len(payload.LongArray()) != 0 ||
		len(payload.DoubleArray()) != 0 || len(payload.Array()) != 0 || len(payload.Map()) != 0 {
		t.Error("unset container getters should return empty values")
	}
	unset := payload.Map()
	if unset == nil {
		t.Fatal("Map of an unpopulated shape should be non-nil")
	}
	unset["written"] = true
	if payload.Kind() != KindStringValue {
		t.Errorf("writing to the unset Map changed Kind to %s", payload.Kind())
	}
}

func TestPayloadUnknownKeysIgnored(t *testing.T) {
	t.Parallel()
	payload, err := ParsePayload([]byte(`{"futureShape":{"x":1},"longValue":5,"json":null}`))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if payload.Kind() != KindLongValue || payload.LongValue() != 5 {
		t.Errorf("payload = %s, want longValue 5", payload)
	}

	empty, err := ParsePayload([]byte(`{"futureShape":true}`))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if !empty.IsEmpty() {
		t.Errorf("payload = %s, want empty", empty)
	}
}

func TestPayloadNullKeyIsAbsent(t *testing.T) {
	t.Parallel()
	payload, err := ParsePayload([]byte(`{"stringValue":null,"doubleValue":1}`))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if payload.Kind() != KindDoubleValue || payload.DoubleValue() != 1 {
		t.Errorf("payload = %s, want doubleValue 1", payload)
	}
}

func TestPayloadMalformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		key      string
		expected string
	}{
		{"not an object", `"text"`, "", "object"},
		{"trailing data", `{} {}`, "", "object"},
		{"string as long", `{"longValue":"10"}`, "longValue", "integer"},
		{"fraction as long", `{"longValue":1.5}`, "longValue", "integer"},
		{"bool as double", `{"doubleValue":true}`, "doubleValue", "number"},
		{"number as string", `{"stringValue":3}`, "stringValue", "string"},
		{"mixed string array", `{"stringArray":["a",2]}`, "stringArray", "array of strings"},
		{"float in long array", `{"longArray":[1,2.5]}`, "longArray", "array of integers"},
		{"null in double array", `{"doubleArray":[1,null]}`, "doubleArray", "array of numbers"},
		{"object as array", `{"array":{}}`, "array", "array"},
		{"array as map", `{"map":[]}`, "map", "object"},
		{"double out of range", `{"doubleValue":1e400}`, "", "object"},
		{"nested number out of range", `{"map":{"k":[-1e999]}}`, "", "object"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParsePayload([]byte(test.input))
			var payloadErr *MalformedPayloadError
			if !errors.As(err, &payloadErr) {
				t.Fatalf("ParsePayload(%s) error = %v, want *MalformedPayloadError", test.input, err)
			}
			if payloadErr.Key != test.key {
				t.Errorf("Key = %q, want %q", payloadErr.Key, test.key)
			}
			if payloadErr.Expected != test.expected {
				t.Errorf("Expected = %q, want %q", payloadErr.Expected, test.expected)
			}
		})
	}
}

func TestPayloadMultipleShapesRejected(t *testing.T) {
	t.Parallel()
	_, err := ParsePayload([]byte(`{"stringValue":"a","doubleValue":0.4}`))
	if !errors.Is(err, ErrMultipleShapes) {
		t.Fatalf("error = %v, want ErrMultipleShapes", err)
	}
	var payloadErr *MalformedPayloadError
	if !errors.As(err, &payloadErr) || payloadErr.Key != "doubleValue" {
		t.Errorf("error = %v, want *MalformedPayloadError for doubleValue", err)
	}
}

func TestPayloadUnmarshalErrorLeavesReceiver(t *testing.T) {
	t.Parallel()
	var payload Payload
	payload.SetStringValue("keep")
	if err := json.Unmarshal([]byte(`{"longValue":"bad"}`), &payload); err == nil {
		t.Fatal("expected error")
	}
	if payload.StringValue() != "keep" {
		t.Errorf("receiver modified on error: %s", payload)
	}
}

func TestPayloadDeepEqualSlotSensitivity(t *testing.T) {
	t.Parallel()
	var withString, withDouble, withEmptyString Payload
	withString.SetStringValue("")
	withDouble.SetDoubleValue(0)
	withEmptyString.SetStringValue("")

	if withString.DeepEqual(withDouble) {
		t.Error("different populated shapes must not be DeepEqual")
	}
	if withString.DeepEqual(Payload{}) {
		t.Error("a populated zero value must not equal an empty payload")
	}
	if !withString.DeepEqual(withEmptyString) {
		t.Error("same shape and value should be DeepEqual")
	}
	if !(Payload{}).DeepEqual(Payload{}) {
		t.Error("empty payloads should be DeepEqual")
	}

	var longs, doubles Payload
	longs.SetLongArray([]int64{1, 2})
	doubles.SetDoubleArray([]float64{1, 2})
	if longs.DeepEqual(doubles) {
		t.Error("long and double arrays must not be DeepEqual")
	}
}

func TestPayloadDeepEqualRobustness(t *testing.T) {
	t.Parallel()
	for name, payload := range samplePayloads() {
		if payload.DeepEqual(nil) {
			t.Errorf("%s: DeepEqual(nil) should be false", name)
		}
		if payload.DeepEqual("hello") {
			t.Errorf("%s: DeepEqual(string) should be false", name)
		}
		if payload.DeepEqual((*Payload)(nil)) {
			t.Errorf("%s: DeepEqual(nil *Payload) should be false", name)
		}
		if payload.DeepEqual(TestBucket{}) {
			t.Errorf("%s: DeepEqual(TestBucket) should be false", name)
		}
		if !payload.DeepEqual(&payload) {
			t.Errorf("%s: DeepEqual should be reflexive through a pointer", name)
		}
	}
}

func TestPayloadDeepEqualValues(t *testing.T) {
	t.Parallel()
	mapPayload := func(value map[string]any) Payload {
		var payload Payload
		payload.SetMap(value)
		return payload
	}
	doubles := func(values ...float64) Payload {
		var payload Payload
		payload.SetDoubleArray(values)
		return payload
	}

	tests := []struct {
		name  string
		a, b  Payload
		equal bool
	}{
		{
			"integral float equals integer",
			mapPayload(map[string]any{"v": 100.0}),
			mapPayload(map[string]any{"v": int64(100)}),
			true,
		},
		{
			"typed slice equals decoded array",
			mapPayload(map[string]any{"s": []int{10, 20}}),
			mapPayload(map[string]any{"s": []any{int64(10), int64(20)}}),
			true,
		},
		{
			"order matters in arrays",
			mapPayload(map[string]any{"s": []any{1, 2}}),
			mapPayload(map[string]any{"s": []any{2, 1}}),
			false,
		},
		{
			"extra key",
			mapPayload(map[string]any{"a": 1}),
			mapPayload(map[string]any{"a": 1, "b": 2}),
			false,
		},
		{
			"nested difference",
			mapPayload(map[string]any{"n": map[string]any{"x": "1"}}),
			mapPayload(map[string]any{"n": map[string]any{"x": 1}}),
			false,
		},
		{
			"null versus missing",
			mapPayload(map[string]any{"a": nil}),
			mapPayload(map[string]any{"b": nil}),
			false,
		},
		{"NaN equals NaN", doubles(math.NaN()), doubles(math.NaN()), true},
		{"signed zeros differ", doubles(0), doubles(math.Copysign(0, -1)), false},
		{"fraction differs", doubles(0.1), doubles(0.2), false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := test.a.DeepEqual(test.b); got != test.equal {
				t.Errorf("%s DeepEqual %s = %v, want %v", test.a, test.b, got, test.equal)
			}
			if got := test.b.DeepEqual(test.a); got != test.equal {
				t.Errorf("DeepEqual not symmetric for %s and %s", test.a, test.b)
			}
		})
	}
}

func TestPayloadClone(t *testing.T) {
	t.Parallel()
	nested := map[string]any{"ids": []any{1, 2}}
	var payload Payload
	payload.SetMap(map[string]any{"nested": nested})

	clone := payload.Clone()
	nested["ids"].([]any)[0] = 99
	nested["added"] = true

	var want Payload
	want.SetMap(map[string]any{"nested": map[string]any{"ids": []any{1, 2}}})
	if !clone.DeepEqual(want) {
		t.Errorf("clone shares state with original: %s", clone)
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()
	tests := map[Kind]string{
		KindNone:        "none",
		KindStringValue: "stringValue",
		KindLongValue:   "longValue",
		KindDoubleValue: "doubleValue",
		KindStringArray: "stringArray",
		KindLongArray:   "longArray",
		KindDoubleArray: "doubleArray",
		KindArray:       "array",
		KindMap:         "map",
		Kind(42):        "unknown(42)",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", uint8(kind), got, want)
		}
	}
}
