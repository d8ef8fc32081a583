// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"errors"
	"fmt"
)

// ErrMultipleShapes is wrapped by a MalformedPayloadError when a
// payload document populates more than one shape key.
var ErrMultipleShapes = errors.New("payload populates more than one shape")

// MalformedPayloadError reports a payload document whose present key
// holds a value of the wrong shape. Key is empty when the document
// itself is not a JSON object.
type MalformedPayloadError struct {
	Key      string
	Expected string
	Err      error
}

func (e *MalformedPayloadError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("malformed payload: expected %s: %v", e.Expected, e.Err)
	}
	return fmt.Sprintf("malformed payload: %q: expected %s: %v", e.Key, e.Expected, e.Err)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// MalformedBucketError reports a bucket document whose present field
// has the wrong type, or whose payload failed to parse. In the latter
// case Field is "payload" and Err is the *MalformedPayloadError.
type MalformedBucketError struct {
	Field string
	Err   error
}

func (e *MalformedBucketError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed bucket: %v", e.Err)
	}
	return fmt.Sprintf("malformed bucket: field %q: %v", e.Field, e.Err)
}

func (e *MalformedBucketError) Unwrap() error { return e.Err }
