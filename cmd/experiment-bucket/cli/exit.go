// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// Exit codes shared by every command.
const (
	ExitCodeOK       = 0
	ExitCodeMismatch = 1
	ExitCodeError    = 2
)

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have already written its
// own output.
//
// This is for commands where a non-zero exit is a valid outcome (diff
// found changes, validate found issues) rather than an unexpected
// error.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// UsageError is an invalid invocation: bad arguments, unknown
// commands or flags, unparseable flag values.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// Usage creates a usage error.
func Usage(format string, args ...any) *UsageError {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by a command to a process exit code:
// nil is ExitCodeOK, an *ExitError carries its own code, and anything
// else is ExitCodeError.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeOK
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return ExitCodeError
}
