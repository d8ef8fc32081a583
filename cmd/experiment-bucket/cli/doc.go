// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command framework for experiment-bucket.
//
// A [Command] tree dispatches on the first positional argument, parses
// per-command flags with pflag, and prints structured help. Unknown
// commands and flags get "did you mean" suggestions based on edit
// distance.
//
// Commands report a non-zero outcome that is not an error (a diff that
// found changes, a definition that failed validation) by returning an
// [ExitError]. [NewCommandLogger] builds the slog logger shared by
// every command.
package cli
