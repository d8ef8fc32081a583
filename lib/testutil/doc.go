// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [WriteFile] writes a fixture into a test-scoped temporary directory
// and returns its path. [UniqueID] generates monotonically increasing
// identifiers for test disambiguation; use it instead of time.Now()
// when tests need distinct bucket or experiment names.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no dependencies on other packages in this module.
package testutil
