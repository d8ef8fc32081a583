// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
)

// WriteFile writes content to name inside a fresh temporary directory
// and returns the absolute path. The directory is removed when the
// test completes.
//
//	path := testutil.WriteFile(t, "checkout.jsonc", `{"version": 1}`)
func WriteFile(t interface {
	Helper()
	TempDir() string
	Fatalf(format string, args ...any)
}, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}
