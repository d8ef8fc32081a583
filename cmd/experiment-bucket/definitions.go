// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/bureau-foundation/experiment/lib/experimentdef"
	"github.com/bureau-foundation/experiment/lib/schema/experiment"
)

// loadDefinition resolves path against paths.definitions and reads a
// source file or encoded frame.
func (env *environment) loadDefinition(path string) (*experimentdef.Definition, error) {
	resolved := env.config.DefinitionPath(path)
	definition, err := experimentdef.Load(resolved)
	if err != nil {
		return nil, err
	}
	env.logger.Debug("loaded definition",
		"path", resolved,
		"definition", definition.Name,
		"buckets", len(definition.Buckets),
	)
	return definition, nil
}

// checkDefinition returns the issues that fail validation under the
// configured strictness and logs strict-only issues as warnings when
// validation is lenient.
func (env *environment) checkDefinition(path string, definition *experimentdef.Definition, strict bool) []string {
	issues := experimentdef.Validate(definition, strict)
	if strict {
		return issues
	}

	lenient := make(map[string]bool, len(issues))
	for _, issue := range issues {
		lenient[issue] = true
	}
	for _, issue := range experimentdef.Validate(definition, true) {
		if !lenient[issue] {
			env.logger.Warn("definition issue (strict validation would reject)", "path", path, "issue", issue)
		}
	}
	return issues
}

func describePayload(bucket experiment.TestBucket) string {
	payload, ok := bucket.Payload()
	if !ok {
		return "(none)"
	}
	return payload.String()
}

func describeBucket(bucket experiment.TestBucket) string {
	return fmt.Sprintf("%s (value %d)", bucket.Name(), bucket.Value())
}
