// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experimentdef

import "fmt"

// Validate checks a Definition for structural issues. Returns a list
// of human-readable issue descriptions; an empty list means the
// definition is valid.
//
// Always checked:
//   - Version is between 1 and DefinitionVersion
//   - Bucket names are unique
//   - Bucket values are unique
//
// With strict set, additionally:
//   - The definition has a name
//   - At least one bucket is present
//   - Every bucket has a non-empty name
func Validate(definition *Definition, strict bool) []string {
	var issues []string

	if definition.Version < 1 {
		issues = append(issues, fmt.Sprintf("version must be >= 1, got %d", definition.Version))
	} else if definition.Version > DefinitionVersion {
		issues = append(issues, fmt.Sprintf(
			"version %d is newer than supported version %d", definition.Version, DefinitionVersion,
		))
	}

	if strict {
		if definition.Name == "" {
			issues = append(issues, "name is required")
		}
		if len(definition.Buckets) == 0 {
			issues = append(issues, "definition has no buckets (at least one bucket is required)")
		}
	}

	// Duplicate names collapse under name-based deduplication, so the
	// later bucket would be unreachable.
	names := make(map[string]int, len(definition.Buckets))
	values := make(map[int]int, len(definition.Buckets))
	for index, bucket := range definition.Buckets {
		prefix := fmt.Sprintf("buckets[%d]", index)

		if strict && bucket.Name() == "" {
			issues = append(issues, fmt.Sprintf("%s: name is required", prefix))
		}

		if firstIndex, exists := names[bucket.Name()]; exists {
			issues = append(issues, fmt.Sprintf(
				"%s %q: duplicate bucket name (first used at buckets[%d])",
				prefix, bucket.Name(), firstIndex,
			))
		} else {
			names[bucket.Name()] = index
		}

		if firstIndex, exists := values[bucket.Value()]; exists {
			issues = append(issues, fmt.Sprintf(
				"%s %q: duplicate bucket value %d (first used at buckets[%d])",
				prefix, bucket.Name(), bucket.Value(), firstIndex,
			))
		} else {
			values[bucket.Value()] = index
		}
	}

	return issues
}
