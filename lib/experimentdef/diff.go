// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experimentdef

import "github.com/bureau-foundation/experiment/lib/schema/experiment"

// ChangeKind classifies a bucket-level difference between two
// definitions.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeModified ChangeKind = "modified"
)

// Change is one bucket-level difference. Old is the zero bucket for
// additions and New is the zero bucket for removals.
type Change struct {
	Name string
	Kind ChangeKind
	Old  experiment.TestBucket
	New  experiment.TestBucket
}

// Diff pairs the buckets of two definitions by name and reports every
// pair that is not FullEqual. Removals and modifications come first in
// the old definition's order, then additions in the new definition's
// order. When a definition repeats a name, only its first bucket with
// that name takes part.
func Diff(previous, current *Definition) []Change {
	oldBuckets := experiment.DedupByName(previous.Buckets)
	newBuckets := experiment.DedupByName(current.Buckets)

	// NameHash is the hash that matches Equal, which is the pairing
	// rule here.
	byName := make(map[experiment.Hash]experiment.TestBucket, len(newBuckets))
	for _, bucket := range newBuckets {
		byName[bucket.NameHash()] = bucket
	}

	var changes []Change
	paired := make(map[experiment.Hash]bool, len(oldBuckets))
	for _, old := range oldBuckets {
		key := old.NameHash()
		replacement, exists := byName[key]
		if !exists {
			changes = append(changes, Change{Name: old.Name(), Kind: ChangeRemoved, Old: old})
			continue
		}
		paired[key] = true
		if !old.FullEqual(replacement) {
			changes = append(changes, Change{Name: old.Name(), Kind: ChangeModified, Old: old, New: replacement})
		}
	}

	for _, bucket := range newBuckets {
		if !paired[bucket.NameHash()] {
			changes = append(changes, Change{Name: bucket.Name(), Kind: ChangeAdded, New: bucket})
		}
	}

	return changes
}
