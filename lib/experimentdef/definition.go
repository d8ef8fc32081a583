// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experimentdef

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/experiment/lib/schema/experiment"
)

// DefinitionVersion is the current schema version. Increment when
// adding fields that older readers must not silently drop.
const DefinitionVersion = 1

// Definition is the bucket list of one experiment.
type Definition struct {
	// Version is the schema version (see DefinitionVersion).
	Version int `json:"version"`

	// Name identifies the experiment.
	Name string `json:"name"`

	// Description is free-form documentation for humans.
	Description string `json:"description,omitempty"`

	// Buckets are the variants, in the order they were authored.
	// Names and values must each be unique (see Validate).
	Buckets []experiment.TestBucket `json:"buckets"`
}

// Bucket returns the first bucket Equal to a bucket named name.
func (d *Definition) Bucket(name string) (experiment.TestBucket, bool) {
	wanted := experiment.NewTestBucket(name, 0, "")
	for _, bucket := range d.Buckets {
		if bucket.Equal(wanted) {
			return bucket, true
		}
	}
	return experiment.TestBucket{}, false
}

// definitionDomainKey separates definition fingerprints from the
// bucket hash domains.
var definitionDomainKey = [32]byte{
	'e', 'x', 'p', 'e', 'r', 'i', 'm', 'e', 'n', 't', '.', 'd', 'e', 'f', 'i', 'n',
	'i', 't', 'i', 'o', 'n', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Fingerprint hashes the canonical JSON encoding of the definition.
// Two definitions have the same fingerprint exactly when every bucket
// is FullEqual in the same order and the metadata matches.
func (d *Definition) Fingerprint() (experiment.Hash, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return experiment.Hash{}, fmt.Errorf("fingerprinting definition %q: %w", d.Name, err)
	}

	hasher, err := blake3.NewKeyed(definitionDomainKey[:])
	if err != nil {
		panic("experimentdef: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)

	var hash experiment.Hash
	copy(hash[:], hasher.Sum(nil))
	return hash, nil
}
