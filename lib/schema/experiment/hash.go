// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// String returns the hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// domainKey is a 32-byte key for BLAKE3 keyed hashing. The name tier
// and the full tier hash under different keys so that a name hash can
// never collide with a full hash of some other bucket.
type domainKey [32]byte

// Domain keys are the ASCII domain name zero-padded to 32 bytes.
// Changing them invalidates every stored hash in that domain.
var (
	nameDomainKey = domainKey{
		'e', 'x', 'p', 'e', 'r', 'i', 'm', 'e', 'n', 't', '.', 'b', 'u', 'c', 'k', 'e',
		't', '.', 'n', 'a', 'm', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	fullDomainKey = domainKey{
		'e', 'x', 'p', 'e', 'r', 'i', 'm', 'e', 'n', 't', '.', 'b', 'u', 'c', 'k', 'e',
		't', '.', 'f', 'u', 'l', 'l', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// NameHash is the hash that goes with Equal: it covers the name only.
func (b TestBucket) NameHash() Hash {
	return keyedHash(nameDomainKey, []byte(b.name))
}

// FullHash is the hash that goes with FullEqual: it covers all four
// fields through the canonical JSON encoding. Fails only when the
// payload cannot be encoded (for example a NaN double).
func (b TestBucket) FullHash() (Hash, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return Hash{}, fmt.Errorf("hashing bucket %q: %w", b.name, err)
	}
	return keyedHash(fullDomainKey, data), nil
}

func keyedHash(key domainKey, data []byte) Hash {
	// NewKeyed only fails for a key that is not 32 bytes, which
	// domainKey rules out.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("experiment: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}
