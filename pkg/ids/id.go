package ids

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// ID represents a unique identifier
type ID [32]byte

// Empty is the zero ID
var Empty = ID{}

// GenerateTestID creates a random ID for testing
func GenerateTestID() ID {
	var id ID
	rand.Read(id[:])
	return id
}

// FromBytes derives an ID from arbitrary bytes using Keccak-256,
// so equal inputs always map to the same ID.
func FromBytes(data []byte) ID {
	var id ID
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	copy(id[:], h.Sum(nil))
	return id
}

// String returns the hex representation of the ID
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the byte representation of the ID
func (id ID) Bytes() []byte {
	return id[:]
}

// IsEmpty reports whether the ID is the zero value
func (id ID) IsEmpty() bool {
	return id == Empty
}

// FromString creates an ID from a hex string
func FromString(s string) (ID, error) {
	var id ID
	bytes, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(bytes) != 32 {
		return id, fmt.Errorf("invalid ID length: expected 32, got %d", len(bytes))
	}
	copy(id[:], bytes)
	return id, nil
}
