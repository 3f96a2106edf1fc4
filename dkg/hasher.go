package dkg

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/f3rmion/fydkg/group"
)

// Hasher derives the Schnorr challenge of a proof of knowledge.
// Different implementations can provide different hash functions
// and domain separation schemes.
type Hasher interface {
	// Challenge computes c = H(index || pub || R).
	Challenge(g group.Group, index uint32, pub, R []byte) group.Scalar
}

func encodeIndex(index uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], index)
	return b[:]
}

// SHA256Hasher implements Hasher using SHA-256.
// This is the default hasher for general use.
type SHA256Hasher struct{}

// Challenge implements Hasher.Challenge.
func (h *SHA256Hasher) Challenge(g group.Group, index uint32, pub, R []byte) group.Scalar {
	hasher := sha256.New()
	hasher.Write([]byte("pok"))
	hasher.Write(encodeIndex(index))
	hasher.Write(pub)
	hasher.Write(R)
	return g.NewScalar().SetBytesWide(hasher.Sum(nil))
}

// DefaultBlake2bPrefix is the domain separation prefix of [NewBlake2bHasher].
const DefaultBlake2bPrefix = "FYDKG-BLAKE512-v1"

// Blake2bHasher implements Hasher using Blake2b-512 with domain separation.
//
// Domain separation format: prefix + tag + input
// Output is interpreted as little-endian before reducing mod curve order.
type Blake2bHasher struct {
	// Prefix is the domain separation prefix.
	Prefix string
}

// NewBlake2bHasher creates a Blake2bHasher with [DefaultBlake2bPrefix].
func NewBlake2bHasher() *Blake2bHasher {
	return &Blake2bHasher{Prefix: DefaultBlake2bPrefix}
}

func (h *Blake2bHasher) hash(tag string, data ...[]byte) []byte {
	hasher, _ := blake2b.New512(nil)
	hasher.Write([]byte(h.Prefix))
	hasher.Write([]byte(tag))
	for _, d := range data {
		hasher.Write(d)
	}
	return hasher.Sum(nil)
}

// Challenge implements Hasher.Challenge.
func (h *Blake2bHasher) Challenge(g group.Group, index uint32, pub, R []byte) group.Scalar {
	hash := h.hash("pok", encodeIndex(index), pub, R)

	// Reverse bytes for little-endian interpretation
	reversed := make([]byte, len(hash))
	for i := range hash {
		reversed[i] = hash[len(hash)-1-i]
	}
	return g.NewScalar().SetBytesWide(reversed)
}
