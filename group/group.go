package group

import (
	"io"
)

// Scalar represents an element of the scalar field associated with a
// cryptographic group. Scalars are integers modulo the group order and
// are used as polynomial coefficients, share values and exponents.
//
// All arithmetic methods use a mutable receiver pattern: they modify
// the receiver, store the result in it, and return it.
//
// Implementations must ensure all operations produce results in the
// valid range [0, order).
type Scalar interface {
	// Add sets the receiver to a+b and returns it.
	Add(a, b Scalar) Scalar
	// Sub sets the receiver to a-b and returns it.
	Sub(a, b Scalar) Scalar
	// Mul sets the receiver to a*b and returns it.
	Mul(a, b Scalar) Scalar
	// Negate sets the receiver to -a and returns it.
	Negate(a Scalar) Scalar
	// Invert sets the receiver to a^{-1} and returns it.
	// Returns an error if a is zero.
	Invert(a Scalar) (Scalar, error)
	// Set sets the receiver to a and returns it.
	Set(a Scalar) Scalar
	// SetUint64 sets the receiver to the integer v (mod order) and returns it.
	SetUint64(v uint64) Scalar
	// Bytes returns the canonical fixed-length encoding of the scalar.
	Bytes() []byte
	// SetBytes decodes a canonical encoding produced by Bytes.
	// Returns an error if the length is wrong or the value is not
	// fully reduced, so that decoding never changes the byte value.
	SetBytes(data []byte) (Scalar, error)
	// SetBytesWide interprets data as a big-endian integer of any length,
	// reduces it modulo the order and stores it in the receiver. It is
	// used to map hash outputs and random bytes to uniform scalars.
	SetBytesWide(data []byte) Scalar
	// Equal reports whether the receiver equals b.
	Equal(b Scalar) bool
	// IsZero reports whether the receiver is zero.
	IsZero() bool
}

// Point represents an element of a cryptographic group, typically a point
// on an elliptic curve.
//
// Like [Scalar], all arithmetic methods use a mutable receiver pattern.
//
// The identity element is the additive identity: P + Identity = P for
// all points P.
type Point interface {
	// Add sets the receiver to a+b and returns it.
	Add(a, b Point) Point
	// Sub sets the receiver to a-b and returns it.
	Sub(a, b Point) Point
	// Negate sets the receiver to -a and returns it.
	Negate(a Point) Point
	// ScalarMult sets the receiver to s*p and returns it.
	ScalarMult(s Scalar, p Point) Point
	// Set sets the receiver to a and returns it.
	Set(a Point) Point
	// Bytes returns the canonical byte representation of the point.
	Bytes() []byte
	// SetBytes sets the receiver from a byte slice and returns it.
	// Returns an error if the data does not encode a valid group element.
	SetBytes(data []byte) (Point, error)
	// Equal reports whether the receiver equals b.
	Equal(b Point) bool
	// IsIdentity reports whether the receiver is the identity element.
	IsIdentity() bool
}

// Group defines a prime-order group suitable for Feldman commitments and
// Schnorr proofs of knowledge. It provides factory methods for scalars and
// points, the generator, and random scalar sampling.
//
// A Group implementation encapsulates all curve-specific details, allowing
// the DKG implementation to be generic over different elliptic curves.
//
// Example usage:
//
//	g := &bjj.BJJ{}  // or any other Group implementation
//	scalar, _ := g.RandomScalar(rand.Reader)
//	point := g.NewPoint().ScalarMult(scalar, g.Generator())
type Group interface {
	// Name returns a short stable identifier such as "bjj".
	Name() string
	// NewScalar returns a new zero scalar.
	NewScalar() Scalar
	// NewPoint returns a new identity point.
	NewPoint() Point
	// Generator returns the group's base point.
	Generator() Point
	// RandomScalar returns a uniformly random scalar read from r.
	RandomScalar(r io.Reader) (Scalar, error)
	// Order returns the group order as a big-endian byte slice.
	Order() []byte
}

// ScalarFromIndex returns the scalar encoding of a participant index.
func ScalarFromIndex(g Group, index uint32) Scalar {
	return g.NewScalar().SetUint64(uint64(index))
}

// Generate returns s*G.
func Generate(g Group, s Scalar) Point {
	return g.NewPoint().ScalarMult(s, g.Generator())
}
