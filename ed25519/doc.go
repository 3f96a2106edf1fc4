// Package ed25519 implements [group.Group] over the prime-order subgroup
// of edwards25519, backed by go.dedis.ch/kyber/v4.
//
// Scalars and points use the standard 32-byte little-endian Ed25519
// encodings. The Kyber accessors expose the underlying kyber values so
// that key shares produced by package dkg can be handed to kyber's share
// package.
package ed25519
