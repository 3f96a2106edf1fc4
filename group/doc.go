// Package group defines abstract interfaces for the prime-order groups
// used by the distributed key generation protocol in package dkg.
//
// This package provides three core interfaces that abstract over the
// mathematical operations needed for Feldman commitments and Schnorr
// proofs of knowledge:
//
//   - [Scalar]: Elements of the scalar field (integers modulo the group order)
//   - [Point]: Elements of the group (points on an elliptic curve)
//   - [Group]: Factory and utility methods for creating scalars and points
//
// # Design Philosophy
//
// The interfaces use a mutable receiver pattern. Operations like Add, Mul,
// and ScalarMult set the receiver to the result and return it:
//
//	// Compute a + b*c
//	result := g.NewScalar().Mul(b, c)
//	result = g.NewScalar().Add(a, result)
//
// Because values are mutable, code that stores a Scalar or Point received
// from somewhere else must copy it first (g.NewScalar().Set(s)). The dkg
// package does this for every value that crosses a participant boundary.
//
// # Encodings
//
// Bytes and SetBytes are exact inverses: SetBytes rejects anything that
// Bytes could not have produced. Protocol messages therefore survive a
// decode/encode cycle byte for byte. SetBytesWide is the lossy direction,
// used only for hashing and sampling.
//
// # Implementations
//
// The bjj, ed25519 and secp256k1 packages implement [Group]. Each of them
// runs the conformance suite in package grouptest.
package group
