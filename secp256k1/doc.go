// Package secp256k1 implements [group.Group] for the secp256k1 curve
// using github.com/btcsuite/btcd/btcec/v2.
//
// Scalars are 32 bytes big-endian. Points use the 33-byte SEC1 compressed
// form, except the identity, which is 33 zero bytes so that it can appear
// in commitment vectors and be rejected by the dkg package rather than by
// the decoder.
package secp256k1
