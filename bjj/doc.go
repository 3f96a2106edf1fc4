// Package bjj implements [group.Group] over the prime-order subgroup of
// Baby Jubjub, for use with the key generation in package dkg.
//
// Baby Jubjub is the twisted Edwards curve
//
//	168700*x^2 + y^2 = 1 + 168696*x^2*y^2
//
// over the BN254 scalar field, which makes keys generated here usable
// inside circuits over BN254. Arithmetic comes from gnark-crypto's
// twistededwards package.
//
// The subgroup order is
//
//	2736030358979909402780800718157159386076813972158567259200215660948447373041
//
// and the cofactor is 8.
//
// # Usage
//
//	g := &bjj.BJJ{}
//	d, err := dkg.New(g, threshold, total)
//
// # Encodings
//
// Scalars are 32 bytes big-endian. Points use gnark-crypto's 32-byte
// compressed form. Decoding rejects points outside the prime-order
// subgroup.
package bjj
