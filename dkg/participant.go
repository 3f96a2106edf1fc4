package dkg

import (
	"bytes"
	"fmt"
	"io"

	"github.com/f3rmion/fydkg/group"
)

// ProofOfKnowledge is a Schnorr proof of knowledge of a_0 bound to the
// participant index.
type ProofOfKnowledge struct {
	R group.Point
	Z group.Scalar
}

// Participant is the public record a participant broadcasts in round 1.
type Participant struct {
	Index       uint32
	Commitments []group.Point // C_k = a_k * G, k = 0..t-1
	Proof       *ProofOfKnowledge
}

// PublicKey returns the participant's zero-degree commitment C_0, or nil
// if the record has no commitments.
func (p *Participant) PublicKey() group.Point {
	if len(p.Commitments) == 0 {
		return nil
	}
	return p.Commitments[0]
}

func (p *Participant) clone(g group.Group) *Participant {
	c := &Participant{Index: p.Index, Commitments: copyPoints(g, p.Commitments)}
	if p.Proof != nil {
		c.Proof = &ProofOfKnowledge{}
		if p.Proof.R != nil {
			c.Proof.R = g.NewPoint().Set(p.Proof.R)
		}
		if p.Proof.Z != nil {
			c.Proof.Z = g.NewScalar().Set(p.Proof.Z)
		}
	}
	return c
}

// equal compares two records by encoding.
func (p *Participant) equal(o *Participant) bool {
	if p.Index != o.Index || len(p.Commitments) != len(o.Commitments) {
		return false
	}
	for k := range p.Commitments {
		if !bytes.Equal(p.Commitments[k].Bytes(), o.Commitments[k].Bytes()) {
			return false
		}
	}
	if (p.Proof == nil) != (o.Proof == nil) {
		return false
	}
	if p.Proof == nil {
		return true
	}
	if p.Proof.R == nil || o.Proof.R == nil || p.Proof.Z == nil || o.Proof.Z == nil {
		return false
	}
	return p.Proof.R.Equal(o.Proof.R) && p.Proof.Z.Equal(o.Proof.Z)
}

// NewParticipant samples the secret polynomial for index and returns the
// public record together with the coefficients. The record is safe to
// broadcast; the coefficients must never leave the caller.
func (d *DKG) NewParticipant(r io.Reader, index uint32) (*Participant, *Coefficients, error) {
	if r == nil {
		return nil, nil, fmt.Errorf("%w: nil random source", ErrMalformedInput)
	}
	if !d.params.validIndex(index) {
		return nil, nil, fmt.Errorf("%w: index %d not in [1, %d]", ErrMalformedInput, index, d.params.Total)
	}

	coeffs, err := newCoefficients(d.group, r, index, d.params.Threshold)
	if err != nil {
		return nil, nil, err
	}
	commits := coeffs.commit()

	proof, err := d.prove(r, index, coeffs.values[0], commits[0])
	if err != nil {
		coeffs.Zeroize()
		return nil, nil, err
	}

	return &Participant{Index: index, Commitments: commits, Proof: proof}, coeffs, nil
}

// prove computes R = kG, c = H(index || C_0 || R), Z = k + a_0 * c.
func (d *DKG) prove(r io.Reader, index uint32, secret group.Scalar, pub group.Point) (*ProofOfKnowledge, error) {
	k, err := d.group.RandomScalar(r)
	if err != nil {
		return nil, err
	}
	R := group.Generate(d.group, k)
	c := d.hasher.Challenge(d.group, index, pub.Bytes(), R.Bytes())

	z := d.group.NewScalar().Mul(secret, c)
	z = d.group.NewScalar().Add(k, z)
	k.Set(d.group.NewScalar())

	return &ProofOfKnowledge{R: R, Z: z}, nil
}

// VerifyParticipant checks a peer's record: index range, commitment
// vector length t, no identity commitments, and the proof of knowledge
// Z*G == R + c*C_0. Errors are [*PeerError] values wrapping
// [ErrMalformedInput] or [ErrProofOfKnowledge].
func (d *DKG) VerifyParticipant(p *Participant) error {
	if p == nil {
		return fmt.Errorf("%w: nil participant", ErrMalformedInput)
	}
	if !d.params.validIndex(p.Index) {
		return peerError(p.Index, fmt.Errorf("%w: index out of range", ErrMalformedInput))
	}
	if uint32(len(p.Commitments)) != d.params.Threshold {
		return peerError(p.Index, fmt.Errorf("%w: %d commitments, want %d",
			ErrMalformedInput, len(p.Commitments), d.params.Threshold))
	}
	for k, c := range p.Commitments {
		if c == nil || c.IsIdentity() {
			return peerError(p.Index, fmt.Errorf("%w: commitment %d is the identity", ErrMalformedInput, k))
		}
	}
	if p.Proof == nil || p.Proof.R == nil || p.Proof.Z == nil {
		return peerError(p.Index, fmt.Errorf("%w: missing proof", ErrProofOfKnowledge))
	}

	pub := p.Commitments[0]
	c := d.hasher.Challenge(d.group, p.Index, pub.Bytes(), p.Proof.R.Bytes())

	lhs := group.Generate(d.group, p.Proof.Z)
	rhs := d.group.NewPoint().ScalarMult(c, pub)
	rhs = d.group.NewPoint().Add(p.Proof.R, rhs)

	if !lhs.Equal(rhs) {
		return peerError(p.Index, ErrProofOfKnowledge)
	}
	return nil
}
