package dkg

import (
	"github.com/f3rmion/fydkg/group"
)

// Finalize derives the secret key share and the group key.
//
// ownPublicKey must be the C_0 this participant published in round 1.
// The secret key share is f_i(i) plus every verified incoming share; the
// group key is the sum of C_{s,0} over the qualified set. Finalize checks
// that the share matches its verification share and reports any mismatch
// as a [*SelfConsistencyError]. Calling it again with the same public key
// returns equal results.
func (r *Round2State) Finalize(ownPublicKey group.Point) (*SecretKeyShare, *GroupKey, error) {
	g := r.dkg.group

	if r.phase == PhaseFinalized {
		if ownPublicKey == nil || !ownPublicKey.Equal(r.final.ownPublicKey) {
			return nil, nil, &SelfConsistencyError{Index: r.index, Reason: "public key differs from previous finalization"}
		}
		return r.outputs()
	}
	if r.phase != PhaseSharesVerified {
		return nil, nil, phaseError("finalize", r.phase, PhaseSharesVerified)
	}

	own := r.commitments[r.index]
	if ownPublicKey == nil || !ownPublicKey.Equal(own[0]) {
		return nil, nil, &SelfConsistencyError{Index: r.index, Reason: "public key does not match own commitment"}
	}

	secret := g.NewScalar().Set(r.selfShare)
	groupKey := g.NewPoint()
	for s, commits := range r.commitments {
		groupKey = g.NewPoint().Add(groupKey, commits[0])
		if s == r.index {
			continue
		}
		v, ok := r.received[s]
		if !ok {
			return nil, nil, &SelfConsistencyError{Index: r.index, Reason: "missing verified share from qualified participant"}
		}
		secret = g.NewScalar().Add(secret, v)
	}

	if !group.Generate(g, secret).Equal(r.verificationShare(r.index)) {
		secret.Set(g.NewScalar())
		return nil, nil, &SelfConsistencyError{Index: r.index, Reason: "secret share does not match verification share"}
	}

	r.final = &finalized{
		ownPublicKey: g.NewPoint().Set(ownPublicKey),
		secret:       secret,
		groupKey:     groupKey,
	}
	r.phase = PhaseFinalized

	zero := g.NewScalar()
	r.selfShare.Set(zero)
	for _, v := range r.outgoing {
		v.Set(zero)
	}
	r.outgoing = map[uint32]group.Scalar{}

	return r.outputs()
}

func (r *Round2State) outputs() (*SecretKeyShare, *GroupKey, error) {
	g := r.dkg.group
	share := &SecretKeyShare{group: g, index: r.index, value: g.NewScalar().Set(r.final.secret)}
	return share, NewGroupKey(g, r.final.groupKey), nil
}
