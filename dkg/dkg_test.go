package dkg

import (
	"crypto/rand"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/f3rmion/fydkg/bjj"
	"github.com/f3rmion/fydkg/ed25519"
	"github.com/f3rmion/fydkg/group"
	"github.com/f3rmion/fydkg/secp256k1"
)

func TestParametersValidate(t *testing.T) {
	tests := []struct {
		name    string
		t, n    uint32
		wantErr bool
	}{
		{"1-of-1", 1, 1, false},
		{"2-of-3", 2, 3, false},
		{"n-of-n", 5, 5, false},
		{"zero threshold", 0, 3, true},
		{"threshold above total", 4, 3, true},
		{"too many participants", 2, MaxParticipants + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&bjj.BJJ{}, tt.t, tt.n)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedInput)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDKGAllHonest(t *testing.T) {
	configs := []struct {
		threshold, total uint32
	}{
		{1, 1},
		{1, 3},
		{2, 3},
		{2, 5},
		{3, 5},
		{3, 7},
		{4, 4},
	}

	for _, cfg := range configs {
		t.Run(fmt.Sprintf("%d-of-%d", cfg.threshold, cfg.total), func(t *testing.T) {
			g := &bjj.BJJ{}
			out := runProtocol(t, g, cfg.threshold, cfg.total, tamper{})

			if len(out.errs) != 0 {
				t.Fatalf("unexpected errors: %v", out.errs)
			}
			if len(out.groupKeys) != int(cfg.total) {
				t.Fatalf("got %d group keys, want %d", len(out.groupKeys), cfg.total)
			}
			if err := CheckGroupKeys(out.groupKeys); err != nil {
				t.Fatal(err)
			}

			all := make([]uint32, 0, cfg.total)
			for i := uint32(1); i <= cfg.total; i++ {
				all = append(all, i)
			}
			want := groupKeyFor(g, out.participants, all)
			first := out.groupKeys[1]
			if !first.Point().Equal(want) {
				t.Error("group key is not the sum of the constant-term commitments")
			}

			// Any t shares reconstruct the secret behind the group key.
			shares := make([]*SecretKeyShare, 0, cfg.total)
			for i := cfg.total; i >= 1; i-- {
				shares = append(shares, out.keys[i])
			}
			secret, err := RecoverSecret(g, shares, cfg.threshold)
			if err != nil {
				t.Fatal(err)
			}
			if !group.Generate(g, secret).Equal(first.Point()) {
				t.Error("reconstructed secret does not match group key")
			}
		})
	}
}

func TestDKGBackends(t *testing.T) {
	groups := []group.Group{&bjj.BJJ{}, &ed25519.Ed25519{}, &secp256k1.Secp256k1{}}
	for _, g := range groups {
		t.Run(g.Name(), func(t *testing.T) {
			out := runProtocol(t, g, 2, 3, tamper{})
			require.Empty(t, out.errs)
			require.NoError(t, CheckGroupKeys(out.groupKeys))

			secret, err := RecoverSecret(g, []*SecretKeyShare{out.keys[1], out.keys[3]}, 2)
			require.NoError(t, err)
			require.True(t, group.Generate(g, secret).Equal(out.groupKeys[2].Point()))
		})
	}
}

// t=2, n=3, all honest.
func TestScenarioTwoOfThree(t *testing.T) {
	g := &bjj.BJJ{}
	out := runProtocol(t, g, 2, 3, tamper{})
	require.Empty(t, out.errs)
	require.NoError(t, CheckGroupKeys(out.groupKeys))

	gk := out.groupKeys[1].Point()
	pairs := [][2]uint32{{1, 2}, {1, 3}, {2, 3}}
	var secrets []group.Scalar
	for _, pr := range pairs {
		s, err := RecoverSecret(g, []*SecretKeyShare{out.keys[pr[0]], out.keys[pr[1]]}, 2)
		require.NoError(t, err)
		require.True(t, group.Generate(g, s).Equal(gk), "pair %v", pr)
		secrets = append(secrets, s)
	}
	require.True(t, secrets[0].Equal(secrets[1]))
	require.True(t, secrets[1].Equal(secrets[2]))

	// A single share is not enough.
	_, err := RecoverSecret(g, []*SecretKeyShare{out.keys[3]}, 2)
	require.ErrorIs(t, err, ErrMalformedInput)
	alone, err := RecoverSecret(g, []*SecretKeyShare{out.keys[3]}, 1)
	require.NoError(t, err)
	require.False(t, group.Generate(g, alone).Equal(gk))
}

// t=3, n=5, participant 4 sends a corrupted share to participant 1 and
// backs it with a corrupted justification.
func TestScenarioCorruptShareExcluded(t *testing.T) {
	g := &bjj.BJJ{}
	out := runProtocol(t, g, 3, 5, tamper{
		share: func(s *SecretShare) {
			if s.Sender == 4 && s.Receiver == 1 {
				s.Value = plusOne(g, s.Value)
			}
		},
		justification: func(j *Justification) {
			if j.Accused == 4 && j.Accuser == 1 {
				j.Value = plusOne(g, j.Value)
			}
		},
	})

	// The cheater learns it was excluded; everyone else finalizes.
	require.Len(t, out.errs, 1)
	require.ErrorIs(t, out.errs[4], ErrExcluded)
	require.Len(t, out.groupKeys, 4)
	require.NoError(t, CheckGroupKeys(out.groupKeys))

	for i, r2 := range out.round2 {
		require.Equal(t, []uint32{4}, r2.Excluded(), "participant %d", i)
		require.Equal(t, []uint32{1, 2, 3, 5}, r2.Qualified(), "participant %d", i)
		f := r2.exclusions.Fault(4)
		require.Equal(t, FaultInvalidShare, f.Kind)
		require.ErrorIs(t, f, ErrShareVerification)
	}

	want := groupKeyFor(g, out.participants, []uint32{1, 2, 3, 5})
	require.True(t, out.groupKeys[1].Point().Equal(want))

	for _, set := range [][]uint32{{1, 2, 5}, {2, 3, 5}, {1, 3, 5}} {
		shares := []*SecretKeyShare{out.keys[set[0]], out.keys[set[1]], out.keys[set[2]]}
		secret, err := RecoverSecret(g, shares, 3)
		require.NoError(t, err)
		require.True(t, group.Generate(g, secret).Equal(want), "shares %v", set)
	}
}

// The share is corrupted in transit but the accused answers honestly, so
// the complaint is rejected and the accused stays qualified.
func TestScenarioComplaintJustified(t *testing.T) {
	g := &bjj.BJJ{}
	out := runProtocol(t, g, 3, 5, tamper{
		share: func(s *SecretShare) {
			if s.Sender == 4 && s.Receiver == 1 {
				s.Value = plusOne(g, s.Value)
			}
		},
	})

	require.Empty(t, out.errs)
	require.NoError(t, CheckGroupKeys(out.groupKeys))
	for _, r2 := range out.round2 {
		require.Empty(t, r2.Excluded())
	}
	require.Empty(t, out.round2[1].Complaints())

	all := []uint32{1, 2, 3, 4, 5}
	require.True(t, out.groupKeys[3].Point().Equal(groupKeyFor(g, out.participants, all)))

	secret, err := RecoverSecret(g, []*SecretKeyShare{out.keys[1], out.keys[4], out.keys[5]}, 3)
	require.NoError(t, err)
	require.True(t, group.Generate(g, secret).Equal(out.groupKeys[1].Point()))
}

// t=3, n=3, participant 2 publishes an invalid proof of knowledge.
func TestScenarioBadProofAborts(t *testing.T) {
	g := &bjj.BJJ{}
	out := runProtocol(t, g, 3, 3, tamper{
		participant: func(p *Participant) {
			if p.Index == 2 {
				p.Proof.Z = plusOne(g, p.Proof.Z)
			}
		},
	})

	require.Empty(t, out.groupKeys)
	require.Len(t, out.errs, 3)
	for i, err := range out.errs {
		require.ErrorIs(t, err, ErrInsufficientParticipants, "participant %d", i)
		var ipe *InsufficientParticipantsError
		require.True(t, errors.As(err, &ipe))
		require.Equal(t, 3, ipe.Threshold)
	}
	var ipe *InsufficientParticipantsError
	require.True(t, errors.As(out.errs[1], &ipe))
	require.Equal(t, []uint32{2}, ipe.Excluded)
	require.Equal(t, 2, ipe.Qualified)
}

// With enough honest peers left, a bad proof only excludes its author.
func TestBadProofExcludedConsistently(t *testing.T) {
	g := &bjj.BJJ{}
	out := runProtocol(t, g, 2, 4, tamper{
		participant: func(p *Participant) {
			if p.Index == 3 {
				p.Proof.Z = plusOne(g, p.Proof.Z)
			}
		},
	})

	for _, i := range []uint32{1, 2, 4} {
		require.NoError(t, out.errs[i])
		require.Equal(t, []uint32{3}, out.round2[i].Excluded())
		require.Equal(t, FaultInvalidProof, out.round2[i].exclusions.Fault(3).Kind)
	}
	honest := map[uint32]*GroupKey{1: out.groupKeys[1], 2: out.groupKeys[2], 4: out.groupKeys[4]}
	require.NoError(t, CheckGroupKeys(honest))
	require.True(t, out.groupKeys[1].Point().Equal(groupKeyFor(g, out.participants, []uint32{1, 2, 4})))

	// Participant 3 saw no fault of its own, never got shares and is
	// left alone after resolution.
	require.ErrorIs(t, out.errs[3], ErrInsufficientParticipants)
}

func TestFinalizeIdempotent(t *testing.T) {
	g := &bjj.BJJ{}
	out := runProtocol(t, g, 2, 3, tamper{})
	require.Empty(t, out.errs)

	r2 := out.round2[2]
	key, gk, err := r2.Finalize(out.participants[2].PublicKey())
	require.NoError(t, err)
	require.True(t, key.Equal(out.keys[2]))
	require.True(t, gk.Equal(out.groupKeys[2]))
	require.Equal(t, PhaseFinalized, r2.Phase())

	// Wiping a returned copy does not affect the cached result.
	key.Zeroize()
	again, _, err := r2.Finalize(out.participants[2].PublicKey())
	require.NoError(t, err)
	require.True(t, again.Equal(out.keys[2]))
}

func TestFinalizeWrongPublicKey(t *testing.T) {
	g := &bjj.BJJ{}
	d, err := New(g, 1, 1)
	require.NoError(t, err)
	p, coeffs, err := d.NewParticipant(rand.Reader, 1)
	require.NoError(t, err)

	r1, err := d.NewRound1(p, coeffs)
	require.NoError(t, err)
	r1.Broadcast()
	require.NoError(t, r1.Verify())
	r2, set, err := r1.ToRound2()
	require.NoError(t, err)
	require.Zero(t, set.Len())
	_, err = r2.CloseShares()
	require.NoError(t, err)
	require.NoError(t, r2.Resolve(nil, nil))

	_, _, err = r2.Finalize(g.Generator())
	require.ErrorIs(t, err, ErrSelfConsistency)
	var sce *SelfConsistencyError
	require.True(t, errors.As(err, &sce))
	require.Equal(t, uint32(1), sce.Index)

	key, gk, err := r2.Finalize(p.PublicKey())
	require.NoError(t, err)
	require.True(t, key.PublicKey().Equal(gk.Point()))
}

func TestVerificationShares(t *testing.T) {
	g := &bjj.BJJ{}
	out := runProtocol(t, g, 3, 5, tamper{})
	require.Empty(t, out.errs)

	vs, err := out.round2[1].VerificationShares()
	require.NoError(t, err)
	require.Len(t, vs, 5)
	for i, key := range out.keys {
		require.True(t, vs[i].Equal(key.PublicKey()), "participant %d", i)
	}

	other, err := out.round2[5].VerificationShares()
	require.NoError(t, err)
	for i := range vs {
		require.True(t, vs[i].Equal(other[i]))
	}

	gk, err := RecoverGroupKey(g, vs, 3)
	require.NoError(t, err)
	require.True(t, gk.Equal(out.groupKeys[1]))
}

func TestCheckGroupKeys(t *testing.T) {
	g := &bjj.BJJ{}
	a := NewGroupKey(g, g.Generator())
	b := NewGroupKey(g, g.NewPoint().Add(g.Generator(), g.Generator()))

	require.NoError(t, CheckGroupKeys(map[uint32]*GroupKey{1: a, 2: a, 3: a}))

	err := CheckGroupKeys(map[uint32]*GroupKey{1: a, 2: b, 3: a, 4: nil})
	require.ErrorIs(t, err, ErrSelfConsistency)

	var sce *SelfConsistencyError
	require.True(t, errors.As(err, &sce))
	require.Equal(t, uint32(2), sce.Index)
	require.Contains(t, err.Error(), "participant 4")

	// Ties go to the key of the lowest index.
	err = CheckGroupKeys(map[uint32]*GroupKey{1: b, 2: a})
	require.True(t, errors.As(err, &sce))
	require.Equal(t, uint32(2), sce.Index)
}
