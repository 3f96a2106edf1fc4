package simulation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/f3rmion/fydkg/bjj"
	"github.com/f3rmion/fydkg/dkg"
	"github.com/f3rmion/fydkg/ed25519"
	"github.com/f3rmion/fydkg/group"
	"github.com/f3rmion/fydkg/secp256k1"
	"github.com/f3rmion/fydkg/session"
)

const timeout = 300 * time.Millisecond

func TestHonest(t *testing.T) {
	for _, g := range []group.Group{&bjj.BJJ{}, &ed25519.Ed25519{}, &secp256k1.Secp256k1{}} {
		t.Run(g.Name(), func(t *testing.T) {
			report, err := Run(context.Background(), Config{Group: g, Threshold: 2, Total: 3, Timeout: timeout})
			require.NoError(t, err)
			require.Empty(t, report.Errors)
			require.Equal(t, []uint32{1, 2, 3}, report.Finished())
			require.Empty(t, report.Excluded)
			require.NotNil(t, report.GroupKey)

			shares := []*dkg.SecretKeyShare{report.Results[3].KeyShare, report.Results[1].KeyShare}
			secret, err := dkg.RecoverSecret(g, shares, 2)
			require.NoError(t, err)
			require.True(t, group.Generate(g, secret).Equal(report.GroupKey.Point()))
		})
	}
}

func TestBlake2bHasher(t *testing.T) {
	report, err := Run(context.Background(), Config{
		Group:     &bjj.BJJ{},
		Threshold: 3,
		Total:     4,
		Timeout:   timeout,
		Hasher:    dkg.NewBlake2bHasher(),
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 4)
}

func TestCorruptShare(t *testing.T) {
	report, err := Run(context.Background(), Config{
		Group:     &bjj.BJJ{},
		Threshold: 3,
		Total:     5,
		Timeout:   timeout,
		Faults:    []Fault{CorruptShare(4, 2)},
	})
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2, 3, 5}, report.Finished())
	require.ErrorIs(t, report.Errors[4], dkg.ErrExcluded)
	require.Equal(t, []uint32{4}, report.Excluded)
	for _, res := range report.Results {
		require.Equal(t, []uint32{1, 2, 3, 5}, res.Qualified)
	}
}

func TestCorruptShareInTransit(t *testing.T) {
	for _, total := range []uint32{3, 5} {
		t.Run(fmt.Sprintf("3of%d", total), func(t *testing.T) {
			report, err := Run(context.Background(), Config{
				Group:     &bjj.BJJ{},
				Threshold: 3,
				Total:     total,
				Timeout:   timeout,
				Faults:    []Fault{CorruptShareInTransit(2, 1)},
			})
			require.NoError(t, err)
			require.Empty(t, report.Errors)
			require.Empty(t, report.Excluded)
			require.Len(t, report.Finished(), int(total))
			require.NotNil(t, report.GroupKey)
			for _, res := range report.Results {
				require.Len(t, res.Complaints, 1)
			}
		})
	}
}

func TestCheckQualified(t *testing.T) {
	t.Run("Agreeing", func(t *testing.T) {
		r := &Report{Results: map[uint32]*session.Result{
			1: {Index: 1, Qualified: []uint32{1, 2}},
			2: {Index: 2, Qualified: []uint32{1, 2}},
		}, Errors: map[uint32]error{3: dkg.ErrExcluded}}
		require.NoError(t, r.checkQualified())
	})

	t.Run("Disagreeing", func(t *testing.T) {
		r := &Report{Results: map[uint32]*session.Result{
			1: {Index: 1, Qualified: []uint32{1, 2, 3}},
			2: {Index: 2, Qualified: []uint32{1, 2}},
		}}
		require.ErrorIs(t, r.checkQualified(), ErrInconsistent)
	})

	t.Run("QualifiedFailed", func(t *testing.T) {
		r := &Report{Results: map[uint32]*session.Result{
			1: {Index: 1, Qualified: []uint32{1, 2, 3}},
			2: {Index: 2, Qualified: []uint32{1, 2, 3}},
		}, Errors: map[uint32]error{3: dkg.ErrExcluded}}
		err := r.checkQualified()
		require.ErrorIs(t, err, ErrInconsistent)
		require.ErrorContains(t, err, "participant 3")
	})
}

func TestSilent(t *testing.T) {
	report, err := Run(context.Background(), Config{
		Group:     &ed25519.Ed25519{},
		Threshold: 2,
		Total:     3,
		Timeout:   timeout,
		Faults:    []Fault{Silent(2)},
	})
	require.NoError(t, err)
	require.Equal(t, []uint32{2}, report.Silent)
	require.Equal(t, []uint32{1, 3}, report.Finished())
	require.Equal(t, []uint32{2}, report.Excluded)
}

func TestBadProofAborts(t *testing.T) {
	report, err := Run(context.Background(), Config{
		Group:     &bjj.BJJ{},
		Threshold: 3,
		Total:     3,
		Timeout:   timeout,
		Faults:    []Fault{BadProof(1)},
	})
	require.ErrorIs(t, err, dkg.ErrInsufficientParticipants)
	require.Empty(t, report.Results)
	require.Len(t, report.Errors, 3)
	require.Nil(t, report.GroupKey)
}

func TestInvalidConfig(t *testing.T) {
	_, err := Run(context.Background(), Config{Threshold: 2, Total: 3})
	require.Error(t, err)

	_, err = Run(context.Background(), Config{Group: &bjj.BJJ{}, Threshold: 4, Total: 3})
	require.ErrorIs(t, err, dkg.ErrMalformedInput)

	for _, f := range []Fault{Silent(9), CorruptShare(1, 1), CorruptShare(1, 0), CorruptShareInTransit(2, 4)} {
		_, err = Run(context.Background(), Config{Group: &bjj.BJJ{}, Threshold: 2, Total: 3, Faults: []Fault{f}})
		require.Error(t, err, f.String())
	}
}
