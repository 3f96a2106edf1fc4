package dkg

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/kyber/v4/share"

	"github.com/f3rmion/fydkg/ed25519"
	"github.com/f3rmion/fydkg/group"
)

// Key shares from an edwards25519 run interpolate with kyber's share
// package, which indexes shares from zero.
func TestKyberRecoverSecret(t *testing.T) {
	g := &ed25519.Ed25519{}
	out := runProtocol(t, g, 3, 5, tamper{})
	require.Empty(t, out.errs)

	var shares []*share.PriShare
	for _, i := range []uint32{5, 2, 4} {
		s := out.keys[i].Scalar().(*ed25519.Scalar)
		shares = append(shares, &share.PriShare{I: i - 1, V: s.Kyber()})
	}
	secret, err := share.RecoverSecret(g.Suite(), shares, 3, 5)
	require.NoError(t, err)

	pub := g.Suite().Point().Mul(secret, nil)
	gk := out.groupKeys[1].Point().(*ed25519.Point)
	require.True(t, pub.Equal(gk.Kyber()))

	ours, err := RecoverSecret(g, []*SecretKeyShare{out.keys[5], out.keys[2], out.keys[4]}, 3)
	require.NoError(t, err)
	require.True(t, ours.(*ed25519.Scalar).Kyber().Equal(secret))
	require.True(t, group.Generate(g, ours).Equal(gk))
}
