package ed25519

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/kyber/v4/share"

	"github.com/f3rmion/fydkg/group/grouptest"
)

func TestConformance(t *testing.T) {
	grouptest.Run(t, &Ed25519{})
}

func TestScalarLittleEndian(t *testing.T) {
	g := &Ed25519{}
	b := g.NewScalar().SetUint64(258).Bytes()
	require.Len(t, b, ScalarSize)
	require.Equal(t, byte(2), b[0])
	require.Equal(t, byte(1), b[1])
}

func TestIdentityEncoding(t *testing.T) {
	g := &Ed25519{}
	enc := g.NewPoint().Bytes()
	want := make([]byte, PointSize)
	want[0] = 1
	require.Equal(t, want, enc)
}

// Shares built from our scalars must interpolate with kyber's own
// share package.
func TestKyberInterop(t *testing.T) {
	g := &Ed25519{}
	secret, err := g.RandomScalar(rand.Reader)
	require.NoError(t, err)

	poly := share.NewPriPoly(g.Suite(), 3, secret.(*Scalar).Kyber(), suite.RandomStream())
	shares := poly.Shares(5)

	recovered, err := share.RecoverSecret(g.Suite(), shares[1:4], 3, 5)
	require.NoError(t, err)
	require.True(t, recovered.Equal(secret.(*Scalar).Kyber()))
}
