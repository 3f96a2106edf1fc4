package secp256k1

import (
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"github.com/f3rmion/fydkg/group/grouptest"
)

func TestConformance(t *testing.T) {
	grouptest.Run(t, &Secp256k1{})
}

func TestPointMatchesBtcec(t *testing.T) {
	g := &Secp256k1{}
	s, err := g.RandomScalar(rand.Reader)
	require.NoError(t, err)

	P := g.NewPoint().ScalarMult(s, g.Generator())

	priv, _ := btcec.PrivKeyFromBytes(s.Bytes())
	require.Equal(t, priv.PubKey().SerializeCompressed(), P.Bytes())
}

func TestGeneratorEncoding(t *testing.T) {
	g := &Secp256k1{}
	enc := g.Generator().Bytes()
	require.Len(t, enc, PointSize)
	require.Equal(t, byte(0x02), enc[0])
}

func TestSetBytesRejects(t *testing.T) {
	g := &Secp256k1{}

	bad := g.Generator().Bytes()
	bad[0] = 0x04
	_, err := g.NewPoint().SetBytes(bad)
	require.Error(t, err)

	_, err = g.NewPoint().SetBytes(make([]byte, 32))
	require.Error(t, err)
}
