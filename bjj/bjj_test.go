package bjj

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/f3rmion/fydkg/group/grouptest"
)

func TestConformance(t *testing.T) {
	grouptest.Run(t, &BJJ{})
}

func TestScalarBigEndian(t *testing.T) {
	g := &BJJ{}
	b := g.NewScalar().SetUint64(258).Bytes()
	if len(b) != ScalarSize {
		t.Fatalf("len = %d", len(b))
	}
	if b[30] != 1 || b[31] != 2 {
		t.Errorf("unexpected encoding %x", b)
	}
}

func TestPointSetBytes(t *testing.T) {
	g := &BJJ{}

	t.Run("RejectsShort", func(t *testing.T) {
		if _, err := g.NewPoint().SetBytes(make([]byte, 31)); err == nil {
			t.Error("expected error for short encoding")
		}
	})

	t.Run("GeneratorRoundtrip", func(t *testing.T) {
		enc := g.Generator().Bytes()
		p, err := g.NewPoint().SetBytes(enc)
		if err != nil {
			t.Fatal(err)
		}
		if !p.Equal(g.Generator()) {
			t.Error("generator roundtrip failed")
		}
	})

	t.Run("ScalarMultRoundtrip", func(t *testing.T) {
		s, err := g.RandomScalar(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		P := g.NewPoint().ScalarMult(s, g.Generator())
		restored, err := g.NewPoint().SetBytes(P.Bytes())
		if err != nil {
			t.Fatal(err)
		}
		if !restored.Equal(P) {
			t.Error("point roundtrip failed")
		}
	})
}

func TestRandomScalarShortReader(t *testing.T) {
	g := &BJJ{}
	if _, err := g.RandomScalar(bytes.NewReader(make([]byte, 10))); err == nil {
		t.Error("expected error from short reader")
	}
}
