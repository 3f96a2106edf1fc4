package ed25519

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/group/edwards25519"

	"github.com/f3rmion/fydkg/group"
)

const (
	// ScalarSize is the length of an encoded scalar.
	ScalarSize = 32
	// PointSize is the length of an encoded point.
	PointSize = 32
)

var suite = edwards25519.NewBlakeSHA256Ed25519()

// order is l = 2^252 + 27742317777372353535851937790883648493.
var order, _ = new(big.Int).SetString(
	"1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3ed", 16)

var (
	errScalarLength  = errors.New("ed25519: invalid scalar length")
	errScalarRange   = errors.New("ed25519: scalar not reduced")
	errPointLength   = errors.New("ed25519: invalid point length")
	errPointSubgroup = errors.New("ed25519: point has a small-order component")
	errPointEncoding = errors.New("ed25519: non-canonical point encoding")
)

// reverse returns a reversed copy of b.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}

// Scalar is an integer modulo l backed by a kyber scalar.
type Scalar struct {
	inner kyber.Scalar
}

func newScalar() *Scalar {
	return &Scalar{inner: suite.Scalar().Zero()}
}

// Kyber returns the underlying kyber scalar.
func (s *Scalar) Kyber() kyber.Scalar { return s.inner }

func (s *Scalar) Add(a, b group.Scalar) group.Scalar {
	s.inner.Add(a.(*Scalar).inner, b.(*Scalar).inner)
	return s
}

func (s *Scalar) Sub(a, b group.Scalar) group.Scalar {
	s.inner.Sub(a.(*Scalar).inner, b.(*Scalar).inner)
	return s
}

func (s *Scalar) Mul(a, b group.Scalar) group.Scalar {
	s.inner.Mul(a.(*Scalar).inner, b.(*Scalar).inner)
	return s
}

func (s *Scalar) Negate(a group.Scalar) group.Scalar {
	s.inner.Neg(a.(*Scalar).inner)
	return s
}

// Invert sets s to a^(-1). Zero has no inverse.
func (s *Scalar) Invert(a group.Scalar) (group.Scalar, error) {
	if a.IsZero() {
		return nil, errors.New("ed25519: cannot invert zero scalar")
	}
	s.inner.Inv(a.(*Scalar).inner)
	return s, nil
}

func (s *Scalar) Set(a group.Scalar) group.Scalar {
	s.inner.Set(a.(*Scalar).inner)
	return s
}

func (s *Scalar) SetUint64(v uint64) group.Scalar {
	return s.SetBytesWide(new(big.Int).SetUint64(v).Bytes())
}

// Bytes returns the 32-byte little-endian encoding used by Ed25519.
func (s *Scalar) Bytes() []byte {
	b, err := s.inner.MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("ed25519: marshal scalar: %v", err))
	}
	return b
}

// SetBytes decodes a 32-byte little-endian scalar that is already
// reduced modulo l.
func (s *Scalar) SetBytes(data []byte) (group.Scalar, error) {
	if len(data) != ScalarSize {
		return nil, fmt.Errorf("%w: got %d bytes", errScalarLength, len(data))
	}
	if new(big.Int).SetBytes(reverse(data)).Cmp(order) >= 0 {
		return nil, errScalarRange
	}
	s.inner.SetBytes(data)
	return s, nil
}

// SetBytesWide reduces the big-endian integer data modulo l.
func (s *Scalar) SetBytesWide(data []byte) group.Scalar {
	s.inner.SetBytes(reverse(data))
	return s
}

func (s *Scalar) Equal(b group.Scalar) bool {
	return s.inner.Equal(b.(*Scalar).inner)
}

func (s *Scalar) IsZero() bool {
	return s.inner.Equal(suite.Scalar().Zero())
}

// Point is an element of the prime-order subgroup of edwards25519.
type Point struct {
	inner kyber.Point
}

// Kyber returns the underlying kyber point.
func (p *Point) Kyber() kyber.Point { return p.inner }

func (p *Point) Add(a, b group.Point) group.Point {
	p.inner.Add(a.(*Point).inner, b.(*Point).inner)
	return p
}

func (p *Point) Sub(a, b group.Point) group.Point {
	p.inner.Sub(a.(*Point).inner, b.(*Point).inner)
	return p
}

func (p *Point) Negate(a group.Point) group.Point {
	p.inner.Neg(a.(*Point).inner)
	return p
}

func (p *Point) ScalarMult(s group.Scalar, q group.Point) group.Point {
	p.inner.Mul(s.(*Scalar).inner, q.(*Point).inner)
	return p
}

func (p *Point) Set(a group.Point) group.Point {
	p.inner.Set(a.(*Point).inner)
	return p
}

func (p *Point) Bytes() []byte {
	b, err := p.inner.MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("ed25519: marshal point: %v", err))
	}
	return b
}

// SetBytes decodes a 32-byte point. Points with a torsion component and
// encodings with an unreduced y coordinate are rejected.
func (p *Point) SetBytes(data []byte) (group.Point, error) {
	if len(data) != PointSize {
		return nil, fmt.Errorf("%w: got %d bytes", errPointLength, len(data))
	}
	q := suite.Point()
	if err := q.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("ed25519: %w", err)
	}
	// (l-1)*Q == -Q only when Q has no small-order component.
	minusOne := suite.Scalar().Neg(suite.Scalar().One())
	if !suite.Point().Mul(minusOne, q).Equal(suite.Point().Neg(q)) {
		return nil, errPointSubgroup
	}
	enc, err := q.MarshalBinary()
	if err != nil || !bytes.Equal(enc, data) {
		return nil, errPointEncoding
	}
	p.inner.Set(q)
	return p, nil
}

func (p *Point) Equal(b group.Point) bool {
	return p.inner.Equal(b.(*Point).inner)
}

func (p *Point) IsIdentity() bool {
	return p.inner.Equal(suite.Point().Null())
}

// Ed25519 implements [group.Group] for the prime-order subgroup of
// edwards25519 using kyber.
type Ed25519 struct{}

func (g *Ed25519) Name() string { return "ed25519" }

func (g *Ed25519) NewScalar() group.Scalar { return newScalar() }

func (g *Ed25519) NewPoint() group.Point {
	return &Point{inner: suite.Point().Null()}
}

func (g *Ed25519) Generator() group.Point {
	return &Point{inner: suite.Point().Base()}
}

// RandomScalar reads 64 bytes from r and reduces them modulo l.
func (g *Ed25519) RandomScalar(r io.Reader) (group.Scalar, error) {
	var buf [64]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	return newScalar().SetBytesWide(buf[:]), nil
}

func (g *Ed25519) Order() []byte { return order.Bytes() }

// Suite returns the kyber group the backend is built on.
func (g *Ed25519) Suite() kyber.Group { return suite }
