package secp256k1

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/f3rmion/fydkg/group"
)

const (
	// ScalarSize is the length of an encoded scalar.
	ScalarSize = 32
	// PointSize is the length of a compressed SEC1 point.
	PointSize = 33
)

var curveOrder = btcec.S256().N

var (
	errScalarLength  = errors.New("secp256k1: invalid scalar length")
	errScalarRange   = errors.New("secp256k1: scalar not reduced")
	errPointLength   = errors.New("secp256k1: invalid point length")
	errPointEncoding = errors.New("secp256k1: non-canonical point encoding")
)

// Scalar is an integer modulo the secp256k1 group order.
type Scalar struct {
	inner btcec.ModNScalar
}

func (s *Scalar) Add(a, b group.Scalar) group.Scalar {
	s.inner.Add2(&a.(*Scalar).inner, &b.(*Scalar).inner)
	return s
}

func (s *Scalar) Sub(a, b group.Scalar) group.Scalar {
	var neg btcec.ModNScalar
	neg.NegateVal(&b.(*Scalar).inner)
	s.inner.Add2(&a.(*Scalar).inner, &neg)
	return s
}

func (s *Scalar) Mul(a, b group.Scalar) group.Scalar {
	s.inner.Mul2(&a.(*Scalar).inner, &b.(*Scalar).inner)
	return s
}

func (s *Scalar) Negate(a group.Scalar) group.Scalar {
	s.inner.NegateVal(&a.(*Scalar).inner)
	return s
}

func (s *Scalar) Invert(a group.Scalar) (group.Scalar, error) {
	if a.IsZero() {
		return nil, errors.New("secp256k1: cannot invert zero scalar")
	}
	s.inner.InverseValNonConst(&a.(*Scalar).inner)
	return s, nil
}

func (s *Scalar) Set(a group.Scalar) group.Scalar {
	s.inner.Set(&a.(*Scalar).inner)
	return s
}

func (s *Scalar) SetUint64(v uint64) group.Scalar {
	return s.SetBytesWide(new(big.Int).SetUint64(v).Bytes())
}

// Bytes returns the 32-byte big-endian encoding.
func (s *Scalar) Bytes() []byte {
	b := s.inner.Bytes()
	return b[:]
}

// SetBytes decodes a 32-byte big-endian scalar below the group order.
func (s *Scalar) SetBytes(data []byte) (group.Scalar, error) {
	if len(data) != ScalarSize {
		return nil, fmt.Errorf("%w: got %d bytes", errScalarLength, len(data))
	}
	var v btcec.ModNScalar
	if overflow := v.SetByteSlice(data); overflow {
		return nil, errScalarRange
	}
	s.inner.Set(&v)
	return s, nil
}

func (s *Scalar) SetBytesWide(data []byte) group.Scalar {
	v := new(big.Int).SetBytes(data)
	v.Mod(v, curveOrder)
	s.inner.SetByteSlice(v.FillBytes(make([]byte, ScalarSize)))
	return s
}

func (s *Scalar) Equal(b group.Scalar) bool {
	return s.inner.Equals(&b.(*Scalar).inner)
}

func (s *Scalar) IsZero() bool {
	return s.inner.IsZero()
}

// Point is a secp256k1 point held in Jacobian coordinates.
type Point struct {
	inner btcec.JacobianPoint
}

// affine returns a normalized copy of p.
func (p *Point) affine() btcec.JacobianPoint {
	var a btcec.JacobianPoint
	a.Set(&p.inner)
	a.ToAffine()
	return a
}

func isInfinity(j *btcec.JacobianPoint) bool {
	return (j.X.IsZero() && j.Y.IsZero()) || j.Z.IsZero()
}

func (p *Point) Add(a, b group.Point) group.Point {
	var r btcec.JacobianPoint
	btcec.AddNonConst(&a.(*Point).inner, &b.(*Point).inner, &r)
	p.inner.Set(&r)
	return p
}

func (p *Point) Sub(a, b group.Point) group.Point {
	var neg Point
	neg.Negate(b)
	return p.Add(a, &neg)
}

func (p *Point) Negate(a group.Point) group.Point {
	r := a.(*Point).affine()
	if !isInfinity(&r) {
		r.Y.Negate(1).Normalize()
	}
	p.inner.Set(&r)
	return p
}

func (p *Point) ScalarMult(s group.Scalar, q group.Point) group.Point {
	var r btcec.JacobianPoint
	in := q.(*Point).affine()
	btcec.ScalarMultNonConst(&s.(*Scalar).inner, &in, &r)
	p.inner.Set(&r)
	return p
}

func (p *Point) Set(a group.Point) group.Point {
	p.inner.Set(&a.(*Point).inner)
	return p
}

// Bytes returns the 33-byte compressed encoding. The identity is encoded
// as 33 zero bytes.
func (p *Point) Bytes() []byte {
	out := make([]byte, PointSize)
	a := p.affine()
	if isInfinity(&a) {
		return out
	}
	out[0] = 0x02
	if a.Y.IsOdd() {
		out[0] = 0x03
	}
	x := a.X.Bytes()
	copy(out[1:], x[:])
	return out
}

func (p *Point) SetBytes(data []byte) (group.Point, error) {
	if len(data) != PointSize {
		return nil, fmt.Errorf("%w: got %d bytes", errPointLength, len(data))
	}
	if bytes.Equal(data, make([]byte, PointSize)) {
		p.inner = btcec.JacobianPoint{}
		return p, nil
	}
	if data[0] != 0x02 && data[0] != 0x03 {
		return nil, errPointEncoding
	}
	pub, err := btcec.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("secp256k1: %w", err)
	}
	var j btcec.JacobianPoint
	pub.AsJacobian(&j)
	p.inner.Set(&j)
	if !bytes.Equal(p.Bytes(), data) {
		return nil, errPointEncoding
	}
	return p, nil
}

func (p *Point) Equal(b group.Point) bool {
	return bytes.Equal(p.Bytes(), b.Bytes())
}

func (p *Point) IsIdentity() bool {
	a := p.affine()
	return isInfinity(&a)
}

// Secp256k1 implements [group.Group] for the secp256k1 curve.
type Secp256k1 struct{}

func (g *Secp256k1) Name() string { return "secp256k1" }

func (g *Secp256k1) NewScalar() group.Scalar { return &Scalar{} }

// NewPoint returns the point at infinity.
func (g *Secp256k1) NewPoint() group.Point { return &Point{} }

func (g *Secp256k1) Generator() group.Point {
	var one btcec.ModNScalar
	one.SetInt(1)
	var p Point
	btcec.ScalarBaseMultNonConst(&one, &p.inner)
	return &p
}

// RandomScalar reads 64 bytes from r and reduces them modulo the order.
func (g *Secp256k1) RandomScalar(r io.Reader) (group.Scalar, error) {
	var buf [64]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	return new(Scalar).SetBytesWide(buf[:]), nil
}

func (g *Secp256k1) Order() []byte { return curveOrder.Bytes() }
