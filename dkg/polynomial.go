package dkg

import (
	"io"

	"github.com/f3rmion/fydkg/group"
)

// noCopy may be embedded in structs that must not be copied after first
// use. go vet's copylocks check reports copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Coefficients is the secret polynomial a_0 + a_1 x + ... + a_{t-1} x^{t-1}
// of one participant. It never leaves its owner; only evaluations and
// commitments are shared.
type Coefficients struct {
	noCopy noCopy

	group  group.Group
	owner  uint32
	values []group.Scalar
}

func newCoefficients(g group.Group, r io.Reader, owner, t uint32) (*Coefficients, error) {
	values := make([]group.Scalar, t)
	for k := range values {
		c, err := g.RandomScalar(r)
		if err != nil {
			return nil, err
		}
		values[k] = c
	}
	return &Coefficients{group: g, owner: owner, values: values}, nil
}

// Owner returns the index of the participant the polynomial belongs to.
func (c *Coefficients) Owner() uint32 { return c.owner }

// Len returns the number of coefficients, or zero once wiped.
func (c *Coefficients) Len() int { return len(c.values) }

// evaluate computes f(x) with Horner's rule.
func (c *Coefficients) evaluate(x group.Scalar) group.Scalar {
	result := c.group.NewScalar().Set(c.values[len(c.values)-1])
	for k := len(c.values) - 2; k >= 0; k-- {
		result = c.group.NewScalar().Mul(result, x)
		result = c.group.NewScalar().Add(result, c.values[k])
	}
	return result
}

// commit returns C_k = a_k * G for every coefficient.
func (c *Coefficients) commit() []group.Point {
	commits := make([]group.Point, len(c.values))
	for k, a := range c.values {
		commits[k] = group.Generate(c.group, a)
	}
	return commits
}

// Zeroize overwrites every coefficient with zero and drops them.
func (c *Coefficients) Zeroize() {
	zero := c.group.NewScalar()
	for _, v := range c.values {
		v.Set(zero)
	}
	c.values = nil
}

// evalCommitments computes sum_k C_k * x^k with Horner's rule, the public
// image of f(x).
func evalCommitments(g group.Group, commits []group.Point, x group.Scalar) group.Point {
	result := g.NewPoint().Set(commits[len(commits)-1])
	for k := len(commits) - 2; k >= 0; k-- {
		result = g.NewPoint().ScalarMult(x, result)
		result = g.NewPoint().Add(result, commits[k])
	}
	return result
}

func copyPoints(g group.Group, pts []group.Point) []group.Point {
	out := make([]group.Point, len(pts))
	for i, p := range pts {
		out[i] = g.NewPoint().Set(p)
	}
	return out
}
