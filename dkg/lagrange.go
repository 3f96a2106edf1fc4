package dkg

import (
	"fmt"

	"github.com/f3rmion/fydkg/group"
)

// lagrangeCoefficient returns lambda_i = prod_{j != i} j / (j - i), the
// weight of index i when interpolating at zero over indices.
func lagrangeCoefficient(g group.Group, i uint32, indices []uint32) (group.Scalar, error) {
	id := group.ScalarFromIndex(g, i)
	num := g.NewScalar().SetUint64(1)
	den := g.NewScalar().SetUint64(1)

	for _, j := range indices {
		if j == i {
			continue
		}
		other := group.ScalarFromIndex(g, j)
		// num *= j
		num = g.NewScalar().Mul(num, other)
		// den *= (j - i)
		diff := g.NewScalar().Sub(other, id)
		den = g.NewScalar().Mul(den, diff)
	}

	denInv, err := g.NewScalar().Invert(den)
	if err != nil {
		return nil, fmt.Errorf("%w: repeated index %d", ErrMalformedInput, i)
	}
	return g.NewScalar().Mul(num, denInv), nil
}

// RecoverSecret interpolates the group secret from the first threshold
// shares. Indices must be distinct.
func RecoverSecret(g group.Group, shares []*SecretKeyShare, threshold uint32) (group.Scalar, error) {
	if threshold == 0 || uint32(len(shares)) < threshold {
		return nil, fmt.Errorf("%w: %d shares, need %d", ErrMalformedInput, len(shares), threshold)
	}
	shares = shares[:threshold]

	indices := make([]uint32, len(shares))
	seen := make(map[uint32]bool, len(shares))
	for k, s := range shares {
		if s == nil || s.index == 0 || seen[s.index] {
			return nil, fmt.Errorf("%w: invalid or repeated share index", ErrMalformedInput)
		}
		seen[s.index] = true
		indices[k] = s.index
	}

	secret := g.NewScalar()
	for _, s := range shares {
		lambda, err := lagrangeCoefficient(g, s.index, indices)
		if err != nil {
			return nil, err
		}
		term := g.NewScalar().Mul(lambda, s.value)
		secret = g.NewScalar().Add(secret, term)
	}
	return secret, nil
}

// RecoverGroupKey interpolates lambda_j * Y_j over the first threshold
// verification shares. With honest shares the result equals the group key.
func RecoverGroupKey(g group.Group, shares map[uint32]group.Point, threshold uint32) (*GroupKey, error) {
	if threshold == 0 || uint32(len(shares)) < threshold {
		return nil, fmt.Errorf("%w: %d verification shares, need %d", ErrMalformedInput, len(shares), threshold)
	}
	indices := make([]uint32, 0, len(shares))
	for j := range shares {
		indices = append(indices, j)
	}
	sortIndices(indices)
	indices = indices[:threshold]

	sum := g.NewPoint()
	for _, j := range indices {
		lambda, err := lagrangeCoefficient(g, j, indices)
		if err != nil {
			return nil, err
		}
		sum = g.NewPoint().Add(sum, g.NewPoint().ScalarMult(lambda, shares[j]))
	}
	return &GroupKey{point: sum}, nil
}
