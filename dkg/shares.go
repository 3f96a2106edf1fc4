package dkg

import (
	"fmt"
	"sort"

	"github.com/f3rmion/fydkg/group"
)

// SecretShare is f_sender(receiver). It must be delivered confidentially
// to the receiver only.
type SecretShare struct {
	Sender   uint32
	Receiver uint32
	Value    group.Scalar
}

// String never includes the value.
func (s *SecretShare) String() string {
	return fmt.Sprintf("SecretShare{sender: %d, receiver: %d}", s.Sender, s.Receiver)
}

// SecretShareSet holds the outgoing shares of one sender keyed by receiver.
type SecretShareSet struct {
	sender uint32
	shares map[uint32]*SecretShare
}

// Sender returns the index of the participant that generated the set.
func (s *SecretShareSet) Sender() uint32 { return s.sender }

// For returns the share destined to receiver, or nil.
func (s *SecretShareSet) For(receiver uint32) *SecretShare {
	return s.shares[receiver]
}

// Receivers returns the receiver indices in ascending order.
func (s *SecretShareSet) Receivers() []uint32 {
	out := make([]uint32, 0, len(s.shares))
	for j := range s.shares {
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

func (s *SecretShareSet) Len() int { return len(s.shares) }

// Zeroize wipes every share value.
func (s *SecretShareSet) Zeroize() {
	for j, sh := range s.shares {
		if sh.Value != nil {
			sh.Value.SetUint64(0)
		}
		delete(s.shares, j)
	}
}

// Complaint accuses a sender of an invalid or missing share.
type Complaint struct {
	Accuser uint32
	Accused uint32
	Reason  FaultKind
}

func (c *Complaint) String() string {
	return fmt.Sprintf("Complaint{accuser: %d, accused: %d, reason: %s}", c.Accuser, c.Accused, c.Reason)
}

// Justification is the accused's public answer to a complaint: the share
// it sent to the accuser.
type Justification struct {
	Accused uint32
	Accuser uint32
	Value   group.Scalar
}

// SecretKeyShare is a participant's long-term share of the group secret.
type SecretKeyShare struct {
	noCopy noCopy

	group group.Group
	index uint32
	value group.Scalar
}

// NewSecretKeyShare restores a share from its encoding.
func NewSecretKeyShare(g group.Group, index uint32, data []byte) (*SecretKeyShare, error) {
	if index == 0 {
		return nil, fmt.Errorf("%w: index 0", ErrMalformedInput)
	}
	v, err := g.NewScalar().SetBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return &SecretKeyShare{group: g, index: index, value: v}, nil
}

func (s *SecretKeyShare) Index() uint32 { return s.index }

// Bytes returns the encoding of the share value.
func (s *SecretKeyShare) Bytes() []byte { return s.value.Bytes() }

// Scalar returns a copy of the share value.
func (s *SecretKeyShare) Scalar() group.Scalar {
	return s.group.NewScalar().Set(s.value)
}

// PublicKey returns the verification share value*G.
func (s *SecretKeyShare) PublicKey() group.Point {
	return group.Generate(s.group, s.value)
}

// Equal reports whether both shares have the same index and value.
func (s *SecretKeyShare) Equal(o *SecretKeyShare) bool {
	return s.index == o.index && s.value.Equal(o.value)
}

// Zeroize overwrites the share value.
func (s *SecretKeyShare) Zeroize() {
	s.value.Set(s.group.NewScalar())
}

func (s *SecretKeyShare) String() string {
	return fmt.Sprintf("SecretKeyShare{index: %d}", s.index)
}

// GroupKey is the public key of the group.
type GroupKey struct {
	point group.Point
}

// NewGroupKey wraps a copy of p.
func NewGroupKey(g group.Group, p group.Point) *GroupKey {
	return &GroupKey{point: g.NewPoint().Set(p)}
}

// Point returns the group element. Callers must not modify it.
func (k *GroupKey) Point() group.Point { return k.point }

func (k *GroupKey) Bytes() []byte { return k.point.Bytes() }

func (k *GroupKey) Equal(o *GroupKey) bool {
	return o != nil && k.point.Equal(o.point)
}

func (k *GroupKey) String() string {
	return fmt.Sprintf("%x", k.Bytes())
}
