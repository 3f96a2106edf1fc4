package dkg

import (
	"fmt"

	"github.com/f3rmion/fydkg/group"
)

// MaxParticipants is the largest supported n.
const MaxParticipants = 65535

// Parameters holds the threshold t and the participant count n.
type Parameters struct {
	Threshold uint32
	Total     uint32
}

// Validate enforces 1 <= t <= n <= MaxParticipants.
func (p Parameters) Validate() error {
	switch {
	case p.Threshold == 0:
		return fmt.Errorf("%w: threshold must be at least 1", ErrMalformedInput)
	case p.Total < p.Threshold:
		return fmt.Errorf("%w: threshold %d exceeds total %d", ErrMalformedInput, p.Threshold, p.Total)
	case p.Total > MaxParticipants:
		return fmt.Errorf("%w: total %d exceeds %d", ErrMalformedInput, p.Total, MaxParticipants)
	}
	return nil
}

// validIndex reports whether i names a participant.
func (p Parameters) validIndex(i uint32) bool {
	return i >= 1 && i <= p.Total
}

// DKG holds the group, hasher and parameters shared by every participant
// of a run.
type DKG struct {
	group  group.Group
	hasher Hasher
	params Parameters
}

// New creates a DKG instance using [SHA256Hasher] for proofs of knowledge.
// threshold is the number of shares needed to reconstruct (t).
// total is the number of participants (n).
func New(g group.Group, threshold, total uint32) (*DKG, error) {
	return NewWithHasher(g, &SHA256Hasher{}, threshold, total)
}

// NewWithHasher creates a DKG instance with a custom hasher.
// Every participant of a run must use the same hasher.
func NewWithHasher(g group.Group, h Hasher, threshold, total uint32) (*DKG, error) {
	if g == nil || h == nil {
		return nil, fmt.Errorf("%w: group and hasher are required", ErrMalformedInput)
	}
	params := Parameters{Threshold: threshold, Total: total}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &DKG{group: g, hasher: h, params: params}, nil
}

// Group returns the group the run is defined over.
func (d *DKG) Group() group.Group { return d.group }

// Parameters returns t and n.
func (d *DKG) Parameters() Parameters { return d.params }

// Hasher returns the proof of knowledge hasher.
func (d *DKG) Hasher() Hasher { return d.hasher }

func (d *DKG) scalarFromIndex(i uint32) group.Scalar {
	return group.ScalarFromIndex(d.group, i)
}
