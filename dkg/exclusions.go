package dkg

import (
	"errors"
	"fmt"
	"sort"
)

// FaultKind classifies why a participant was excluded.
type FaultKind uint8

const (
	FaultInvalidCommitments FaultKind = iota + 1
	FaultInvalidProof
	FaultMissingCommitments
	FaultInvalidShare
	FaultMissingShare
)

func (k FaultKind) String() string {
	switch k {
	case FaultInvalidCommitments:
		return "invalid commitments"
	case FaultInvalidProof:
		return "invalid proof of knowledge"
	case FaultMissingCommitments:
		return "missing commitments"
	case FaultInvalidShare:
		return "invalid share"
	case FaultMissingShare:
		return "missing share"
	default:
		return fmt.Sprintf("FaultKind(%d)", uint8(k))
	}
}

// Valid reports whether k is a known kind.
func (k FaultKind) Valid() bool {
	return k >= FaultInvalidCommitments && k <= FaultMissingShare
}

// faultKindFor maps a round 1 verification error to a kind.
func faultKindFor(err error) FaultKind {
	if errors.Is(err, ErrProofOfKnowledge) {
		return FaultInvalidProof
	}
	return FaultInvalidCommitments
}

// Fault records the exclusion of one participant.
type Fault struct {
	Index uint32
	Kind  FaultKind
	Err   error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("participant %d excluded (%s): %v", f.Index, f.Kind, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Exclusions is the set of excluded participants accumulated over both
// rounds. The first fault recorded for an index is kept.
type Exclusions struct {
	faults map[uint32]*Fault
}

// NewExclusions returns an empty set.
func NewExclusions() *Exclusions {
	return &Exclusions{faults: make(map[uint32]*Fault)}
}

// Add records f and reports whether the index was newly excluded.
func (e *Exclusions) Add(f *Fault) bool {
	if _, ok := e.faults[f.Index]; ok {
		return false
	}
	e.faults[f.Index] = f
	return true
}

// Contains reports whether index is excluded.
func (e *Exclusions) Contains(index uint32) bool {
	_, ok := e.faults[index]
	return ok
}

// Fault returns the fault recorded for index, or nil.
func (e *Exclusions) Fault(index uint32) *Fault {
	return e.faults[index]
}

func (e *Exclusions) Len() int { return len(e.faults) }

// Indices returns the excluded indices in ascending order.
func (e *Exclusions) Indices() []uint32 {
	out := make([]uint32, 0, len(e.faults))
	for i := range e.faults {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Faults returns the recorded faults ordered by index.
func (e *Exclusions) Faults() []*Fault {
	idx := e.Indices()
	out := make([]*Fault, len(idx))
	for i, j := range idx {
		out[i] = e.faults[j]
	}
	return out
}

func (e *Exclusions) clone() *Exclusions {
	c := NewExclusions()
	for i, f := range e.faults {
		c.faults[i] = f
	}
	return c
}
