package dkg

import (
	"fmt"
	"sort"

	"github.com/f3rmion/fydkg/group"
)

// Round1State accumulates the peers' commitments and proofs for one
// participant.
type Round1State struct {
	dkg    *DKG
	phase  Phase
	self   *Participant
	coeffs *Coefficients

	peers      map[uint32]*Participant
	exclusions *Exclusions
	consumed   bool
}

// NewRound1 starts round 1 for the owner of coeffs. self must be the
// record produced together with coeffs.
func (d *DKG) NewRound1(self *Participant, coeffs *Coefficients) (*Round1State, error) {
	if self == nil || coeffs == nil {
		return nil, fmt.Errorf("%w: participant and coefficients are required", ErrMalformedInput)
	}
	if coeffs.owner != self.Index {
		return nil, fmt.Errorf("%w: coefficients of %d used by %d", ErrMalformedInput, coeffs.owner, self.Index)
	}
	if uint32(coeffs.Len()) != d.params.Threshold {
		return nil, fmt.Errorf("%w: %d coefficients, want %d", ErrMalformedInput, coeffs.Len(), d.params.Threshold)
	}
	if err := d.VerifyParticipant(self); err != nil {
		return nil, fmt.Errorf("%w: own record: %v", ErrMalformedInput, err)
	}
	for k, c := range coeffs.commit() {
		if !c.Equal(self.Commitments[k]) {
			return nil, fmt.Errorf("%w: commitment %d does not match coefficients", ErrMalformedInput, k)
		}
	}

	return &Round1State{
		dkg:        d,
		phase:      PhaseInit,
		self:       self.clone(d.group),
		coeffs:     coeffs,
		peers:      make(map[uint32]*Participant),
		exclusions: NewExclusions(),
	}, nil
}

func (r *Round1State) Phase() Phase { return r.phase }

// Index returns the owner's index.
func (r *Round1State) Index() uint32 { return r.self.Index }

// Broadcast returns a copy of the owner's record to send to every peer
// and moves to PhaseAwaitingCommitments.
func (r *Round1State) Broadcast() *Participant {
	if r.phase == PhaseInit {
		r.phase = PhaseAwaitingCommitments
	}
	return r.self.clone(r.dkg.group)
}

// Receive stores a peer's record. Records are copied; verification is
// deferred to Verify. Resending an identical record is a no-op.
func (r *Round1State) Receive(p *Participant) error {
	if r.phase != PhaseInit && r.phase != PhaseAwaitingCommitments {
		return phaseError("receive commitments", r.phase, PhaseInit, PhaseAwaitingCommitments)
	}
	if p == nil {
		return fmt.Errorf("%w: nil participant", ErrMalformedInput)
	}
	if p.Index == r.self.Index || !r.dkg.params.validIndex(p.Index) {
		return peerError(p.Index, ErrUnexpectedSender)
	}
	if r.exclusions.Contains(p.Index) {
		return peerError(p.Index, ErrDuplicateMessage)
	}
	if prev, ok := r.peers[p.Index]; ok {
		if prev.equal(p) {
			return nil
		}
		return peerError(p.Index, ErrDuplicateMessage)
	}
	r.peers[p.Index] = p.clone(r.dkg.group)
	return nil
}

// Reject excludes index for a round 1 message that could not be decoded.
// Later records from index are refused.
func (r *Round1State) Reject(index uint32, cause error) error {
	if r.phase != PhaseInit && r.phase != PhaseAwaitingCommitments {
		return phaseError("reject commitments", r.phase, PhaseInit, PhaseAwaitingCommitments)
	}
	if index == r.self.Index || !r.dkg.params.validIndex(index) {
		return peerError(index, ErrUnexpectedSender)
	}
	if r.Has(index) {
		return peerError(index, ErrDuplicateMessage)
	}
	r.exclusions.Add(&Fault{
		Index: index,
		Kind:  FaultInvalidCommitments,
		Err:   fmt.Errorf("%w: %v", ErrMalformedInput, cause),
	})
	return nil
}

// Has reports whether a record from index has been received.
func (r *Round1State) Has(index uint32) bool {
	_, ok := r.peers[index]
	return ok
}

// Verify checks every expected peer. Peers that never delivered are
// excluded with [ErrTimeout]; peers with a malformed record or an invalid
// proof are excluded with the verification error. Verify fails with an
// [*InsufficientParticipantsError] when fewer than t participants remain.
func (r *Round1State) Verify() error {
	if r.phase != PhaseAwaitingCommitments {
		return phaseError("verify commitments", r.phase, PhaseAwaitingCommitments)
	}
	for j := uint32(1); j <= r.dkg.params.Total; j++ {
		if j == r.self.Index {
			continue
		}
		p, ok := r.peers[j]
		if !ok {
			r.exclusions.Add(&Fault{Index: j, Kind: FaultMissingCommitments, Err: ErrTimeout})
			continue
		}
		if err := r.dkg.VerifyParticipant(p); err != nil {
			r.exclusions.Add(&Fault{Index: j, Kind: faultKindFor(err), Err: err})
		}
	}
	for _, j := range r.exclusions.Indices() {
		delete(r.peers, j)
	}

	if qualified := len(r.peers) + 1; qualified < int(r.dkg.params.Threshold) {
		return &InsufficientParticipantsError{
			Qualified: qualified,
			Threshold: int(r.dkg.params.Threshold),
			Excluded:  r.exclusions.Indices(),
		}
	}
	r.phase = PhaseCommitmentsVerified
	return nil
}

// Faults returns the exclusions recorded so far.
func (r *Round1State) Faults() []*Fault { return r.exclusions.Faults() }

// Excluded returns the excluded indices in ascending order.
func (r *Round1State) Excluded() []uint32 { return r.exclusions.Indices() }

// Qualified returns the owner and every non-excluded peer in ascending
// order. Before Verify it lists the peers received so far.
func (r *Round1State) Qualified() []uint32 {
	out := []uint32{r.self.Index}
	for j := range r.peers {
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Commitments returns a copy of the commitments of index, or nil.
func (r *Round1State) Commitments(index uint32) []group.Point {
	if index == r.self.Index {
		return copyPoints(r.dkg.group, r.self.Commitments)
	}
	p, ok := r.peers[index]
	if !ok {
		return nil
	}
	return copyPoints(r.dkg.group, p.Commitments)
}

// ToRound2 evaluates the polynomial at every qualified peer, wipes the
// coefficients and returns the round 2 state together with the shares to
// deliver. It may be called once, after Verify succeeded.
func (r *Round1State) ToRound2() (*Round2State, *SecretShareSet, error) {
	if r.phase != PhaseCommitmentsVerified {
		return nil, nil, phaseError("start round 2", r.phase, PhaseCommitmentsVerified)
	}
	if r.consumed || r.coeffs.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: round 1 state already consumed", ErrInvalidPhase)
	}
	g := r.dkg.group
	i := r.self.Index

	set := &SecretShareSet{sender: i, shares: make(map[uint32]*SecretShare)}
	outgoing := make(map[uint32]group.Scalar)
	commitments := map[uint32][]group.Point{i: copyPoints(g, r.self.Commitments)}
	for j, p := range r.peers {
		v := r.coeffs.evaluate(r.dkg.scalarFromIndex(j))
		set.shares[j] = &SecretShare{Sender: i, Receiver: j, Value: v}
		outgoing[j] = g.NewScalar().Set(v)
		commitments[j] = copyPoints(g, p.Commitments)
	}
	selfShare := r.coeffs.evaluate(r.dkg.scalarFromIndex(i))
	r.coeffs.Zeroize()
	r.consumed = true

	return &Round2State{
		dkg:         r.dkg,
		phase:       PhaseAwaitingShares,
		index:       i,
		commitments: commitments,
		exclusions:  r.exclusions.clone(),
		selfShare:   selfShare,
		outgoing:    outgoing,
		received:    make(map[uint32]group.Scalar),
		complaints:  make(map[uint32]*Complaint),
	}, set, nil
}
