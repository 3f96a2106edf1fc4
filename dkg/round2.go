package dkg

import (
	"fmt"
	"sort"

	"github.com/f3rmion/fydkg/group"
)

// Round2State verifies incoming shares, resolves complaints and derives
// the key material of one participant.
type Round2State struct {
	dkg   *DKG
	phase Phase
	index uint32

	// commitments of every qualified participant, self included
	commitments map[uint32][]group.Point
	exclusions  *Exclusions

	selfShare group.Scalar
	outgoing  map[uint32]group.Scalar // f_i(j), revealed only in justifications
	received  map[uint32]group.Scalar // verified f_s(i)
	// complaints raised by this participant keyed by accused
	complaints map[uint32]*Complaint

	final *finalized
}

type finalized struct {
	ownPublicKey group.Point
	secret       group.Scalar
	groupKey     group.Point
}

func (r *Round2State) Phase() Phase { return r.phase }

func (r *Round2State) Index() uint32 { return r.index }

// verifyShare checks value*G == sum_k C_k * index^k.
func (r *Round2State) verifyShare(commits []group.Point, value group.Scalar) bool {
	g := r.dkg.group
	expected := evalCommitments(g, commits, r.dkg.scalarFromIndex(r.index))
	return group.Generate(g, value).Equal(expected)
}

// Expects reports whether a share from sender is still outstanding.
func (r *Round2State) Expects(sender uint32) bool {
	if sender == r.index {
		return false
	}
	if _, ok := r.commitments[sender]; !ok {
		return false
	}
	_, got := r.received[sender]
	_, complained := r.complaints[sender]
	return !got && !complained
}

// Receive verifies and stores one incoming share. An invalid share is
// rejected with a [*PeerError] wrapping [ErrShareVerification] and
// recorded as a complaint; shares already verified are unaffected.
func (r *Round2State) Receive(share *SecretShare) error {
	if r.phase != PhaseAwaitingShares {
		return phaseError("receive share", r.phase, PhaseAwaitingShares)
	}
	if share == nil || share.Value == nil {
		return fmt.Errorf("%w: empty share", ErrMalformedInput)
	}
	if share.Receiver != r.index {
		return peerError(share.Sender, fmt.Errorf("%w: for %d", ErrMisrouted, share.Receiver))
	}
	commits, ok := r.commitments[share.Sender]
	if !ok || share.Sender == r.index {
		return peerError(share.Sender, ErrUnexpectedSender)
	}
	if prev, ok := r.received[share.Sender]; ok {
		if prev.Equal(share.Value) {
			return nil
		}
		return peerError(share.Sender, ErrDuplicateMessage)
	}
	if _, ok := r.complaints[share.Sender]; ok {
		return peerError(share.Sender, ErrDuplicateMessage)
	}

	if !r.verifyShare(commits, share.Value) {
		r.complaints[share.Sender] = &Complaint{
			Accuser: r.index,
			Accused: share.Sender,
			Reason:  FaultInvalidShare,
		}
		return peerError(share.Sender, ErrShareVerification)
	}
	r.received[share.Sender] = r.dkg.group.NewScalar().Set(share.Value)
	return nil
}

// Reject records a complaint with reason [FaultInvalidShare] against a
// sender whose share message could not be decoded.
func (r *Round2State) Reject(sender uint32) error {
	if r.phase != PhaseAwaitingShares {
		return phaseError("reject share", r.phase, PhaseAwaitingShares)
	}
	if _, ok := r.commitments[sender]; !ok || sender == r.index {
		return peerError(sender, ErrUnexpectedSender)
	}
	if !r.Expects(sender) {
		return peerError(sender, ErrDuplicateMessage)
	}
	r.complaints[sender] = &Complaint{Accuser: r.index, Accused: sender, Reason: FaultInvalidShare}
	return nil
}

// CloseShares ends share collection. Every qualified peer whose share
// never arrived gets a complaint with reason [FaultMissingShare]. It
// returns all complaints raised by this participant, ordered by accused,
// for broadcast.
func (r *Round2State) CloseShares() ([]*Complaint, error) {
	if r.phase != PhaseAwaitingShares {
		return nil, phaseError("close shares", r.phase, PhaseAwaitingShares)
	}
	for s := range r.commitments {
		if r.Expects(s) {
			r.complaints[s] = &Complaint{Accuser: r.index, Accused: s, Reason: FaultMissingShare}
		}
	}
	r.phase = PhaseResolvingComplaints
	return r.Complaints(), nil
}

// Complaints returns copies of the complaints raised by this participant.
func (r *Round2State) Complaints() []*Complaint {
	out := make([]*Complaint, 0, len(r.complaints))
	for _, c := range r.complaints {
		cc := *c
		out = append(out, &cc)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Accused < out[b].Accused })
	return out
}

// Justify answers every complaint against this participant by revealing
// the share sent to the accuser. Complaints from unknown participants are
// ignored.
func (r *Round2State) Justify(complaints []*Complaint) ([]*Justification, error) {
	if r.phase != PhaseResolvingComplaints {
		return nil, phaseError("justify", r.phase, PhaseResolvingComplaints)
	}
	seen := make(map[uint32]bool)
	var out []*Justification
	for _, c := range complaints {
		if c == nil || c.Accused != r.index || seen[c.Accuser] {
			continue
		}
		v, ok := r.outgoing[c.Accuser]
		if !ok {
			continue
		}
		seen[c.Accuser] = true
		out = append(out, &Justification{
			Accused: r.index,
			Accuser: c.Accuser,
			Value:   r.dkg.group.NewScalar().Set(v),
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Accuser < out[b].Accuser })
	return out, nil
}

type pair struct{ accused, accuser uint32 }

// Resolve decides the final qualified set from the broadcast complaints
// and justifications. The decision depends only on its inputs and the
// round 1 result, so every honest participant reaches the same one:
// a complaint is upheld unless the accused published a justification for
// it that passes Feldman verification against the accused's commitments,
// and every accused with an upheld complaint is excluded. A valid
// justification addressed to this participant replaces its missing or
// invalid share. This participant's own complaints are always included.
func (r *Round2State) Resolve(complaints []*Complaint, justifications []*Justification) error {
	if r.phase != PhaseResolvingComplaints {
		return phaseError("resolve complaints", r.phase, PhaseResolvingComplaints)
	}
	g := r.dkg.group

	all := make(map[pair]*Complaint)
	add := func(c *Complaint) {
		if c == nil || c.Accuser == c.Accused {
			return
		}
		if _, ok := r.commitments[c.Accuser]; !ok {
			return
		}
		if _, ok := r.commitments[c.Accused]; !ok {
			return
		}
		key := pair{c.Accused, c.Accuser}
		if _, ok := all[key]; !ok {
			all[key] = c
		}
	}
	for _, c := range r.complaints {
		add(c)
	}
	for _, c := range complaints {
		add(c)
	}

	// A pair is justified if any published justification for it verifies
	// at the accuser's index.
	valid := make(map[pair]group.Scalar)
	for _, j := range justifications {
		if j == nil || j.Value == nil {
			continue
		}
		key := pair{j.Accused, j.Accuser}
		if _, ok := all[key]; !ok {
			continue
		}
		if _, ok := valid[key]; ok {
			continue
		}
		commits := r.commitments[j.Accused]
		x := r.dkg.scalarFromIndex(j.Accuser)
		if group.Generate(g, j.Value).Equal(evalCommitments(g, commits, x)) {
			valid[key] = j.Value
		}
	}

	keys := make([]pair, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].accused != keys[b].accused {
			return keys[a].accused < keys[b].accused
		}
		return keys[a].accuser < keys[b].accuser
	})

	for _, k := range keys {
		c := all[k]
		if v, ok := valid[k]; ok {
			if k.accuser == r.index {
				r.received[k.accused] = g.NewScalar().Set(v)
				delete(r.complaints, k.accused)
			}
			continue
		}
		cause := ErrShareVerification
		if c.Reason == FaultMissingShare {
			cause = ErrTimeout
		}
		r.exclusions.Add(&Fault{
			Index: k.accused,
			Kind:  c.Reason,
			Err:   fmt.Errorf("complaint by %d: %w", k.accuser, cause),
		})
	}

	for _, s := range r.exclusions.Indices() {
		delete(r.commitments, s)
		if v, ok := r.received[s]; ok {
			v.Set(g.NewScalar())
			delete(r.received, s)
		}
	}

	if _, ok := r.commitments[r.index]; !ok {
		return peerError(r.index, ErrExcluded)
	}
	if q := len(r.commitments); q < int(r.dkg.params.Threshold) {
		return &InsufficientParticipantsError{
			Qualified: q,
			Threshold: int(r.dkg.params.Threshold),
			Excluded:  r.exclusions.Indices(),
		}
	}
	r.phase = PhaseSharesVerified
	return nil
}

// Faults returns every exclusion across both rounds.
func (r *Round2State) Faults() []*Fault { return r.exclusions.Faults() }

// Excluded returns the excluded indices in ascending order.
func (r *Round2State) Excluded() []uint32 { return r.exclusions.Indices() }

// Qualified returns the qualified indices in ascending order.
func (r *Round2State) Qualified() []uint32 {
	out := make([]uint32, 0, len(r.commitments))
	for j := range r.commitments {
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// VerificationShares returns Y_j = sum_{s in Q} F_s(j) for every qualified
// j. Y_j equals the public key of j's secret key share.
func (r *Round2State) VerificationShares() (map[uint32]group.Point, error) {
	if r.phase != PhaseSharesVerified && r.phase != PhaseFinalized {
		return nil, phaseError("verification shares", r.phase, PhaseSharesVerified, PhaseFinalized)
	}
	out := make(map[uint32]group.Point, len(r.commitments))
	for j := range r.commitments {
		out[j] = r.verificationShare(j)
	}
	return out, nil
}

func (r *Round2State) verificationShare(j uint32) group.Point {
	g := r.dkg.group
	x := r.dkg.scalarFromIndex(j)
	sum := g.NewPoint()
	for _, commits := range r.commitments {
		sum = g.NewPoint().Add(sum, evalCommitments(g, commits, x))
	}
	return sum
}

// Zeroize wipes every secret value held by the state, including the
// cached result of Finalize, and moves it to [PhaseZeroized].
func (r *Round2State) Zeroize() {
	r.phase = PhaseZeroized
	zero := r.dkg.group.NewScalar()
	if r.selfShare != nil {
		r.selfShare.Set(zero)
	}
	for j, v := range r.outgoing {
		v.Set(zero)
		delete(r.outgoing, j)
	}
	for j, v := range r.received {
		v.Set(zero)
		delete(r.received, j)
	}
	if r.final != nil {
		r.final.secret.Set(zero)
	}
}
