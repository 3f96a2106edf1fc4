package dkg

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/f3rmion/fydkg/group"
)

// tamper hooks let a test play a malicious participant.
type tamper struct {
	participant   func(p *Participant)
	share         func(s *SecretShare)
	justification func(j *Justification)
}

type outcome struct {
	d            *DKG
	participants map[uint32]*Participant
	round2       map[uint32]*Round2State
	keys         map[uint32]*SecretKeyShare
	groupKeys    map[uint32]*GroupKey
	errs         map[uint32]error
}

// runProtocol executes a full run with perfect delivery between all n
// participants inside one process.
func runProtocol(t *testing.T, g group.Group, threshold, total uint32, tm tamper) *outcome {
	t.Helper()

	d, err := New(g, threshold, total)
	if err != nil {
		t.Fatal(err)
	}
	out := &outcome{
		d:            d,
		participants: make(map[uint32]*Participant),
		round2:       make(map[uint32]*Round2State),
		keys:         make(map[uint32]*SecretKeyShare),
		groupKeys:    make(map[uint32]*GroupKey),
		errs:         make(map[uint32]error),
	}

	round1 := make(map[uint32]*Round1State)
	for i := uint32(1); i <= total; i++ {
		p, coeffs, err := d.NewParticipant(rand.Reader, i)
		if err != nil {
			t.Fatalf("participant %d: %v", i, err)
		}
		r1, err := d.NewRound1(p, coeffs)
		if err != nil {
			t.Fatalf("round 1 for %d: %v", i, err)
		}
		out.participants[i] = p
		round1[i] = r1
	}

	// Round 1: broadcast and collect commitments
	for i, r1 := range round1 {
		rec := r1.Broadcast()
		if tm.participant != nil {
			tm.participant(rec)
		}
		for j, peer := range round1 {
			if i == j {
				continue
			}
			if err := peer.Receive(rec); err != nil {
				t.Fatalf("%d receiving from %d: %v", j, i, err)
			}
		}
	}

	live := make(map[uint32]bool)
	sets := make(map[uint32]*SecretShareSet)
	for i, r1 := range round1 {
		if err := r1.Verify(); err != nil {
			out.errs[i] = err
			continue
		}
		r2, set, err := r1.ToRound2()
		if err != nil {
			t.Fatalf("to round 2 for %d: %v", i, err)
		}
		live[i] = true
		out.round2[i] = r2
		sets[i] = set
	}

	// Round 2: pairwise share delivery
	for i, set := range sets {
		for _, j := range set.Receivers() {
			orig := set.For(j)
			sh := &SecretShare{Sender: orig.Sender, Receiver: orig.Receiver, Value: g.NewScalar().Set(orig.Value)}
			if tm.share != nil {
				tm.share(sh)
			}
			if !live[j] {
				continue
			}
			err := out.round2[j].Receive(sh)
			if err != nil && !errors.Is(err, ErrShareVerification) && !errors.Is(err, ErrUnexpectedSender) {
				t.Fatalf("%d receiving share from %d: %v", j, i, err)
			}
		}
		set.Zeroize()
	}

	var complaints []*Complaint
	for i := range live {
		cs, err := out.round2[i].CloseShares()
		if err != nil {
			t.Fatal(err)
		}
		complaints = append(complaints, cs...)
	}

	var justifications []*Justification
	for i := range live {
		js, err := out.round2[i].Justify(complaints)
		if err != nil {
			t.Fatal(err)
		}
		for _, j := range js {
			if tm.justification != nil {
				tm.justification(j)
			}
		}
		justifications = append(justifications, js...)
	}

	for i := range live {
		r2 := out.round2[i]
		if err := r2.Resolve(complaints, justifications); err != nil {
			out.errs[i] = err
			continue
		}
		key, gk, err := r2.Finalize(out.participants[i].PublicKey())
		if err != nil {
			out.errs[i] = err
			continue
		}
		out.keys[i] = key
		out.groupKeys[i] = gk
	}
	return out
}

// groupKeyFor returns sum C_{s,0} for s in q.
func groupKeyFor(g group.Group, parts map[uint32]*Participant, q []uint32) group.Point {
	sum := g.NewPoint()
	for _, s := range q {
		sum = g.NewPoint().Add(sum, parts[s].PublicKey())
	}
	return sum
}

func plusOne(g group.Group, s group.Scalar) group.Scalar {
	return g.NewScalar().Add(s, g.NewScalar().SetUint64(1))
}
