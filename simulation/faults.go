package simulation

import (
	"fmt"
	"sort"

	"github.com/f3rmion/fydkg/dkg"
	"github.com/f3rmion/fydkg/group"
	"github.com/f3rmion/fydkg/session"
)

// Fault is a misbehaviour injected into one participant.
type Fault struct {
	kind  string
	index uint32
	to    uint32
}

// BadProof makes index publish a proof of knowledge that does not verify.
func BadProof(index uint32) Fault { return Fault{kind: "bad-proof", index: index} }

// CorruptShare makes from send a share to to that fails verification and
// answer the resulting complaint with an equally bad justification.
func CorruptShare(from, to uint32) Fault { return Fault{kind: "corrupt-share", index: from, to: to} }

// CorruptShareInTransit corrupts the share from from to to but leaves the
// justification intact, so from answers the complaint and stays qualified.
func CorruptShareInTransit(from, to uint32) Fault {
	return Fault{kind: "corrupt-share-in-transit", index: from, to: to}
}

// Silent keeps index from ever sending anything.
func Silent(index uint32) Fault { return Fault{kind: "silent", index: index} }

func (f Fault) String() string {
	if f.to != 0 {
		return fmt.Sprintf("%s(%d->%d)", f.kind, f.index, f.to)
	}
	return fmt.Sprintf("%s(%d)", f.kind, f.index)
}

type plan struct {
	badProof map[uint32]bool
	corrupt  map[uint32]map[uint32]bool
	transit  map[uint32]map[uint32]bool
	silent   map[uint32]bool
}

func newPlan(total uint32, faults []Fault) (*plan, error) {
	pl := &plan{
		badProof: make(map[uint32]bool),
		corrupt:  make(map[uint32]map[uint32]bool),
		transit:  make(map[uint32]map[uint32]bool),
		silent:   make(map[uint32]bool),
	}
	valid := func(i uint32) bool { return i >= 1 && i <= total }
	for _, f := range faults {
		if !valid(f.index) {
			return nil, fmt.Errorf("simulation: fault %s: no participant %d", f, f.index)
		}
		switch f.kind {
		case "bad-proof":
			pl.badProof[f.index] = true
		case "corrupt-share", "corrupt-share-in-transit":
			if !valid(f.to) || f.to == f.index {
				return nil, fmt.Errorf("simulation: fault %s: invalid receiver", f)
			}
			links := pl.corrupt
			if f.kind == "corrupt-share-in-transit" {
				links = pl.transit
			}
			if links[f.index] == nil {
				links[f.index] = make(map[uint32]bool)
			}
			links[f.index][f.to] = true
		case "silent":
			pl.silent[f.index] = true
		default:
			return nil, fmt.Errorf("simulation: unknown fault %q", f.kind)
		}
	}
	return pl, nil
}

func (pl *plan) silentIndices() []uint32 {
	out := make([]uint32, 0, len(pl.silent))
	for i := range pl.silent {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// bump adds one to s in place.
func bump(g group.Group, s group.Scalar) {
	s.Set(g.NewScalar().Add(s, group.ScalarFromIndex(g, 1)))
}

func (pl *plan) tamper(g group.Group, index uint32) session.Tamper {
	var t session.Tamper
	if pl.badProof[index] {
		t.Participant = func(p *dkg.Participant) { bump(g, p.Proof.Z) }
	}
	targets, transit := pl.corrupt[index], pl.transit[index]
	if len(targets) > 0 || len(transit) > 0 {
		t.Share = func(s *dkg.SecretShare) {
			if targets[s.Receiver] || transit[s.Receiver] {
				bump(g, s.Value)
			}
		}
	}
	if len(targets) > 0 {
		t.Justification = func(j *dkg.Justification) {
			if targets[j.Accuser] {
				bump(g, j.Value)
			}
		}
	}
	return t
}
