package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/f3rmion/fydkg/dkg"
	"github.com/f3rmion/fydkg/group"
	"github.com/f3rmion/fydkg/wire"
)

// Transport carries encoded envelopes between participants. Channels are
// assumed to be authenticated: the Sender of a received envelope is
// trusted. Send must deliver privately to the given index.
type Transport interface {
	Broadcast(ctx context.Context, data []byte) error
	Send(ctx context.Context, to uint32, data []byte) error
	Receive(ctx context.Context) ([]byte, error)
}

// Result is the output of a successful run.
type Result struct {
	Index    uint32
	KeyShare *dkg.SecretKeyShare
	GroupKey *dkg.GroupKey

	// VerificationShares maps every qualified index to the public key of
	// its secret key share.
	VerificationShares map[uint32]group.Point

	Qualified []uint32
	Excluded  []uint32
	Faults    []*dkg.Fault

	// Complaints holds every complaint seen during the complaint round,
	// this participant's included.
	Complaints []*dkg.Complaint
}

// Participant drives one participant through both rounds over a
// Transport. Create instances using [NewParticipant]; a Participant runs
// once.
type Participant struct {
	group  group.Group
	cfg    Config
	tr     Transport
	codec  *wire.Codec
	hasher dkg.Hasher
	tamper Tamper
	log    zerolog.Logger

	// envelopes that arrived ahead of their barrier
	pending map[wire.Kind][]*wire.Envelope
	ran     bool
}

// NewParticipant validates cfg and returns a participant ready to Run.
func NewParticipant(g group.Group, cfg Config, tr Transport, opts ...Option) (*Participant, error) {
	params := dkg.Parameters{Threshold: cfg.Threshold, Total: cfg.Total}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if cfg.Index < 1 || cfg.Index > cfg.Total {
		return nil, fmt.Errorf("%w: index %d not in [1, %d]", dkg.ErrMalformedInput, cfg.Index, cfg.Total)
	}
	if tr == nil {
		return nil, errors.New("session: nil transport")
	}
	p := &Participant{
		group:   g,
		cfg:     cfg,
		tr:      tr,
		codec:   wire.NewCodec(g),
		hasher:  &dkg.SHA256Hasher{},
		log:     zerolog.Nop(),
		pending: make(map[wire.Kind][]*wire.Envelope),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Index returns the participant's index.
func (p *Participant) Index() uint32 { return p.cfg.Index }

// Run executes the protocol. Silent or misbehaving peers are excluded and
// logged; Run fails only when this participant cannot finish, for example
// because fewer than t participants remain qualified or it was excluded
// itself.
func (p *Participant) Run(ctx context.Context, rng io.Reader) (*Result, error) {
	if p.ran {
		return nil, fmt.Errorf("%w: session already ran", dkg.ErrInvalidPhase)
	}
	p.ran = true

	d, err := dkg.NewWithHasher(p.group, p.hasher, p.cfg.Threshold, p.cfg.Total)
	if err != nil {
		return nil, err
	}
	self, coeffs, err := d.NewParticipant(rng, p.cfg.Index)
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", p.cfg.Index, err)
	}
	r1, err := d.NewRound1(self, coeffs)
	if err != nil {
		coeffs.Zeroize()
		return nil, fmt.Errorf("session %d: %w", p.cfg.Index, err)
	}

	r2, err := p.round1(ctx, r1)
	if err != nil {
		return nil, err
	}
	defer r2.Zeroize()

	if err := p.shares(ctx, r2); err != nil {
		return nil, err
	}
	complaints, err := p.complaints(ctx, r2)
	if err != nil {
		return nil, err
	}
	justifications, err := p.justifications(ctx, r2, complaints)
	if err != nil {
		return nil, err
	}

	if err := r2.Resolve(complaints, justifications); err != nil {
		p.logFaults(r2.Faults())
		return nil, fmt.Errorf("session %d: resolve complaints: %w", p.cfg.Index, err)
	}
	p.logFaults(r2.Faults())

	share, groupKey, err := r2.Finalize(self.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("session %d: finalize: %w", p.cfg.Index, err)
	}
	vs, err := r2.VerificationShares()
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", p.cfg.Index, err)
	}
	p.log.Info().
		Uints32("qualified", r2.Qualified()).
		Str("group_key", groupKey.String()).
		Msg("key generation complete")

	return &Result{
		Index:              p.cfg.Index,
		KeyShare:           share,
		GroupKey:           groupKey,
		VerificationShares: vs,
		Qualified:          r2.Qualified(),
		Excluded:           r2.Excluded(),
		Faults:             r2.Faults(),
		Complaints:         complaints,
	}, nil
}

func (p *Participant) round1(ctx context.Context, r1 *dkg.Round1State) (*dkg.Round2State, error) {
	out := r1.Broadcast()
	if p.tamper.Participant != nil {
		p.tamper.Participant(out)
	}
	if err := p.broadcast(ctx, wire.KindCommitments, func() ([]byte, error) {
		return p.codec.EncodeParticipant(out)
	}); err != nil {
		return nil, err
	}

	peers := p.cfg.Total - 1
	err := p.collect(ctx, wire.KindCommitments, func(env *wire.Envelope) {
		rec, err := p.codec.DecodeParticipant(env.Payload)
		if err == nil && rec.Index != env.Sender {
			err = fmt.Errorf("%w: record of %d sent by %d", dkg.ErrUnexpectedSender, rec.Index, env.Sender)
		}
		if err != nil {
			p.log.Warn().Uint32("peer", env.Sender).Err(err).Msg("rejecting commitments")
			_ = r1.Reject(env.Sender, err)
			return
		}
		if err := r1.Receive(rec); err != nil {
			p.log.Warn().Uint32("peer", env.Sender).Err(err).Msg("commitments refused")
		}
	}, func() bool {
		return uint32(len(r1.Qualified())-1+len(r1.Excluded())) >= peers
	})
	if err != nil {
		return nil, err
	}

	if err := r1.Verify(); err != nil {
		p.logFaults(r1.Faults())
		return nil, fmt.Errorf("session %d: verify commitments: %w", p.cfg.Index, err)
	}
	p.logFaults(r1.Faults())

	r2, set, err := r1.ToRound2()
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", p.cfg.Index, err)
	}
	defer set.Zeroize()

	for _, j := range set.Receivers() {
		sh := *set.For(j)
		sh.Value = p.group.NewScalar().Set(sh.Value)
		if p.tamper.Share != nil {
			p.tamper.Share(&sh)
		}
		data, err := p.codec.EncodeShare(&sh)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", p.cfg.Index, err)
		}
		if err := p.send(ctx, wire.KindShare, j, data); err != nil {
			p.log.Warn().Uint32("peer", j).Err(err).Msg("share not delivered")
		}
	}
	return r2, nil
}

func (p *Participant) shares(ctx context.Context, r2 *dkg.Round2State) error {
	qualified := r2.Qualified()
	return p.collect(ctx, wire.KindShare, func(env *wire.Envelope) {
		if !r2.Expects(env.Sender) {
			return
		}
		sh, err := p.codec.DecodeShare(env.Payload)
		if err == nil && (sh.Sender != env.Sender || sh.Receiver != p.cfg.Index) {
			err = fmt.Errorf("%w: share %d -> %d in envelope from %d", dkg.ErrMisrouted, sh.Sender, sh.Receiver, env.Sender)
		}
		if err != nil {
			p.log.Warn().Uint32("peer", env.Sender).Err(err).Msg("rejecting share")
			_ = r2.Reject(env.Sender)
			return
		}
		if err := r2.Receive(sh); err != nil {
			p.log.Warn().Uint32("accused", env.Sender).Err(err).Msg("complaint")
		}
	}, func() bool {
		for _, j := range qualified {
			if r2.Expects(j) {
				return false
			}
		}
		return true
	})
}

// complaints publishes this participant's complaints and gathers those of
// every qualified peer. A peer may only complain in its own name.
func (p *Participant) complaints(ctx context.Context, r2 *dkg.Round2State) ([]*dkg.Complaint, error) {
	own, err := r2.CloseShares()
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", p.cfg.Index, err)
	}
	for _, c := range own {
		p.log.Info().Uint32("accused", c.Accused).Stringer("reason", c.Reason).Msg("broadcasting complaint")
	}
	if err := p.broadcast(ctx, wire.KindComplaints, func() ([]byte, error) {
		return p.codec.EncodeComplaints(own)
	}); err != nil {
		return nil, err
	}

	all := append([]*dkg.Complaint(nil), own...)
	heard := p.peerSet(r2.Qualified())
	err = p.collect(ctx, wire.KindComplaints, func(env *wire.Envelope) {
		if !heard.take(env.Sender) {
			return
		}
		cs, err := p.codec.DecodeComplaints(env.Payload)
		if err != nil {
			p.log.Warn().Uint32("peer", env.Sender).Err(err).Msg("undecodable complaints")
			return
		}
		for _, c := range cs {
			if c.Accuser != env.Sender {
				continue
			}
			p.log.Debug().Uint32("accuser", c.Accuser).Uint32("accused", c.Accused).Msg("complaint received")
			all = append(all, c)
		}
	}, heard.empty)
	if err != nil {
		return nil, err
	}
	return all, nil
}

// justifications answers the complaints against this participant and
// gathers the answers of every qualified peer. The result holds the
// answers as broadcast, this participant's included. A peer may only
// justify its own shares.
func (p *Participant) justifications(ctx context.Context, r2 *dkg.Round2State, complaints []*dkg.Complaint) ([]*dkg.Justification, error) {
	own, err := r2.Justify(complaints)
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", p.cfg.Index, err)
	}
	if p.tamper.Justification != nil {
		for _, j := range own {
			p.tamper.Justification(j)
		}
	}
	if err := p.broadcast(ctx, wire.KindJustifications, func() ([]byte, error) {
		return p.codec.EncodeJustifications(own)
	}); err != nil {
		return nil, err
	}

	// Resolve sees exactly what the peers see, own answers included.
	all := append([]*dkg.Justification(nil), own...)
	heard := p.peerSet(r2.Qualified())
	err = p.collect(ctx, wire.KindJustifications, func(env *wire.Envelope) {
		if !heard.take(env.Sender) {
			return
		}
		js, err := p.codec.DecodeJustifications(env.Payload)
		if err != nil {
			p.log.Warn().Uint32("peer", env.Sender).Err(err).Msg("undecodable justifications")
			return
		}
		for _, j := range js {
			if j.Accused == env.Sender {
				all = append(all, j)
			}
		}
	}, heard.empty)
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (p *Participant) logFaults(faults []*dkg.Fault) {
	for _, f := range faults {
		p.log.Warn().Uint32("excluded", f.Index).Stringer("kind", f.Kind).Err(f.Err).Msg("participant excluded")
	}
}

// peers tracks the qualified peers not yet heard from at a barrier.
type peers map[uint32]bool

func (p *Participant) peerSet(qualified []uint32) peers {
	s := make(peers, len(qualified))
	for _, j := range qualified {
		if j != p.cfg.Index {
			s[j] = true
		}
	}
	return s
}

func (s peers) take(j uint32) bool {
	if !s[j] {
		return false
	}
	delete(s, j)
	return true
}

func (s peers) empty() bool { return len(s) == 0 }
