package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/f3rmion/fydkg/wire"
)

func (p *Participant) broadcast(ctx context.Context, kind wire.Kind, encode func() ([]byte, error)) error {
	payload, err := encode()
	if err != nil {
		return fmt.Errorf("session %d: encode %s: %w", p.cfg.Index, kind, err)
	}
	data, err := wire.EncodeEnvelope(&wire.Envelope{Kind: kind, Sender: p.cfg.Index, Payload: payload})
	if err != nil {
		return fmt.Errorf("session %d: %w", p.cfg.Index, err)
	}
	if err := p.tr.Broadcast(ctx, data); err != nil {
		return fmt.Errorf("session %d: broadcast %s: %w", p.cfg.Index, kind, err)
	}
	return nil
}

func (p *Participant) send(ctx context.Context, kind wire.Kind, to uint32, payload []byte) error {
	data, err := wire.EncodeEnvelope(&wire.Envelope{Kind: kind, Sender: p.cfg.Index, Receiver: to, Payload: payload})
	if err != nil {
		return err
	}
	return p.tr.Send(ctx, to, data)
}

// collect feeds envelopes of kind to handle until done reports true or
// the barrier timeout expires. Envelopes of a later kind are kept for
// their own barrier; those of an earlier kind are stale and dropped. A
// timeout is not an error: the caller treats whoever stayed silent as
// absent.
func (p *Participant) collect(ctx context.Context, kind wire.Kind, handle func(*wire.Envelope), done func() bool) error {
	queued := p.pending[kind]
	delete(p.pending, kind)
	for _, env := range queued {
		if done() {
			break
		}
		handle(env)
	}

	bctx, cancel := context.WithTimeout(ctx, p.cfg.timeout())
	defer cancel()
	for !done() {
		data, err := p.tr.Receive(bctx)
		if err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				p.log.Warn().Stringer("barrier", kind).Msg("barrier timed out")
				return nil
			}
			return fmt.Errorf("session %d: receive %s: %w", p.cfg.Index, kind, err)
		}
		env, err := wire.DecodeEnvelope(data)
		if err != nil {
			p.log.Warn().Err(err).Msg("dropping undecodable envelope")
			continue
		}
		if !p.accept(env) {
			continue
		}
		switch {
		case env.Kind == kind:
			handle(env)
		case env.Kind > kind:
			p.pending[env.Kind] = append(p.pending[env.Kind], env)
		default:
			p.log.Debug().Uint32("peer", env.Sender).Stringer("kind", env.Kind).Msg("dropping stale message")
		}
	}
	return nil
}

// accept filters envelopes that cannot belong to this run.
func (p *Participant) accept(env *wire.Envelope) bool {
	switch {
	case env.Sender < 1 || env.Sender > p.cfg.Total || env.Sender == p.cfg.Index:
		p.log.Warn().Uint32("peer", env.Sender).Msg("dropping message from unexpected sender")
		return false
	case env.Receiver != 0 && env.Receiver != p.cfg.Index:
		p.log.Warn().Uint32("peer", env.Sender).Uint32("receiver", env.Receiver).Msg("dropping misrouted message")
		return false
	case env.Kind < wire.KindCommitments || env.Kind > wire.KindJustifications:
		p.log.Warn().Uint32("peer", env.Sender).Stringer("kind", env.Kind).Msg("dropping unknown message kind")
		return false
	}
	return true
}
