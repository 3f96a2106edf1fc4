// Package session runs the [dkg] protocol for one participant over a
// message transport.
//
// The low-level [dkg] package is a pure state machine: it never blocks and
// never talks to the network. A session wraps it with the four barriers of
// a complete run:
//
//  1. broadcast commitments and proof of knowledge, collect the peers'
//  2. send a share to every qualified peer, collect the shares sent here
//  3. broadcast complaints, collect the peers' complaints
//  4. broadcast justifications, collect the peers' justifications
//
// after which complaints are resolved and the key material finalized.
//
// Each barrier waits until every expected peer has spoken or
// [Config.Timeout] expires. Peers that stay silent are treated as absent
// and excluded; they never stall the run. Messages that arrive ahead of
// their barrier are buffered, stale ones are dropped.
//
// # Usage
//
//	p, err := session.NewParticipant(&bjj.BJJ{}, session.Config{
//		Threshold: 2,
//		Total:     3,
//		Index:     1,
//		Timeout:   5 * time.Second,
//	}, transport, session.WithLogger(logging.ForParticipant(1)))
//	if err != nil {
//		return err
//	}
//	res, err := p.Run(ctx, rand.Reader)
//	if err != nil {
//		return err
//	}
//	// Store res.KeyShare securely; publish res.GroupKey.
//
// # Transport
//
// Every message travels in a [wire.Envelope] naming its sender. The
// transport must authenticate senders and keep point-to-point messages
// private; package transport/memory provides an in-process implementation
// for tests and simulations.
package session
