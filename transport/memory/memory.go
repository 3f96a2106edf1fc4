// Package memory connects participants of one process through buffered
// channels. It is meant for tests and simulations.
package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"golang.org/x/xerrors"
)

var (
	// ErrUnknownPeer is returned when sending to an index that never joined.
	ErrUnknownPeer = xerrors.New("memory: unknown peer")

	// ErrAlreadyJoined is returned when an index joins twice.
	ErrAlreadyJoined = xerrors.New("memory: index already joined")

	// ErrClosed is returned once the network has been closed.
	ErrClosed = xerrors.New("memory: network closed")
)

// DefaultBuffer is the queue length of every endpoint.
const DefaultBuffer = 256

// Filter inspects a message from one endpoint to another before delivery.
// It returns the bytes to deliver, or false to drop the message. Filters
// run on a private copy, so they may modify data in place.
type Filter func(from, to uint32, data []byte) ([]byte, bool)

// Network routes messages between endpoints identified by participant
// index.
type Network struct {
	mu     sync.RWMutex
	nodes  map[uint32]chan []byte
	delays map[uint32]time.Duration
	filter Filter
	buffer int
	done   chan struct{}
	once   sync.Once
}

// NewNetwork returns an empty network whose endpoints queue up to buffer
// messages. A buffer below one selects DefaultBuffer.
func NewNetwork(buffer int) *Network {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Network{
		nodes:  make(map[uint32]chan []byte),
		delays: make(map[uint32]time.Duration),
		buffer: buffer,
		done:   make(chan struct{}),
	}
}

// Delay holds back every message sent by index for d, mimicking a slow
// link.
func (n *Network) Delay(index uint32, d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delays[index] = d
}

// SetFilter installs f for all subsequent deliveries. A nil f removes it.
func (n *Network) SetFilter(f Filter) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.filter = f
}

// Close stops delayed deliveries and makes further sends fail.
func (n *Network) Close() {
	n.once.Do(func() { close(n.done) })
}

// Join registers index and returns its endpoint.
func (n *Network) Join(index uint32) (*Endpoint, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.nodes[index]; ok {
		return nil, xerrors.Errorf("join %d: %w", index, ErrAlreadyJoined)
	}
	queue := make(chan []byte, n.buffer)
	n.nodes[index] = queue
	return &Endpoint{network: n, index: index, queue: queue}, nil
}

// Peers returns the number of joined endpoints.
func (n *Network) Peers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.nodes)
}

func (n *Network) deliver(ctx context.Context, from, to uint32, data []byte) error {
	select {
	case <-n.done:
		return ErrClosed
	default:
	}

	n.mu.RLock()
	queue, ok := n.nodes[to]
	delay := n.delays[from]
	filter := n.filter
	n.mu.RUnlock()
	if !ok {
		return xerrors.Errorf("send %d -> %d: %w", from, to, ErrUnknownPeer)
	}

	msg := bytes.Clone(data)
	if filter != nil {
		if msg, ok = filter(from, to, msg); !ok {
			return nil
		}
	}

	if delay > 0 {
		go func() {
			select {
			case <-time.After(delay):
			case <-n.done:
				return
			}
			select {
			case queue <- msg:
			case <-n.done:
			}
		}()
		return nil
	}

	select {
	case queue <- msg:
		return nil
	case <-ctx.Done():
		return xerrors.Errorf("send %d -> %d: %w", from, to, ctx.Err())
	case <-n.done:
		return ErrClosed
	}
}

// Endpoint is the view of the network held by one participant.
type Endpoint struct {
	network *Network
	index   uint32
	queue   chan []byte
}

// Index returns the index the endpoint joined with.
func (e *Endpoint) Index() uint32 { return e.index }

// Send delivers data to the endpoint joined as to. It blocks while the
// receiver's queue is full.
func (e *Endpoint) Send(ctx context.Context, to uint32, data []byte) error {
	return e.network.deliver(ctx, e.index, to, data)
}

// Broadcast sends data to every other endpoint. Each receiver gets its own
// copy.
func (e *Endpoint) Broadcast(ctx context.Context, data []byte) error {
	e.network.mu.RLock()
	peers := make([]uint32, 0, len(e.network.nodes))
	for i := range e.network.nodes {
		if i != e.index {
			peers = append(peers, i)
		}
	}
	e.network.mu.RUnlock()

	for _, to := range peers {
		if err := e.network.deliver(ctx, e.index, to, data); err != nil {
			return err
		}
	}
	return nil
}

// Receive blocks until a message arrives or ctx is done.
func (e *Endpoint) Receive(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-e.queue:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.network.done:
		return nil, ErrClosed
	}
}
