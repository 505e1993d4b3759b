package net

import (
	"sync"

	"github.com/sirupsen/logrus"
)

const inmemQueueSize = 1024

// DropFilter decides whether an envelope is lost on the way. It may be called
// from several goroutines at once.
type DropFilter func(env Envelope) bool

// InmemTransport implements the Transport interface, to allow clusters of
// nodes to be tested in-memory. Envelopes addressed to a connected peer go to
// its consumer; everything else (replies to clients) goes to the Outbox.
type InmemTransport struct {
	sync.RWMutex
	consumerCh chan Envelope
	outboxCh   chan Envelope
	localAddr  string
	peers      map[string]*InmemTransport
	drop       DropFilter
	closed     bool
	logger     *logrus.Entry
}

// NewInmemTransport is used to initialize a new transport for the node addr.
func NewInmemTransport(addr string, logger *logrus.Entry) *InmemTransport {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &InmemTransport{
		consumerCh: make(chan Envelope, inmemQueueSize),
		outboxCh:   make(chan Envelope, inmemQueueSize),
		localAddr:  addr,
		peers:      make(map[string]*InmemTransport),
		logger:     logger.WithField("transport", addr),
	}
}

// LocalAddr returns the node id this transport belongs to.
func (i *InmemTransport) LocalAddr() string {
	return i.localAddr
}

// Listen is an empty function as there is no need to defer
// initialisation of the Inmem transport
func (i *InmemTransport) Listen() {
}

// Consumer implements the Transport interface.
func (i *InmemTransport) Consumer() <-chan Envelope {
	return i.consumerCh
}

// Err implements the Transport interface. In-memory input never fails.
func (i *InmemTransport) Err() error {
	return nil
}

// Outbox returns envelopes sent to destinations that are not connected peers.
func (i *InmemTransport) Outbox() <-chan Envelope {
	return i.outboxCh
}

// SetDropFilter installs f to simulate a lossy network. A nil f delivers
// everything.
func (i *InmemTransport) SetDropFilter(f DropFilter) {
	i.Lock()
	defer i.Unlock()
	i.drop = f
}

// Send implements the Transport interface. The envelope goes through the
// codec so that what peers see is exactly what would cross the wire.
func (i *InmemTransport) Send(env Envelope) error {
	b, err := Encode(env)
	if err != nil {
		return err
	}
	wire, err := Decode(b)
	if err != nil {
		return err
	}

	i.RLock()
	peer, ok := i.peers[env.Dest]
	drop := i.drop
	i.RUnlock()

	if drop != nil && drop(wire) {
		i.logger.WithField("dest", env.Dest).WithField("type", env.Body.Type()).Debug("Dropped")
		return nil
	}

	if !ok {
		select {
		case i.outboxCh <- wire:
		default:
			i.logger.WithField("dest", env.Dest).Warn("Outbox full, dropping")
		}
		return nil
	}

	peer.enqueue(wire)
	return nil
}

// Deliver injects an inbound envelope, as if sent by a client. It blocks
// while the consumer queue is full.
func (i *InmemTransport) Deliver(env Envelope) error {
	i.RLock()
	defer i.RUnlock()

	if i.closed {
		return ErrTransportShutdown
	}
	i.consumerCh <- env
	return nil
}

// enqueue never blocks; a full queue loses the envelope like a congested
// link would.
func (i *InmemTransport) enqueue(env Envelope) {
	i.RLock()
	defer i.RUnlock()

	if i.closed {
		return
	}
	select {
	case i.consumerCh <- env:
	default:
		i.logger.WithField("src", env.Src).Warn("Consumer queue full, dropping")
	}
}

// Connect is used to connect this transport to another transport for
// a given peer name. This allows for local routing.
func (i *InmemTransport) Connect(peer string, t *InmemTransport) {
	i.Lock()
	defer i.Unlock()
	i.peers[peer] = t
}

// Disconnect is used to remove the ability to route to a given peer.
func (i *InmemTransport) Disconnect(peer string) {
	i.Lock()
	defer i.Unlock()
	delete(i.peers, peer)
}

// DisconnectAll is used to remove all routes to peers.
func (i *InmemTransport) DisconnectAll() {
	i.Lock()
	defer i.Unlock()
	i.peers = make(map[string]*InmemTransport)
}

// Close ends the input of this transport, which the node sees as end of
// stream.
func (i *InmemTransport) Close() error {
	i.DisconnectAll()

	i.Lock()
	defer i.Unlock()
	if !i.closed {
		i.closed = true
		close(i.consumerCh)
	}
	return nil
}
