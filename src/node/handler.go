package node

import "github.com/pimukthee/dist-challenge/src/net"

// Handler is the state machine a Node drives. Its methods are only ever
// called from the node's consumer loop, one at a time, so implementations need
// no locking.
type Handler interface {
	// Handle processes one inbound envelope and returns the envelopes to send.
	// An error of type common.NotSupported is answered with an error reply;
	// any other error stops the node.
	Handle(env net.Envelope) ([]net.Envelope, error)
}

// Gossiper is implemented by handlers that act on the gossip timer. The timer
// only runs for handlers that implement it.
type Gossiper interface {
	Gossip() ([]net.Envelope, error)
}

// StatsProvider is implemented by handlers that report stats.
type StatsProvider interface {
	Stats() map[string]string
}

// HandlerFactory builds the handler once the handshake has assigned the node
// id and the cluster membership.
type HandlerFactory func(id string, nodeIDs []string) (Handler, error)
