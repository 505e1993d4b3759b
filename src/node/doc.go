// Package node implements the runtime of a node.
//
// A Node owns a single Handler (the state machine, see the broadcast package)
// and is the only goroutine that ever touches it. Three activities run
// concurrently:
//
// - the inbound producer reads envelopes from the transport,
//
// - the ControlTimer produces a gossip tick every HeartbeatTimeout (only when
// the handler is a Gossiper),
//
// - the consumer loop takes events from one channel, in arrival order, and
// calls Handle or Gossip. Outbound envelopes are written by the consumer.
//
// # Handshake
//
// The first inbound envelope must be an init body. It gives the node its id
// and the cluster membership, which are passed to the HandlerFactory. The node
// answers with init_ok. Any other first message is a ProtocolViolation.
//
// # Shutdown
//
// When the input ends, the timer is stopped, the events still queued are
// handled and Run returns nil. A malformed line, a protocol violation or a
// handler error makes Run return the error.
package node
