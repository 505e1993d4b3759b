package net

import "errors"

// ErrTransportShutdown is returned when operations on a transport are invoked
// after it's been terminated.
var ErrTransportShutdown = errors.New("transport shutdown")

// Transport carries envelopes between this node and the rest of the cluster.
type Transport interface {

	// Listen starts producing inbound envelopes on the Consumer channel.
	Listen()

	// Consumer returns the channel of inbound envelopes. It is closed when the
	// input is exhausted or cannot be decoded.
	Consumer() <-chan Envelope

	// Err returns the error that closed the Consumer channel, or nil if the
	// input simply ended. It is only meaningful once Consumer is closed.
	Err() error

	// Send writes one envelope. Losing an envelope on the way is not an error.
	Send(env Envelope) error

	// Close permanently closes a transport, stopping
	// any associated goroutines and freeing other resources.
	Close() error
}
