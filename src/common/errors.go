package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrType ...
type ErrType uint32

const (
	// MalformedEnvelope is a line that does not decode into a known body.
	MalformedEnvelope ErrType = iota
	// ProtocolViolation is a message the protocol does not allow at this point,
	// or one that references an unknown node.
	ProtocolViolation
	// UnroutableNeighbor is a neighbor absent from the delivery bookkeeping.
	UnroutableNeighbor
	// NotSupported is a well-formed request this node does not serve.
	NotSupported
)

// ProtocolErr ...
type ProtocolErr struct {
	errType ErrType
	subject string
	detail  string
}

// NewProtocolErr ...
func NewProtocolErr(errType ErrType, subject string, detail string) ProtocolErr {
	return ProtocolErr{
		errType: errType,
		subject: subject,
		detail:  detail,
	}
}

// Type returns the category of the error.
func (e ProtocolErr) Type() ErrType {
	return e.errType
}

// Error ...
func (e ProtocolErr) Error() string {
	m := ""
	switch e.errType {
	case MalformedEnvelope:
		m = "Malformed Envelope"
	case ProtocolViolation:
		m = "Protocol Violation"
	case UnroutableNeighbor:
		m = "Unroutable Neighbor"
	case NotSupported:
		m = "Not Supported"
	}

	return fmt.Sprintf("%s, %s, %s", m, e.subject, e.detail)
}

// Is checks that err, or any error it wraps, is a ProtocolErr of type t.
func Is(err error, t ErrType) bool {
	var protoErr ProtocolErr
	return errors.As(err, &protoErr) && protoErr.errType == t
}
