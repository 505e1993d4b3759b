// Package net implements the wire format and the transports of a node.
//
// Every message is an Envelope: a source, a destination and a typed Body. On
// the wire an Envelope is one JSON object per line:
//
//	{"src": "c1", "dest": "n1", "body": {"type": "broadcast", "message": 5, "msg_id": 1}}
//
// Body is a closed set of types, one per value of "type". Decode rejects lines
// with a missing or unknown type, or without the fields that type requires,
// with a MalformedEnvelope error. Unknown fields are ignored.
//
// # Transports
//
// - Stdio: the production transport. Reads standard input and writes
// standard output, one envelope per line.
//
// - Inmem: in-memory transport used only for testing. It routes between
// connected transports and can drop envelopes to simulate a lossy network.
package net
