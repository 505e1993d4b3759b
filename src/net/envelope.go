package net

// Body types recognised on the wire.
const (
	TypeInit        = "init"
	TypeInitOk      = "init_ok"
	TypeBroadcast   = "broadcast"
	TypeBroadcastOk = "broadcast_ok"
	TypeRead        = "read"
	TypeReadOk      = "read_ok"
	TypeTopology    = "topology"
	TypeTopologyOk  = "topology_ok"
	TypeGossip      = "gossip"
	TypeGossipOk    = "gossip_ok"
	TypeEcho        = "echo"
	TypeEchoOk      = "echo_ok"
	TypeGenerate    = "generate"
	TypeGenerateOk  = "generate_ok"
	TypeError       = "error"
)

// Error codes carried by Error bodies.
const (
	ErrCodeTimeout                = 0
	ErrCodeNodeNotFound           = 1
	ErrCodeNotSupported           = 10
	ErrCodeTemporarilyUnavailable = 11
	ErrCodeMalformedRequest       = 12
	ErrCodeCrash                  = 13
	ErrCodeAbort                  = 14
)

// Envelope is one message exchanged between nodes and clients. A reply is a
// new Envelope with Src and Dest swapped, see Reply.
type Envelope struct {
	Src  string
	Dest string
	Body Body
}

// Body is the payload of an Envelope. The set of implementations is closed:
// one struct per body type, each embedding Header.
type Body interface {
	Type() string
	header() *Header
}

// Header holds the correlation ids common to every body.
type Header struct {
	MsgID     *int
	InReplyTo *int
}

func (h *Header) header() *Header { return h }

// MsgID returns the sender-assigned id of the envelope, if any.
func (e Envelope) MsgID() (int, bool) {
	h := e.Body.header()
	if h.MsgID == nil {
		return 0, false
	}
	return *h.MsgID, true
}

// InReplyTo returns the id of the request this envelope answers, if any.
func (e Envelope) InReplyTo() (int, bool) {
	h := e.Body.header()
	if h.InReplyTo == nil {
		return 0, false
	}
	return *h.InReplyTo, true
}

// SetMsgID assigns the outbound message id. It is only meant to be called on
// an envelope that has not been sent yet.
func (e Envelope) SetMsgID(id int) {
	e.Body.header().MsgID = &id
}

// Reply builds the response to req carrying body.
func Reply(req Envelope, body Body) Envelope {
	if id, ok := req.MsgID(); ok {
		body.header().InReplyTo = &id
	}
	return Envelope{
		Src:  req.Dest,
		Dest: req.Src,
		Body: body,
	}
}

// Init is the handshake sent by the harness before anything else.
type Init struct {
	Header
	NodeID  string
	NodeIDs []string
}

// InitOk ...
type InitOk struct{ Header }

// Broadcast asks the node to accept a value.
type Broadcast struct {
	Header
	Message int
}

// BroadcastOk ...
type BroadcastOk struct{ Header }

// Read asks for every accepted value.
type Read struct{ Header }

// ReadOk ...
type ReadOk struct {
	Header
	Messages []int
}

// Topology maps every node id to its direct neighbors.
type Topology struct {
	Header
	Topology map[string][]string
}

// TopologyOk ...
type TopologyOk struct{ Header }

// Gossip pushes values the receiver is not known to have.
type Gossip struct {
	Header
	Values []int
}

// GossipOk acknowledges the values of a Gossip.
type GossipOk struct {
	Header
	Values []int
}

// Echo ...
type Echo struct {
	Header
	Echo string
}

// EchoOk ...
type EchoOk struct {
	Header
	Echo string
}

// Generate asks for a cluster-wide unique id.
type Generate struct{ Header }

// GenerateOk ...
type GenerateOk struct {
	Header
	ID string
}

// Error reports a failed request.
type Error struct {
	Header
	Code int
	Text string
}

func (*Init) Type() string        { return TypeInit }
func (*InitOk) Type() string      { return TypeInitOk }
func (*Broadcast) Type() string   { return TypeBroadcast }
func (*BroadcastOk) Type() string { return TypeBroadcastOk }
func (*Read) Type() string        { return TypeRead }
func (*ReadOk) Type() string      { return TypeReadOk }
func (*Topology) Type() string    { return TypeTopology }
func (*TopologyOk) Type() string  { return TypeTopologyOk }
func (*Gossip) Type() string      { return TypeGossip }
func (*GossipOk) Type() string    { return TypeGossipOk }
func (*Echo) Type() string        { return TypeEcho }
func (*EchoOk) Type() string      { return TypeEchoOk }
func (*Generate) Type() string    { return TypeGenerate }
func (*GenerateOk) Type() string  { return TypeGenerateOk }
func (*Error) Type() string       { return TypeError }
