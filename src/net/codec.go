package net

import (
	"fmt"

	"github.com/pimukthee/dist-challenge/src/common"
	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
)

var jsonHandle = newJSONHandle()

func newJSONHandle() *codec.JsonHandle {
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	return jh
}

type wireEnvelope struct {
	Src  string   `codec:"src"`
	Dest string   `codec:"dest"`
	Body wireBody `codec:"body"`
}

// wireBody is the union of every body field. Pointers tell an absent field
// from a zero value.
type wireBody struct {
	Type      string               `codec:"type"`
	MsgID     *int                 `codec:"msg_id"`
	InReplyTo *int                 `codec:"in_reply_to"`
	NodeID    *string              `codec:"node_id"`
	NodeIDs   *[]string            `codec:"node_ids"`
	Message   *int                 `codec:"message"`
	Messages  *[]int               `codec:"messages"`
	Topology  *map[string][]string `codec:"topology"`
	Values    *[]int               `codec:"values"`
	Echo      *string              `codec:"echo"`
	ID        *string              `codec:"id"`
	Code      *int                 `codec:"code"`
	Text      *string              `codec:"text"`
}

func malformed(subject, detail string) error {
	return common.NewProtocolErr(common.MalformedEnvelope, subject, detail)
}

func missing(typ, field string) error {
	return malformed(typ, fmt.Sprintf("missing field %q", field))
}

// Decode parses one line into an Envelope. Unknown fields are ignored.
func Decode(line []byte) (Envelope, error) {
	var w wireEnvelope
	if err := codec.NewDecoderBytes(line, jsonHandle).Decode(&w); err != nil {
		return Envelope{}, errors.Wrap(malformed("envelope", err.Error()), "decode")
	}
	if w.Src == "" {
		return Envelope{}, missing("envelope", "src")
	}
	if w.Dest == "" {
		return Envelope{}, missing("envelope", "dest")
	}

	body, err := decodeBody(&w.Body)
	if err != nil {
		return Envelope{}, err
	}
	h := body.header()
	h.MsgID = w.Body.MsgID
	h.InReplyTo = w.Body.InReplyTo

	return Envelope{Src: w.Src, Dest: w.Dest, Body: body}, nil
}

func decodeBody(w *wireBody) (Body, error) {
	switch w.Type {
	case TypeInit:
		if w.NodeID == nil {
			return nil, missing(w.Type, "node_id")
		}
		if w.NodeIDs == nil {
			return nil, missing(w.Type, "node_ids")
		}
		return &Init{NodeID: *w.NodeID, NodeIDs: *w.NodeIDs}, nil
	case TypeInitOk:
		return &InitOk{}, nil
	case TypeBroadcast:
		if w.Message == nil {
			return nil, missing(w.Type, "message")
		}
		return &Broadcast{Message: *w.Message}, nil
	case TypeBroadcastOk:
		return &BroadcastOk{}, nil
	case TypeRead:
		return &Read{}, nil
	case TypeReadOk:
		if w.Messages == nil {
			return nil, missing(w.Type, "messages")
		}
		return &ReadOk{Messages: *w.Messages}, nil
	case TypeTopology:
		if w.Topology == nil {
			return nil, missing(w.Type, "topology")
		}
		return &Topology{Topology: *w.Topology}, nil
	case TypeTopologyOk:
		return &TopologyOk{}, nil
	case TypeGossip:
		if w.Values == nil {
			return nil, missing(w.Type, "values")
		}
		return &Gossip{Values: *w.Values}, nil
	case TypeGossipOk:
		if w.Values == nil {
			return nil, missing(w.Type, "values")
		}
		return &GossipOk{Values: *w.Values}, nil
	case TypeEcho:
		if w.Echo == nil {
			return nil, missing(w.Type, "echo")
		}
		return &Echo{Echo: *w.Echo}, nil
	case TypeEchoOk:
		if w.Echo == nil {
			return nil, missing(w.Type, "echo")
		}
		return &EchoOk{Echo: *w.Echo}, nil
	case TypeGenerate:
		return &Generate{}, nil
	case TypeGenerateOk:
		if w.ID == nil {
			return nil, missing(w.Type, "id")
		}
		return &GenerateOk{ID: *w.ID}, nil
	case TypeError:
		if w.Code == nil {
			return nil, missing(w.Type, "code")
		}
		e := &Error{Code: *w.Code}
		if w.Text != nil {
			e.Text = *w.Text
		}
		return e, nil
	case "":
		return nil, missing("body", "type")
	default:
		return nil, malformed(w.Type, "unknown body type")
	}
}

// Encode renders env as a single JSON object followed by a newline.
func Encode(env Envelope) ([]byte, error) {
	if env.Body == nil {
		return nil, fmt.Errorf("envelope %s -> %s has no body", env.Src, env.Dest)
	}
	body, err := bodyFields(env.Body)
	if err != nil {
		return nil, err
	}

	h := env.Body.header()
	if h.MsgID != nil {
		body["msg_id"] = *h.MsgID
	}
	if h.InReplyTo != nil {
		body["in_reply_to"] = *h.InReplyTo
	}
	body["type"] = env.Body.Type()

	out := map[string]interface{}{
		"src":  env.Src,
		"dest": env.Dest,
		"body": body,
	}

	var b []byte
	if err := codec.NewEncoderBytes(&b, jsonHandle).Encode(out); err != nil {
		return nil, errors.Wrapf(err, "encode %s", env.Body.Type())
	}
	return append(b, '\n'), nil
}

func ints(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func bodyFields(b Body) (map[string]interface{}, error) {
	m := map[string]interface{}{}
	switch body := b.(type) {
	case *Init:
		ids := body.NodeIDs
		if ids == nil {
			ids = []string{}
		}
		m["node_id"] = body.NodeID
		m["node_ids"] = ids
	case *Broadcast:
		m["message"] = body.Message
	case *ReadOk:
		m["messages"] = ints(body.Messages)
	case *Topology:
		topo := body.Topology
		if topo == nil {
			topo = map[string][]string{}
		}
		m["topology"] = topo
	case *Gossip:
		m["values"] = ints(body.Values)
	case *GossipOk:
		m["values"] = ints(body.Values)
	case *Echo:
		m["echo"] = body.Echo
	case *EchoOk:
		m["echo"] = body.Echo
	case *GenerateOk:
		m["id"] = body.ID
	case *Error:
		m["code"] = body.Code
		if body.Text != "" {
			m["text"] = body.Text
		}
	case *InitOk, *BroadcastOk, *Read, *TopologyOk, *Generate:
	default:
		return nil, fmt.Errorf("cannot encode body of type %T", b)
	}
	return m, nil
}
