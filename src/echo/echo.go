// Package echo implements a node that answers every echo request with the
// payload it received.
package echo

import (
	"github.com/pimukthee/dist-challenge/src/common"
	"github.com/pimukthee/dist-challenge/src/config"
	"github.com/pimukthee/dist-challenge/src/net"
	"github.com/pimukthee/dist-challenge/src/node"
	"github.com/sirupsen/logrus"
)

// Handler replies echo_ok to echo.
type Handler struct {
	logger *logrus.Entry
}

// NewHandlerFactory returns a factory building an echo Handler.
func NewHandlerFactory(conf *config.Config) node.HandlerFactory {
	return func(id string, nodeIDs []string) (node.Handler, error) {
		return &Handler{logger: conf.Logger().WithField("this_id", id)}, nil
	}
}

// Handle implements node.Handler.
func (h *Handler) Handle(env net.Envelope) ([]net.Envelope, error) {
	switch body := env.Body.(type) {
	case *net.Echo:
		return []net.Envelope{net.Reply(env, &net.EchoOk{Echo: body.Echo})}, nil
	case *net.Broadcast, *net.Read, *net.Topology, *net.Gossip, *net.GossipOk, *net.Generate:
		return nil, common.NewProtocolErr(common.NotSupported, env.Body.Type(), "echo node")
	default:
		h.logger.WithField("type", env.Body.Type()).Debug("Ignoring")
		return nil, nil
	}
}
