package broadcast

import (
	"github.com/pimukthee/dist-challenge/src/config"
	"github.com/pimukthee/dist-challenge/src/node"
)

// NewHandlerFactory returns the factory a node.Node uses to build its Core
// once the handshake is done.
func NewHandlerFactory(conf *config.Config) node.HandlerFactory {
	return func(id string, nodeIDs []string) (node.Handler, error) {
		logger := conf.Logger().WithField("this_id", id)
		return NewCore(id, nodeIDs, conf.GossipLimit, logger), nil
	}
}
