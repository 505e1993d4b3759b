// Package unique implements a node generating globally unique ids without
// coordinating with other nodes.
package unique

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pimukthee/dist-challenge/src/common"
	"github.com/pimukthee/dist-challenge/src/config"
	"github.com/pimukthee/dist-challenge/src/net"
	"github.com/pimukthee/dist-challenge/src/node"
	"github.com/sirupsen/logrus"
)

// Handler answers generate with a ULID. Ids from one node are strictly
// increasing.
type Handler struct {
	sync.Mutex

	entropy io.Reader
	now     func() time.Time
	logger  *logrus.Entry
}

// NewHandler returns a Handler drawing monotonic entropy from the default
// source.
func NewHandler(logger *logrus.Entry) *Handler {
	return &Handler{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
		logger:  logger,
	}
}

// NewHandlerFactory returns a factory building a unique-id Handler.
func NewHandlerFactory(conf *config.Config) node.HandlerFactory {
	return func(id string, nodeIDs []string) (node.Handler, error) {
		return NewHandler(conf.Logger().WithField("this_id", id)), nil
	}
}

// Generate returns a new id.
func (h *Handler) Generate() (string, error) {
	h.Lock()
	defer h.Unlock()

	id, err := ulid.New(ulid.Timestamp(h.now()), h.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Handle implements node.Handler.
func (h *Handler) Handle(env net.Envelope) ([]net.Envelope, error) {
	switch env.Body.(type) {
	case *net.Generate:
		id, err := h.Generate()
		if err != nil {
			return nil, err
		}
		return []net.Envelope{net.Reply(env, &net.GenerateOk{ID: id})}, nil
	case *net.Broadcast, *net.Read, *net.Topology, *net.Gossip, *net.GossipOk, *net.Echo:
		return nil, common.NewProtocolErr(common.NotSupported, env.Body.Type(), "unique-ids node")
	default:
		h.logger.WithField("type", env.Body.Type()).Debug("Ignoring")
		return nil, nil
	}
}
