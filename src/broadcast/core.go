package broadcast

import (
	"fmt"
	"strconv"

	"github.com/pimukthee/dist-challenge/src/common"
	"github.com/pimukthee/dist-challenge/src/net"
	"github.com/pimukthee/dist-challenge/src/telemetry"
	"github.com/sirupsen/logrus"
)

// Core is the broadcast state machine. It is driven by a node.Node and is not
// safe for concurrent use.
type Core struct {
	id        string
	neighbors []string

	// accepted holds every value this node has, from clients or gossip.
	accepted *common.IntSet

	// delivered[n] holds the accepted values n is known to have, because n
	// gossiped them to us or acknowledged our gossip. Always a subset of
	// accepted.
	delivered map[string]*common.IntSet

	gossipLimit int

	logger *logrus.Entry
}

// NewCore creates the state of node id in a cluster made of nodeIDs. A
// gossipLimit of 0 puts no cap on the values sent in one gossip.
func NewCore(id string, nodeIDs []string, gossipLimit int, logger *logrus.Entry) *Core {
	delivered := make(map[string]*common.IntSet, len(nodeIDs))
	for _, n := range nodeIDs {
		delivered[n] = common.NewIntSet()
	}

	return &Core{
		id:          id,
		neighbors:   []string{},
		accepted:    common.NewIntSet(),
		delivered:   delivered,
		gossipLimit: gossipLimit,
		logger:      logger,
	}
}

// Handle implements node.Handler.
func (c *Core) Handle(env net.Envelope) ([]net.Envelope, error) {
	switch body := env.Body.(type) {
	case *net.Broadcast:
		if c.accepted.Add(body.Message) {
			c.logger.WithField("value", body.Message).Debug("Accepted")
			telemetry.AcceptedValues.Set(float64(c.accepted.Len()))
		}
		return reply(env, &net.BroadcastOk{}), nil

	case *net.Read:
		return reply(env, &net.ReadOk{Messages: c.accepted.Slice()}), nil

	case *net.Topology:
		if err := c.setTopology(body.Topology); err != nil {
			return nil, err
		}
		return reply(env, &net.TopologyOk{}), nil

	case *net.Gossip:
		c.acceptGossip(env.Src, body.Values)
		return reply(env, &net.GossipOk{Values: body.Values}), nil

	case *net.GossipOk:
		c.markDelivered(env.Src, body.Values)
		return nil, nil

	case *net.Echo, *net.Generate:
		return nil, common.NewProtocolErr(common.NotSupported, env.Body.Type(),
			"this node only serves broadcast, read and topology")

	default:
		// Replies and errors addressed to us need no answer.
		c.logger.WithFields(logrus.Fields{
			"from": env.Src,
			"type": env.Body.Type(),
		}).Debug("Ignoring")
		return nil, nil
	}
}

func reply(req net.Envelope, body net.Body) []net.Envelope {
	return []net.Envelope{net.Reply(req, body)}
}

// setTopology keeps the entry for this node. A missing entry means no
// neighbors.
func (c *Core) setTopology(topology map[string][]string) error {
	neighbors := []string{}
	for _, n := range topology[c.id] {
		if n == c.id {
			continue
		}
		if _, ok := c.delivered[n]; !ok {
			return common.NewProtocolErr(common.ProtocolViolation, net.TypeTopology,
				fmt.Sprintf("neighbor %q is not a member of the cluster", n))
		}
		neighbors = append(neighbors, n)
	}

	c.neighbors = neighbors
	telemetry.Neighbors.Set(float64(len(neighbors)))

	c.logger.WithField("neighbors", neighbors).Debug("Topology")
	return nil
}

func (c *Core) acceptGossip(from string, values []int) {
	added := c.accepted.AddAll(values)
	if added > 0 {
		c.logger.WithFields(logrus.Fields{
			"from":  from,
			"added": added,
		}).Debug("Accepted gossip")
		telemetry.AcceptedValues.Set(float64(c.accepted.Len()))
	}

	// the sender has everything it sent
	c.deliveredTo(from).AddAll(values)
}

func (c *Core) markDelivered(from string, values []int) {
	known := c.deliveredTo(from)
	for _, v := range values {
		if c.accepted.Contains(v) {
			known.Add(v)
		}
	}
}

// deliveredTo returns the tracking set of n, creating it for senders that
// were not in the init membership.
func (c *Core) deliveredTo(n string) *common.IntSet {
	set, ok := c.delivered[n]
	if !ok {
		c.logger.WithField("node", n).Debug("Tracking node outside the membership")
		set = common.NewIntSet()
		c.delivered[n] = set
	}
	return set
}

// Gossip implements node.Gossiper. Every neighbor gets the accepted values it
// is not known to have; neighbors that have everything get nothing. Nothing
// is marked as delivered until acknowledged.
func (c *Core) Gossip() ([]net.Envelope, error) {
	out := []net.Envelope{}
	for _, n := range c.neighbors {
		pending, err := c.Pending(n)
		if err != nil {
			return nil, err
		}
		if len(pending) == 0 {
			continue
		}

		if c.gossipLimit > 0 && len(pending) > c.gossipLimit {
			pending = pending[:c.gossipLimit]
		}

		out = append(out, net.Envelope{
			Src:  c.id,
			Dest: n,
			Body: &net.Gossip{Values: pending},
		})
		telemetry.GossipValuesSent.Add(float64(len(pending)))
	}
	return out, nil
}

// Pending returns, in ascending order, the accepted values n is not known to
// have.
func (c *Core) Pending(n string) ([]int, error) {
	known, ok := c.delivered[n]
	if !ok {
		return nil, common.NewProtocolErr(common.UnroutableNeighbor, n, "no delivery tracking")
	}
	return c.accepted.Difference(known), nil
}

// Accepted returns the accepted values in ascending order.
func (c *Core) Accepted() []int {
	return c.accepted.Slice()
}

// Neighbors returns the current neighbors.
func (c *Core) Neighbors() []string {
	res := make([]string, len(c.neighbors))
	copy(res, c.neighbors)
	return res
}

// Delivered returns, in ascending order, the values n is known to have.
func (c *Core) Delivered(n string) []int {
	known, ok := c.delivered[n]
	if !ok {
		return []int{}
	}
	return known.Slice()
}

// Stats implements node.StatsProvider.
func (c *Core) Stats() map[string]string {
	pending := 0
	for _, n := range c.neighbors {
		if known, ok := c.delivered[n]; ok {
			pending += c.accepted.Len() - known.Len()
		}
	}

	return map[string]string{
		"accepted_values": strconv.Itoa(c.accepted.Len()),
		"neighbors":       strconv.Itoa(len(c.neighbors)),
		"pending_values":  strconv.Itoa(pending),
		"tracked_nodes":   strconv.Itoa(len(c.delivered)),
	}
}
