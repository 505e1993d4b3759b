package node

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pimukthee/dist-challenge/src/common"
	"github.com/pimukthee/dist-challenge/src/config"
	"github.com/pimukthee/dist-challenge/src/net"
	"github.com/pimukthee/dist-challenge/src/telemetry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const eventQueueSize = 64

// event is either an inbound envelope, a gossip tick, or the end of input.
type event struct {
	envelope *net.Envelope
	tick     bool
	eof      bool
	err      error
}

// Node defines a node of the cluster
type Node struct {
	state

	conf   *config.Config
	logger *logrus.Entry

	id      string
	factory HandlerFactory
	handler Handler

	trans net.Transport

	eventCh      chan event
	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	controlTimer *ControlTimer

	nextMsgID int
	start     time.Time
	processed int
	ticks     int
	stats     atomic.Value
}

// NewNode is a factory method that returns a Node instance
func NewNode(conf *config.Config, trans net.Transport, factory HandlerFactory) *Node {
	eventCh := make(chan event, eventQueueSize)

	node := Node{
		conf:         conf,
		logger:       conf.Logger(),
		factory:      factory,
		trans:        trans,
		eventCh:      eventCh,
		shutdownCh:   make(chan struct{}),
		controlTimer: NewPeriodicControlTimer(eventCh),
	}
	node.stats.Store(map[string]string{})

	return &node
}

// Run performs the handshake and then processes events until the input ends.
// It returns nil on a clean end of input.
func (n *Node) Run() error {
	n.start = time.Now()
	n.trans.Listen()

	if err := n.init(); err != nil {
		n.abort()
		return err
	}

	n.setState(Running)
	n.publishStats()

	n.goFunc(n.listen)

	if _, ok := n.handler.(Gossiper); ok {
		n.logger.WithField("heartbeat", n.conf.HeartbeatTimeout).Debug("Starting gossip timer")
		n.goFunc(func() { n.controlTimer.Run(n.conf.HeartbeatTimeout) })
	}

	return n.loop()
}

// ID returns the id assigned by the handshake, or "" before it.
func (n *Node) ID() string {
	return n.id
}

// State returns the current state of the node.
func (n *Node) State() State {
	return n.getState()
}

func (n *Node) init() error {
	env, ok := <-n.trans.Consumer()
	if !ok {
		if err := n.trans.Err(); err != nil {
			return errors.Wrap(err, "handshake")
		}
		return common.NewProtocolErr(common.ProtocolViolation, net.TypeInit, "input ended before init")
	}

	init, ok := env.Body.(*net.Init)
	if !ok {
		return common.NewProtocolErr(common.ProtocolViolation, net.TypeInit,
			"first message was "+env.Body.Type())
	}

	n.id = init.NodeID
	n.logger = n.logger.WithField("this_id", n.id)

	n.logger.WithFields(logrus.Fields{
		"from":     env.Src,
		"node_ids": init.NodeIDs,
	}).Debug("Init")

	handler, err := n.factory(init.NodeID, init.NodeIDs)
	if err != nil {
		return errors.Wrap(err, "create handler")
	}
	n.handler = handler

	return n.send(net.Reply(env, &net.InitOk{}))
}

// listen is the inbound producer.
func (n *Node) listen() {
	for env := range n.trans.Consumer() {
		env := env
		select {
		case n.eventCh <- event{envelope: &env}:
		case <-n.shutdownCh:
			return
		}
	}

	select {
	case n.eventCh <- event{eof: true, err: n.trans.Err()}:
	case <-n.shutdownCh:
	}
}

// loop is the consumer. It is the only place the handler is called from.
func (n *Node) loop() error {
	for {
		var ev event
		select {
		case ev = <-n.eventCh:
		case <-n.shutdownCh:
			n.logger.Debug("Stopped")
			return nil
		}

		if ev.eof {
			return n.drain(ev.err)
		}

		if err := n.handle(ev); err != nil {
			n.logger.WithError(err).Error("Fatal")
			n.abort()
			return err
		}
	}
}

func (n *Node) handle(ev event) error {
	var err error
	if ev.tick {
		err = n.gossip()
	} else {
		err = n.process(*ev.envelope)
	}
	n.publishStats()
	return err
}

// drain stops the timer and handles whatever is still queued. Only ticks can
// remain: the end of input is the last thing the inbound producer sends.
func (n *Node) drain(inputErr error) error {
	if inputErr != nil {
		n.logger.WithError(inputErr).Error("Input failed")
		n.abort()
		return inputErr
	}

	n.logger.Debug("End of input, draining")
	n.setState(Draining)

	n.controlTimer.Shutdown()
	n.waitRoutines()

	for {
		select {
		case ev := <-n.eventCh:
			if err := n.handle(ev); err != nil {
				n.abort()
				return err
			}
		default:
			n.Shutdown()
			n.publishStats()
			return nil
		}
	}
}

func (n *Node) process(env net.Envelope) error {
	telemetry.EnvelopesReceived.WithLabelValues(env.Body.Type()).Inc()
	n.processed++

	n.logger.WithFields(logrus.Fields{
		"from": env.Src,
		"type": env.Body.Type(),
	}).Debug("Processing envelope")

	if _, ok := env.Body.(*net.Init); ok {
		n.logger.WithField("from", env.Src).Warn("Ignoring repeated init")
		return nil
	}

	out, err := n.handler.Handle(env)
	if err != nil {
		if !common.Is(err, common.NotSupported) {
			return errors.Wrapf(err, "handle %s from %s", env.Body.Type(), env.Src)
		}

		n.logger.WithError(err).Warn("Unsupported request")
		if _, ok := env.MsgID(); ok {
			return n.send(net.Reply(env, &net.Error{
				Code: net.ErrCodeNotSupported,
				Text: err.Error(),
			}))
		}
		return nil
	}

	return n.sendAll(out)
}

func (n *Node) gossip() error {
	n.ticks++

	g, ok := n.handler.(Gossiper)
	if !ok {
		return nil
	}

	out, err := g.Gossip()
	if err != nil {
		return errors.Wrap(err, "gossip")
	}

	if len(out) > 0 {
		n.logger.WithField("envelopes", len(out)).Debug("Time to gossip!")
	}

	return n.sendAll(out)
}

func (n *Node) sendAll(envs []net.Envelope) error {
	for _, env := range envs {
		if err := n.send(env); err != nil {
			return err
		}
	}
	return nil
}

// send fills in the source and the outbound message id, then writes env.
func (n *Node) send(env net.Envelope) error {
	if env.Src == "" {
		env.Src = n.id
	}
	if _, ok := env.MsgID(); !ok {
		env.SetMsgID(n.nextMsgID)
		n.nextMsgID++
	}

	if err := n.trans.Send(env); err != nil {
		return errors.Wrapf(err, "send %s to %s", env.Body.Type(), env.Dest)
	}

	telemetry.EnvelopesSent.WithLabelValues(env.Body.Type()).Inc()
	return nil
}

// abort stops the producers without waiting for them: the inbound producer
// may be blocked on a read that never returns.
func (n *Node) abort() {
	n.controlTimer.Shutdown()
	n.Shutdown()
	n.publishStats()
}

// Shutdown shuts down the node. It is safe to call from any goroutine.
func (n *Node) Shutdown() {
	n.shutdownOnce.Do(func() {
		n.logger.Debug("Shutdown")

		n.setState(Shutdown)
		close(n.shutdownCh)
		n.controlTimer.Shutdown()

		if err := n.trans.Close(); err != nil {
			n.logger.WithError(err).Warn("Closing transport")
		}
	})
}

func (n *Node) publishStats() {
	s := map[string]string{
		"id":                n.id,
		"state":             n.getState().String(),
		"envelopes_handled": strconv.Itoa(n.processed),
		"gossip_ticks":      strconv.Itoa(n.ticks),
		"next_msg_id":       strconv.Itoa(n.nextMsgID),
	}
	if !n.start.IsZero() {
		s["uptime"] = time.Since(n.start).Round(time.Millisecond).String()
	}

	if sp, ok := n.handler.(StatsProvider); ok {
		for k, v := range sp.Stats() {
			s[k] = v
		}
	}

	n.stats.Store(s)
}

// GetStats returns the stats published after the last handled event. It is
// safe to call from any goroutine.
func (n *Node) GetStats() map[string]string {
	published := n.stats.Load().(map[string]string)

	res := make(map[string]string, len(published))
	for k, v := range published {
		res[k] = v
	}
	return res
}
