package broadcast

import (
	"testing"

	"github.com/pimukthee/dist-challenge/src/common"
	"github.com/pimukthee/dist-challenge/src/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCore(t *testing.T, id string, nodeIDs ...string) *Core {
	return NewCore(id, nodeIDs, 0, common.NewTestEntry(t))
}

func request(src, dest string, body net.Body) net.Envelope {
	env := net.Envelope{Src: src, Dest: dest, Body: body}
	env.SetMsgID(1)
	return env
}

func handle(t *testing.T, c *Core, env net.Envelope) []net.Envelope {
	out, err := c.Handle(env)
	require.NoError(t, err)
	return out
}

func read(t *testing.T, c *Core) []int {
	out := handle(t, c, request("c1", c.id, &net.Read{}))
	require.Len(t, out, 1)
	return out[0].Body.(*net.ReadOk).Messages
}

func TestBroadcastThenRead(t *testing.T) {
	a := newTestCore(t, "A", "A")

	out := handle(t, a, request("c1", "A", &net.Broadcast{Message: 5}))
	require.Len(t, out, 1)
	require.IsType(t, &net.BroadcastOk{}, out[0].Body)
	assert.Equal(t, "A", out[0].Src)
	assert.Equal(t, "c1", out[0].Dest)
	inReplyTo, ok := out[0].InReplyTo()
	assert.True(t, ok)
	assert.Equal(t, 1, inReplyTo)

	assert.Equal(t, []int{5}, read(t, a))

	// no neighbors, nothing to gossip
	gossip, err := a.Gossip()
	require.NoError(t, err)
	assert.Empty(t, gossip)
}

func TestIdempotence(t *testing.T) {
	a := newTestCore(t, "A", "A", "B")

	handle(t, a, request("c1", "A", &net.Broadcast{Message: 5}))
	handle(t, a, request("c1", "A", &net.Broadcast{Message: 5}))
	handle(t, a, request("B", "A", &net.Gossip{Values: []int{5}}))

	assert.Equal(t, []int{5}, read(t, a))
}

func TestMonotonicity(t *testing.T) {
	a := newTestCore(t, "A", "A", "B")

	steps := []net.Body{
		&net.Broadcast{Message: 3},
		&net.Gossip{Values: []int{1, 2}},
		&net.Topology{Topology: map[string][]string{"A": {"B"}}},
		&net.GossipOk{Values: []int{1, 7}},
		&net.Gossip{Values: []int{}},
		&net.Broadcast{Message: 1},
		&net.Read{},
	}

	previous := common.NewIntSet()
	for _, body := range steps {
		handle(t, a, request("B", "A", body))
		current := common.NewIntSet(a.Accepted()...)
		assert.True(t, previous.IsSubset(current), "accepted shrank after %s", body.Type())
		previous = current
	}
	assert.Equal(t, []int{1, 2, 3}, a.Accepted())
}

func TestTopology(t *testing.T) {
	a := newTestCore(t, "A", "A", "B", "C")

	out := handle(t, a, request("c1", "A", &net.Topology{Topology: map[string][]string{
		"A": {"B", "A", "C"},
		"B": {"A"},
	}}))
	require.IsType(t, &net.TopologyOk{}, out[0].Body)
	assert.Equal(t, []string{"B", "C"}, a.Neighbors())

	// absent entry means no neighbors
	handle(t, a, request("c1", "A", &net.Topology{Topology: map[string][]string{"B": {"C"}}}))
	assert.Empty(t, a.Neighbors())
}

func TestTopologyUnknownNeighbor(t *testing.T) {
	a := newTestCore(t, "A", "A", "B")

	_, err := a.Handle(request("c1", "A", &net.Topology{Topology: map[string][]string{"A": {"Z"}}}))
	require.Error(t, err)
	assert.True(t, common.Is(err, common.ProtocolViolation))
}

func TestGossipToNeighbor(t *testing.T) {
	a := newTestCore(t, "A", "A", "B")
	handle(t, a, request("c1", "A", &net.Topology{Topology: map[string][]string{"A": {"B"}}}))
	handle(t, a, request("c1", "A", &net.Broadcast{Message: 5}))

	out, err := a.Gossip()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].Src)
	assert.Equal(t, "B", out[0].Dest)
	assert.Equal(t, []int{5}, out[0].Body.(*net.Gossip).Values)

	// not marked as delivered before the acknowledgment
	assert.Empty(t, a.Delivered("B"))
	out, err = a.Gossip()
	require.NoError(t, err)
	require.Len(t, out, 1, "unacknowledged values are sent again")
}

func TestAcknowledgmentStopsRetransmission(t *testing.T) {
	a := newTestCore(t, "A", "A", "B")
	b := newTestCore(t, "B", "A", "B")
	handle(t, a, request("c1", "A", &net.Topology{Topology: map[string][]string{"A": {"B"}}}))
	handle(t, a, request("c1", "A", &net.Broadcast{Message: 5}))

	gossip, err := a.Gossip()
	require.NoError(t, err)
	require.Len(t, gossip, 1)

	acks := handle(t, b, gossip[0])
	require.Len(t, acks, 1)
	assert.Equal(t, []int{5}, read(t, b))
	assert.Equal(t, "A", acks[0].Dest)
	assert.Equal(t, []int{5}, acks[0].Body.(*net.GossipOk).Values)
	// B now knows A has 5
	assert.Equal(t, []int{5}, b.Delivered("A"))

	assert.Empty(t, handle(t, a, acks[0]))
	assert.Equal(t, []int{5}, a.Delivered("B"))

	out, err := a.Gossip()
	require.NoError(t, err)
	assert.Empty(t, out, "nothing new for B")

	handle(t, a, request("c1", "A", &net.Broadcast{Message: 6}))
	out, err = a.Gossip()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []int{6}, out[0].Body.(*net.Gossip).Values, "only the new value is sent")
}

func TestGossipFromNeighborCountsAsDelivered(t *testing.T) {
	a := newTestCore(t, "A", "A", "B")
	handle(t, a, request("c1", "A", &net.Topology{Topology: map[string][]string{"A": {"B"}}}))
	handle(t, a, request("B", "A", &net.Gossip{Values: []int{1, 2}}))

	out, err := a.Gossip()
	require.NoError(t, err)
	assert.Empty(t, out, "B sent those values itself")
}

func TestGossipOkForUnknownValues(t *testing.T) {
	a := newTestCore(t, "A", "A", "B")
	handle(t, a, request("c1", "A", &net.Broadcast{Message: 1}))
	handle(t, a, request("B", "A", &net.GossipOk{Values: []int{1, 99}}))

	delivered := common.NewIntSet(a.Delivered("B")...)
	assert.True(t, delivered.IsSubset(common.NewIntSet(a.Accepted()...)))
	assert.Equal(t, []int{1}, a.Delivered("B"))
}

func TestGossipFromOutsideMembership(t *testing.T) {
	a := newTestCore(t, "A", "A")

	out := handle(t, a, request("X", "A", &net.Gossip{Values: []int{4}}))
	require.Len(t, out, 1)
	assert.Equal(t, []int{4}, a.Accepted())
	assert.Equal(t, []int{4}, a.Delivered("X"))
}

func TestPendingUnroutable(t *testing.T) {
	a := newTestCore(t, "A", "A", "B")

	_, err := a.Pending("Z")
	assert.True(t, common.Is(err, common.UnroutableNeighbor))

	// a neighbor set behind the bookkeeping's back is fatal at fan-out
	a.neighbors = []string{"Z"}
	handle(t, a, request("c1", "A", &net.Broadcast{Message: 1}))
	_, err = a.Gossip()
	assert.True(t, common.Is(err, common.UnroutableNeighbor))
}

func TestGossipLimit(t *testing.T) {
	a := NewCore("A", []string{"A", "B"}, 2, common.NewTestEntry(t))
	handle(t, a, request("c1", "A", &net.Topology{Topology: map[string][]string{"A": {"B"}}}))
	for _, v := range []int{9, 3, 7, 1} {
		handle(t, a, request("c1", "A", &net.Broadcast{Message: v}))
	}

	out, err := a.Gossip()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []int{1, 3}, out[0].Body.(*net.Gossip).Values)

	handle(t, a, request("B", "A", &net.GossipOk{Values: []int{1, 3}}))
	out, err = a.Gossip()
	require.NoError(t, err)
	assert.Equal(t, []int{7, 9}, out[0].Body.(*net.Gossip).Values)
}

func TestUnsupportedAndIgnored(t *testing.T) {
	a := newTestCore(t, "A", "A")

	_, err := a.Handle(request("c1", "A", &net.Echo{Echo: "hi"}))
	assert.True(t, common.Is(err, common.NotSupported))

	for _, body := range []net.Body{&net.BroadcastOk{}, &net.ReadOk{}, &net.TopologyOk{}, &net.Error{Code: 0}} {
		out, err := a.Handle(request("B", "A", body))
		require.NoError(t, err)
		assert.Empty(t, out, body.Type())
	}
}

// exchange runs gossip rounds between cores, delivering every envelope, until
// nothing is sent.
func exchange(t *testing.T, cores map[string]*Core) int {
	rounds := 0
	for {
		rounds++
		require.Less(t, rounds, 20, "gossip did not settle")

		inflight := []net.Envelope{}
		for _, c := range cores {
			out, err := c.Gossip()
			require.NoError(t, err)
			inflight = append(inflight, out...)
		}
		if len(inflight) == 0 {
			return rounds
		}

		for len(inflight) > 0 {
			env := inflight[0]
			inflight = inflight[1:]
			inflight = append(inflight, handle(t, cores[env.Dest], env)...)
		}
	}
}

func TestSimultaneousBroadcasts(t *testing.T) {
	a := newTestCore(t, "A", "A", "B")
	b := newTestCore(t, "B", "A", "B")
	topology := map[string][]string{"A": {"B"}, "B": {"A"}}
	handle(t, a, request("c1", "A", &net.Topology{Topology: topology}))
	handle(t, b, request("c1", "B", &net.Topology{Topology: topology}))

	handle(t, a, request("c1", "A", &net.Broadcast{Message: 1}))
	handle(t, b, request("c2", "B", &net.Broadcast{Message: 2}))

	exchange(t, map[string]*Core{"A": a, "B": b})

	assert.Equal(t, []int{1, 2}, read(t, a))
	assert.Equal(t, []int{1, 2}, read(t, b))
}

func TestReadReflectsAccepted(t *testing.T) {
	a := newTestCore(t, "A", "A", "B")
	handle(t, a, request("c1", "A", &net.Broadcast{Message: 10}))
	handle(t, a, request("B", "A", &net.Gossip{Values: []int{3, 10, 4}}))

	assert.Equal(t, a.Accepted(), read(t, a))
	assert.Equal(t, []int{3, 4, 10}, read(t, a))
	assert.Equal(t, "3", a.Stats()["accepted_values"])
}
