package unique

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pimukthee/dist-challenge/src/common"
	"github.com/pimukthee/dist-challenge/src/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	h := NewHandler(common.NewTestEntry(t))

	seen := map[string]bool{}
	previous := ""
	for i := 0; i < 1000; i++ {
		id, err := h.Generate()
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		require.Greater(t, id, previous)
		seen[id] = true
		previous = id
	}
}

func TestGenerateAcrossNodes(t *testing.T) {
	// same millisecond on both nodes
	frozen := time.UnixMilli(1700000000000)
	a := NewHandler(common.NewTestEntry(t))
	b := NewHandler(common.NewTestEntry(t))
	a.now = func() time.Time { return frozen }
	b.now = func() time.Time { return frozen }

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		for _, h := range []*Handler{a, b} {
			id, err := h.Generate()
			require.NoError(t, err)
			require.False(t, seen[id])
			seen[id] = true
		}
	}
}

func TestHandleGenerate(t *testing.T) {
	h := NewHandler(common.NewTestEntry(t))

	req := net.Envelope{Src: "c1", Dest: "n1", Body: &net.Generate{}}
	req.SetMsgID(3)

	out, err := h.Handle(req)
	require.NoError(t, err)
	require.Len(t, out, 1)

	ok := out[0].Body.(*net.GenerateOk)
	_, err = ulid.ParseStrict(ok.ID)
	assert.NoError(t, err)
	irt, _ := out[0].InReplyTo()
	assert.Equal(t, 3, irt)

	_, err = h.Handle(net.Envelope{Src: "c1", Dest: "n1", Body: &net.Echo{Echo: "x"}})
	assert.True(t, common.Is(err, common.NotSupported))
}
