package hub

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	id       string
	received [][]byte
	closed   bool
	mu       sync.Mutex
	sendErr  error
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.received = append(m.received, data)
	return nil
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) getReceived() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.received
}

func (m *mockConn) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func TestHub_Broadcast(t *testing.T) {
	tests := []struct {
		name          string
		exclude       string
		wantReceived  map[string]int
		wantDelivered int
	}{
		{
			name:          "broadcast to everyone",
			exclude:       "",
			wantReceived:  map[string]int{"a": 1, "b": 1, "c": 1},
			wantDelivered: 3,
		},
		{
			name:          "exclude originator",
			exclude:       "a",
			wantReceived:  map[string]int{"a": 0, "b": 1, "c": 1},
			wantDelivered: 2,
		},
		{
			name:          "unknown exclude",
			exclude:       "zzz",
			wantReceived:  map[string]int{"a": 1, "b": 1, "c": 1},
			wantDelivered: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(NewRegistry())
			conns := []*mockConn{{id: "a"}, {id: "b"}, {id: "c"}}
			for _, c := range conns {
				h.Registry().Register(c)
			}

			delivered := h.Broadcast([]byte("frame"), tt.exclude)

			assert.Equal(t, tt.wantDelivered, delivered)
			for _, c := range conns {
				assert.Len(t, c.getReceived(), tt.wantReceived[c.ID()], "receiver %s", c.ID())
			}
		})
	}
}

func TestHub_BroadcastEvictsFailedSend(t *testing.T) {
	h := New(NewRegistry())
	good := &mockConn{id: "good"}
	bad := &mockConn{id: "bad", sendErr: errors.New("buffer full")}
	h.Registry().Register(good)
	h.Registry().Register(bad)

	delivered := h.Broadcast([]byte("first"), "")
	assert.Equal(t, 1, delivered)

	_, stillThere := h.Registry().Get("bad")
	assert.False(t, stillThere, "failed connection must be gone before the next broadcast")
	assert.Equal(t, 1, h.Stats())
	assert.Eventually(t, bad.isClosed, time.Second, 5*time.Millisecond)

	h.Broadcast([]byte("second"), "")
	require.Len(t, good.getReceived(), 2)
	assert.Equal(t, "second", string(good.getReceived()[1]))
	assert.Empty(t, bad.getReceived())
}

func TestHub_BroadcastPreservesOrderPerConnection(t *testing.T) {
	h := New(NewRegistry())
	c := &mockConn{id: "c"}
	h.Registry().Register(c)

	for _, f := range []string{"1", "2", "3", "4"} {
		h.Broadcast([]byte(f), "")
	}

	var got []string
	for _, d := range c.getReceived() {
		got = append(got, string(d))
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, got)
}

func TestHub_LateJoinerMissesEarlierBroadcast(t *testing.T) {
	h := New(NewRegistry())
	early := &mockConn{id: "early"}
	h.Registry().Register(early)

	h.Broadcast([]byte("before"), "")

	late := &mockConn{id: "late"}
	h.Registry().Register(late)

	assert.Len(t, early.getReceived(), 1)
	assert.Empty(t, late.getReceived())
}

func TestHub_EvictUnknownIsNoop(t *testing.T) {
	h := New(NewRegistry())
	c := &mockConn{id: "ghost"}

	h.Evict(c)

	assert.Equal(t, 0, h.Stats())
	assert.Never(t, c.isClosed, 50*time.Millisecond, 10*time.Millisecond)
}

func TestHub_CloseAll(t *testing.T) {
	h := New(NewRegistry())
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}
	h.Registry().Register(a)
	h.Registry().Register(b)

	h.CloseAll()

	assert.Equal(t, 0, h.Stats())
	assert.True(t, a.isClosed())
	assert.True(t, b.isClosed())
}
