package model

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/chesscore/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records what a game writes to a socket.
type fakeConn struct {
	mu       sync.Mutex
	messages []ws.Message
	closed   bool
}

func (c *fakeConn) WriteJSON(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var msg ws.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

func (c *fakeConn) WriteMessage(int, []byte) error {
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) count(t ws.MessageType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.messages {
		if m.Type == t {
			n++
		}
	}
	return n
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestDuplicateConnectionKeepsTheFirst(t *testing.T) {
	g := newTestGame(t)
	first := &fakeConn{}
	second := &fakeConn{}

	require.NoError(t, g.RegisterConnection("alice", first))
	assert.Eventually(t, func() bool { return first.count(ws.MessageTypeGameState) == 1 }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, g.RegisterConnection("alice", second), ErrDuplicateConnection)
	assert.True(t, second.isClosed())

	// the rejected socket's handler unwinds and unregisters itself
	g.UnregisterConnection("alice", second)

	play(t, g, "alice", pos(1, 4), pos(3, 4))
	assert.Eventually(t, func() bool { return first.count(ws.MessageTypeGameState) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, second.count(ws.MessageTypeGameState))
	require.NoError(t, g.Send("alice", ws.ErrorMessage("ping")))

	g.UnregisterConnection("alice", first)
	assert.ErrorIs(t, g.Send("alice", ws.ErrorMessage("ping")), ErrPlayerNotInGame)

	// a fresh socket may register once the first is gone
	require.NoError(t, g.RegisterConnection("alice", second))
}

func TestRegisterConnectionRejectsStrangersOnceSeated(t *testing.T) {
	g := newTestGame(t)
	assert.ErrorIs(t, g.RegisterConnection("carol", &fakeConn{}), ErrPlayerNotInGame)
}
