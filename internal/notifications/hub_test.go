package notifications

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	conn := &websocket.Conn{}

	require.NoError(t, hub.Register("u1", conn))
	assert.Equal(t, 1, hub.ConnectionCount("u1"))

	hub.Unregister("u1", conn)
	assert.Equal(t, 0, hub.ConnectionCount("u1"))

	// Unregistering an unknown connection is a no-op.
	hub.Unregister("u1", conn)
	assert.Equal(t, 0, hub.ConnectionCount("u1"))
}

func TestHubPerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		require.NoError(t, hub.Register("u1", &websocket.Conn{}))
	}
	assert.Equal(t, maxConnsPerUser, hub.ConnectionCount("u1"))

	err := hub.Register("u1", &websocket.Conn{})
	assert.Error(t, err)

	// Other users are unaffected by one user's limit.
	assert.NoError(t, hub.Register("u2", &websocket.Conn{}))
}

func TestHubTracksUsersIndependently(t *testing.T) {
	hub := NewHub()
	c1, c2 := &websocket.Conn{}, &websocket.Conn{}

	require.NoError(t, hub.Register("u1", c1))
	require.NoError(t, hub.Register("u2", c2))
	assert.Equal(t, 1, hub.ConnectionCount("u1"))
	assert.Equal(t, 1, hub.ConnectionCount("u2"))

	hub.Unregister("u1", c1)
	assert.Equal(t, 0, hub.ConnectionCount("u1"))
	assert.Equal(t, 1, hub.ConnectionCount("u2"))
}
