package websocket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	registry := NewRegistry()
	connID := uuid.New()

	_, ok := registry.Get(connID)
	assert.False(t, ok)

	registry.OnConnect(connID, 1, "alice")

	session, ok := registry.Get(connID)
	require.True(t, ok)
	assert.Equal(t, uint(1), session.UserID)
	assert.Equal(t, "alice", session.Username)
	assert.Zero(t, session.RoomID)

	prev := registry.SetRoom(connID, 42)
	assert.Zero(t, prev)

	session, _ = registry.Get(connID)
	assert.Equal(t, uint(42), session.RoomID)

	// joining another room overwrites the previous association
	prev = registry.SetRoom(connID, 43)
	assert.Equal(t, uint(42), prev)

	removed, ok := registry.OnDisconnect(connID)
	require.True(t, ok)
	assert.Equal(t, uint(43), removed.RoomID)

	_, ok = registry.OnDisconnect(connID)
	assert.False(t, ok)
}

func TestRegistrySessionsInRoom(t *testing.T) {
	registry := NewRegistry()

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	registry.OnConnect(a, 1, "alice")
	registry.OnConnect(b, 2, "bob")
	registry.OnConnect(c, 3, "carol")

	registry.SetRoom(a, 10)
	registry.SetRoom(b, 10)
	registry.SetRoom(c, 20)

	inRoom := registry.SessionsInRoom(10)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, inRoom)

	assert.Len(t, registry.SessionsInRoom(20), 1)
	assert.Empty(t, registry.SessionsInRoom(99))

	// connections with no room never match
	registry.ClearRoom(b)
	assert.ElementsMatch(t, []uuid.UUID{a}, registry.SessionsInRoom(10))
	assert.Empty(t, registry.SessionsInRoom(0))
}

func TestRegistryClearRoom(t *testing.T) {
	registry := NewRegistry()
	connID := uuid.New()
	registry.OnConnect(connID, 1, "alice")
	registry.SetRoom(connID, 7)

	assert.Equal(t, uint(7), registry.ClearRoom(connID))
	assert.Zero(t, registry.ClearRoom(connID))

	// unknown connections are a no-op
	assert.Zero(t, registry.ClearRoom(uuid.New()))
}
