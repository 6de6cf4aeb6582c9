package websocket

import (
	"sync"

	"github.com/google/uuid"
)

// Session is the volatile record for one live connection: who it belongs to
// and the single room it currently occupies (0 when none).
type Session struct {
	ConnID   uuid.UUID
	UserID   uint
	Username string
	RoomID   uint
}

// Registry owns the mapping of live connections to identities and rooms.
// It is the single source of truth the broadcast path consults; no other
// component caches a room's live session list.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

// OnConnect registers a session with no room yet.
func (r *Registry) OnConnect(connID uuid.UUID, userID uint, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = &Session{ConnID: connID, UserID: userID, Username: username}
}

// OnDisconnect removes the session and returns its final state so the
// caller can emit departure notices.
func (r *Registry) OnDisconnect(connID uuid.UUID) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, connID)
	return *session, true
}

// SetRoom points the session at a room, implicitly leaving any previous
// one. Returns the previous room id (0 when none).
func (r *Registry) SetRoom(connID uuid.UUID, roomID uint) uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[connID]
	if !ok {
		return 0
	}
	prev := session.RoomID
	session.RoomID = roomID
	return prev
}

// ClearRoom detaches the session from its room and returns the room it was
// in (0 when none).
func (r *Registry) ClearRoom(connID uuid.UUID) uint {
	return r.SetRoom(connID, 0)
}

func (r *Registry) Get(connID uuid.UUID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// SessionsInRoom returns the connection ids currently in the room. A linear
// scan over all sessions is fine at this scale.
func (r *Registry) SessionsInRoom(roomID uint) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var conns []uuid.UUID
	for id, session := range r.sessions {
		if session.RoomID == roomID && roomID != 0 {
			conns = append(conns, id)
		}
	}
	return conns
}
