package websocket

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/chatwave/chat_backend/access"
	"github.com/chatwave/chat_backend/models"
	"github.com/chatwave/chat_backend/store"
)

// snapshotMessages is how much history a joining connection receives.
const snapshotMessages = 50

// Coordinator drives each connection through its session lifecycle:
// authenticated on connect, at most one room at a time, gone on
// disconnect. All membership mutation and message appends for one room run
// under that room's lock; different rooms proceed in parallel.
type Coordinator struct {
	registry *Registry
	hub      *Hub
	rooms    *store.RoomStore
	messages *store.MessageStore

	mu        sync.Mutex
	roomLocks map[uint]*sync.Mutex
}

func NewCoordinator(registry *Registry, hub *Hub, rooms *store.RoomStore, messages *store.MessageStore) *Coordinator {
	return &Coordinator{
		registry:  registry,
		hub:       hub,
		rooms:     rooms,
		messages:  messages,
		roomLocks: make(map[uint]*sync.Mutex),
	}
}

func (co *Coordinator) roomLock(roomID uint) *sync.Mutex {
	co.mu.Lock()
	defer co.mu.Unlock()
	lock, ok := co.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		co.roomLocks[roomID] = lock
	}
	return lock
}

// Connect registers an authenticated connection with no room yet.
func (co *Coordinator) Connect(c *Client) {
	co.registry.OnConnect(c.ID, c.userID, c.username)
	co.hub.Register(c)
}

type RoomSummary struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Members     []MemberSummary `json:"members"`
}

type MemberSummary struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	IsOnline bool   `json:"is_online"`
}

type RoomJoinedPayload struct {
	RoomID   uint             `json:"room_id"`
	Room     RoomSummary      `json:"room"`
	Messages []models.Message `json:"messages"`
}

type PresencePayload struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type TypingNotice struct {
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

// Join moves the connection into a room. Validation happens before any
// mutation, so a denied join leaves both the room store and the registry
// untouched.
func (co *Coordinator) Join(c *Client, roomID uint, accessKey string) {
	lock := co.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := co.rooms.FindByID(roomID)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			c.SendError("Room not found")
		} else {
			log.Printf("join room %d: %v", roomID, err)
			c.SendError("Failed to join room")
		}
		return
	}

	if !room.HasMember(c.userID) {
		if err := access.ValidateJoin(room, accessKey); err != nil {
			c.SendError(err.Error())
			return
		}
		switch err := co.rooms.AddMember(room, c.userID); {
		case err == nil, errors.Is(err, store.ErrAlreadyMember):
			// ErrAlreadyMember means we lost a race with a REST join;
			// either way the membership now exists.
		case errors.Is(err, store.ErrRoomFull):
			c.SendError(store.ErrRoomFull.Error())
			return
		default:
			log.Printf("add member to room %d: %v", roomID, err)
			c.SendError("Failed to join room")
			return
		}
		// the fresh membership row lacks user data for the snapshot
		if room, err = co.rooms.FindByID(roomID); err != nil {
			log.Printf("reload room %d: %v", roomID, err)
			c.SendError("Failed to join room")
			return
		}
	}

	prev := co.registry.SetRoom(c.ID, roomID)
	if prev != 0 && prev != roomID {
		co.notifyLeft(prev, c)
	}

	if err := co.rooms.TouchActivity(room); err != nil {
		log.Printf("touch activity for room %d: %v", roomID, err)
	}

	messages, err := co.messages.Recent(roomID, snapshotMessages)
	if err != nil {
		log.Printf("recent messages for room %d: %v", roomID, err)
		messages = nil
	}

	co.hub.ToRoomExcept(roomID, c.ID, Event{
		Type: EventUserJoined,
		Payload: PresencePayload{
			Username:  c.username,
			Message:   c.username + " joined the room",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})

	members := make([]MemberSummary, 0, len(room.Members))
	for _, m := range room.Members {
		members = append(members, MemberSummary{
			Username: m.User.Username,
			Avatar:   m.User.Avatar,
			IsOnline: m.User.IsOnline,
		})
	}
	co.hub.Send(c.ID, Event{
		Type: EventRoomJoined,
		Payload: RoomJoinedPayload{
			RoomID: roomID,
			Room: RoomSummary{
				Name:        room.Name,
				Description: room.Description,
				Members:     members,
			},
			Messages: messages,
		},
	})

	log.Printf("%s joined room %s", c.username, room.Name)
}

// Leave detaches the session from its room. Stored membership is not
// touched; leaving the socket session is distinct from leaving the room,
// which the REST surface offers separately.
func (co *Coordinator) Leave(c *Client) {
	roomID := co.registry.ClearRoom(c.ID)
	if roomID == 0 {
		return
	}
	co.notifyLeft(roomID, c)
}

// Send appends the message durably, then broadcasts it to every session in
// the room including the sender, so all recipients share one code path and
// one ordering.
func (co *Coordinator) Send(c *Client, content string) {
	session, ok := co.registry.Get(c.ID)
	if !ok || session.RoomID == 0 {
		c.SendError(store.ErrNotInRoom.Error())
		return
	}

	lock := co.roomLock(session.RoomID)
	lock.Lock()
	defer lock.Unlock()

	message, err := co.messages.Append(session.RoomID, c.userID, content, models.MessageTypeText)
	if err != nil {
		if errors.Is(err, store.ErrInvalidContent) {
			c.SendError(store.ErrInvalidContent.Error())
		} else {
			log.Printf("append message to room %d: %v", session.RoomID, err)
			c.SendError("Failed to send message")
		}
		return
	}

	if err := co.rooms.TouchActivityByID(session.RoomID); err != nil {
		log.Printf("touch activity for room %d: %v", session.RoomID, err)
	}

	co.hub.ToRoom(session.RoomID, Event{Type: EventNewMessage, Payload: message})
}

// Typing relays a typing notice to the other sessions in the room.
func (co *Coordinator) Typing(c *Client, isTyping bool) {
	session, ok := co.registry.Get(c.ID)
	if !ok || session.RoomID == 0 {
		return
	}
	co.hub.ToRoomExcept(session.RoomID, c.ID, Event{
		Type:    EventUserTyping,
		Payload: TypingNotice{Username: c.username, IsTyping: isTyping},
	})
}

// Disconnect removes the session and tells the remaining room members. The
// identity's online flag is the transport handler's job, not ours.
func (co *Coordinator) Disconnect(c *Client) {
	session, ok := co.registry.OnDisconnect(c.ID)
	if !ok || session.RoomID == 0 {
		return
	}
	co.notifyLeft(session.RoomID, c)
}

func (co *Coordinator) notifyLeft(roomID uint, c *Client) {
	co.hub.ToRoomExcept(roomID, c.ID, Event{
		Type: EventUserLeft,
		Payload: PresencePayload{
			Username:  c.username,
			Message:   c.username + " left the room",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}
