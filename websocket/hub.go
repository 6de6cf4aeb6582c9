package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Hub routes events to the connections a room's sessions map to. Delivery
// is best-effort: a client whose send buffer is full is dropped and cleaned
// up by the normal disconnect path.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uuid.UUID]*Client
	registry *Registry
}

func NewHub(registry *Registry) *Hub {
	return &Hub{
		clients:  make(map[uuid.UUID]*Client),
		registry: registry,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.send)
	}
}

// ToRoom delivers the event to every connection currently in the room,
// sender included.
func (h *Hub) ToRoom(roomID uint, event Event) {
	h.deliver(roomID, uuid.Nil, event)
}

// ToRoomExcept delivers the event to every connection in the room except
// one, so an actor does not see an echo of its own notice.
func (h *Hub) ToRoomExcept(roomID uint, exclude uuid.UUID, event Event) {
	h.deliver(roomID, exclude, event)
}

func (h *Hub) deliver(roomID uint, exclude uuid.UUID, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("error marshaling %s event: %v", event.Type, err)
		return
	}

	targets := h.registry.SessionsInRoom(roomID)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, connID := range targets {
		if connID == exclude {
			continue
		}
		client, ok := h.clients[connID]
		if !ok {
			continue
		}
		select {
		case client.send <- data:
		default:
			delete(h.clients, connID)
			close(client.send)
		}
	}
}

// Send queues the event for a single connection.
func (h *Hub) Send(connID uuid.UUID, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("error marshaling %s event: %v", event.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		delete(h.clients, connID)
		close(client.send)
	}
}
