package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 10000
)

// Client represents a connected websocket client
type Client struct {
	ID          uuid.UUID
	hub         *Hub
	coordinator *Coordinator
	conn        *websocket.Conn
	send        chan []byte
	userID      uint
	username    string

	// onClose runs after the connection is torn down; the transport
	// handler uses it to flip the identity's online flag.
	onClose func()
}

func NewClient(hub *Hub, coordinator *Coordinator, conn *websocket.Conn, userID uint, username string) *Client {
	return &Client{
		ID:          uuid.New(),
		hub:         hub,
		coordinator: coordinator,
		conn:        conn,
		send:        make(chan []byte, 256),
		userID:      userID,
		username:    username,
	}
}

// readPump pumps events from the websocket connection into the coordinator
func (c *Client) readPump() {
	defer func() {
		c.coordinator.Disconnect(c)
		c.hub.Unregister(c)
		c.conn.Close()
		if c.onClose != nil {
			c.onClose()
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("error unmarshaling event: %v", err)
			continue
		}

		c.dispatch(event)
	}
}

// dispatch routes one inbound event to the coordinator. All context the
// coordinator needs travels as arguments; lookups that fail are reported
// back to this connection only and never tear it down.
func (c *Client) dispatch(event Event) {
	switch event.Type {
	case EventJoinRoom:
		var payload JoinRoomPayload
		if !decodePayload(c, event.Payload, &payload) {
			return
		}
		c.coordinator.Join(c, payload.RoomID, payload.AccessKey)
	case EventLeaveRoom:
		c.coordinator.Leave(c)
	case EventSendMessage:
		var payload SendMessagePayload
		if !decodePayload(c, event.Payload, &payload) {
			return
		}
		c.coordinator.Send(c, payload.Content)
	case EventTyping:
		var payload TypingPayload
		if !decodePayload(c, event.Payload, &payload) {
			return
		}
		c.coordinator.Typing(c, payload.IsTyping)
	default:
		log.Printf("unknown event type %q from user %d", event.Type, c.userID)
	}
}

// decodePayload remarshals the generic payload into its concrete type.
func decodePayload(c *Client, payload interface{}, dst interface{}) bool {
	data, err := json.Marshal(payload)
	if err == nil {
		err = json.Unmarshal(data, dst)
	}
	if err != nil {
		log.Printf("error decoding payload: %v", err)
		c.SendError("Invalid payload")
		return false
	}
	return true
}

// SendError queues an error event for this connection only.
func (c *Client) SendError(message string) {
	c.hub.Send(c.ID, Event{Type: EventError, Payload: ErrorPayload{Message: message}})
}

// writePump pumps queued events to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
