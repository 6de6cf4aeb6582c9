package websocket

// Event is the envelope for every frame exchanged over a connection.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client-originated event types.
const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventSendMessage = "send-message"
	EventTyping      = "typing"
)

// Server-originated event types.
const (
	EventRoomJoined = "room-joined"
	EventNewMessage = "new-message"
	EventUserJoined = "user-joined"
	EventUserLeft   = "user-left"
	EventUserTyping = "user-typing"
	EventError      = "error"
)

type JoinRoomPayload struct {
	RoomID    uint   `json:"room_id"`
	AccessKey string `json:"access_key,omitempty"`
}

type SendMessagePayload struct {
	Content string `json:"content"`
}

type TypingPayload struct {
	IsTyping bool `json:"is_typing"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
