package models

import (
	"time"
)

const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
	MessageTypeFile   = "file"
)

type Message struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Content   string        `gorm:"size:1000;not null" json:"content"`
	RoomID    uint          `gorm:"index:idx_room_created" json:"room_id"`
	SenderID  uint          `gorm:"index" json:"sender_id"`
	Sender    User          `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Type      string        `gorm:"size:10;default:'text'" json:"type"`
	IsEdited  bool          `gorm:"default:false" json:"is_edited"`
	EditedAt  *time.Time    `json:"edited_at,omitempty"`
	ReplyToID *uint         `json:"reply_to_id,omitempty"`
	Reactions []Reaction    `gorm:"foreignKey:MessageID" json:"reactions,omitempty"`
	ReadBy    []ReadReceipt `gorm:"foreignKey:MessageID" json:"read_by,omitempty"`
	CreatedAt time.Time     `gorm:"index:idx_room_created" json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Reaction rows are append-only; the same user may react with the same
// emoji more than once.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID uint      `gorm:"index" json:"message_id"`
	UserID    uint      `json:"user_id"`
	Emoji     string    `gorm:"size:16;not null" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

// ReadReceipt holds at most one row per (message, reader).
type ReadReceipt struct {
	MessageID uint      `gorm:"primaryKey" json:"message_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	ReadAt    time.Time `json:"read_at"`
}
