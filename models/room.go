package models

import (
	"time"
)

const DefaultMaxMembers = 100

type Room struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	// unique on lower(name): "General" and "general" cannot coexist
	Name         string       `gorm:"size:50;not null;uniqueIndex:idx_rooms_lower_name,expression:lower(name)" json:"name"`
	Description  string       `gorm:"size:200" json:"description"`
	CreatedBy    uint         `json:"created_by"`
	Creator      User         `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	IsPrivate    bool         `gorm:"default:false" json:"is_private"`
	AccessKey    *string      `gorm:"size:8;uniqueIndex" json:"-"`
	KeyExpiresAt *time.Time   `json:"key_expires_at,omitempty"`
	MaxMembers   int          `gorm:"default:100" json:"max_members"`
	Tags         []string     `gorm:"serializer:json;type:text" json:"tags"`
	LastActivity time.Time    `json:"last_activity"`
	Members      []RoomMember `gorm:"foreignKey:RoomID" json:"members,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type RoomMember struct {
	RoomID   uint      `gorm:"primaryKey" json:"room_id"`
	UserID   uint      `gorm:"primaryKey" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// MemberCount is always derived from the loaded membership rows, never
// stored as a separate column.
func (r *Room) MemberCount() int {
	return len(r.Members)
}

// HasMember reports whether the user appears in the loaded membership list.
func (r *Room) HasMember(userID uint) bool {
	for _, m := range r.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
