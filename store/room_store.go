package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/chatwave/chat_backend/access"
	"github.com/chatwave/chat_backend/models"
	"gorm.io/gorm"
)

// keyRetries bounds how often room creation regenerates a colliding
// access key before giving up.
const keyRetries = 3

type RoomStore struct {
	db *gorm.DB

	mu        sync.Mutex
	joinLocks map[uint]*sync.Mutex
}

func NewRoomStore(db *gorm.DB) *RoomStore {
	return &RoomStore{db: db, joinLocks: make(map[uint]*sync.Mutex)}
}

// joinLock returns the mutex serializing membership adds for one room.
func (s *RoomStore) joinLock(roomID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.joinLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		s.joinLocks[roomID] = lock
	}
	return lock
}

// Create persists a new room with the creator as its first member. Room
// names are unique case-insensitively. Private rooms get a generated access
// key; a key colliding with an existing room is regenerated.
func (s *RoomStore) Create(name, description string, creatorID uint, isPrivate bool, tags []string, keyExpiresAt *time.Time) (*models.Room, error) {
	var count int64
	if err := s.db.Model(&models.Room{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateName
	}

	room := &models.Room{
		Name:         name,
		Description:  description,
		CreatedBy:    creatorID,
		IsPrivate:    isPrivate,
		MaxMembers:   models.DefaultMaxMembers,
		Tags:         tags,
		LastActivity: time.Now(),
	}
	if isPrivate {
		room.KeyExpiresAt = keyExpiresAt
	}

	var err error
	for attempt := 0; attempt < keyRetries; attempt++ {
		if isPrivate {
			key, keyErr := access.GenerateAccessKey()
			if keyErr != nil {
				return nil, keyErr
			}
			room.AccessKey = &key
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(room).Error; err != nil {
				return err
			}
			member := models.RoomMember{
				RoomID:   room.ID,
				UserID:   creatorID,
				JoinedAt: time.Now(),
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
			room.Members = []models.RoomMember{member}
			return nil
		})
		if err == nil {
			return room, nil
		}
		if !isPrivate || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		room.ID = 0
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrDuplicateName
	}
	return nil, err
}

// FindPublic returns non-private rooms matching the search term in name,
// description or tags (case-insensitive substring), most recently active
// first.
func (s *RoomStore) FindPublic(search string, page, pageSize int) ([]models.Room, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	query := s.db.Model(&models.Room{}).Where("is_private = ?", false)
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rooms []models.Room
	err := query.
		Order("last_activity DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Preload("Members").
		Find(&rooms).Error
	if err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

func (s *RoomStore) FindByID(id uint) (*models.Room, error) {
	var room models.Room
	err := s.db.Preload("Members").Preload("Members.User").First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByAccessKey is a pure lookup; callers are responsible for checking
// key expiry before treating the room as joinable.
func (s *RoomStore) FindByAccessKey(key string) (*models.Room, error) {
	var room models.Room
	err := s.db.Preload("Members").Where("access_key = ?", key).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// AddMember adds the user to the room's membership. Membership is a set:
// adding an existing member fails with ErrAlreadyMember. Adds to the same
// room are serialized here, so the capacity check always sees the latest
// count no matter which surface the join came in on.
func (s *RoomStore) AddMember(room *models.Room, userID uint) error {
	lock := s.joinLock(room.ID)
	lock.Lock()
	defer lock.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var members []models.RoomMember
		if err := tx.Where("room_id = ?", room.ID).Find(&members).Error; err != nil {
			return err
		}
		for _, m := range members {
			if m.UserID == userID {
				return ErrAlreadyMember
			}
		}
		if len(members) >= room.MaxMembers {
			return ErrRoomFull
		}

		member := models.RoomMember{
			RoomID:   room.ID,
			UserID:   userID,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMember
			}
			return err
		}
		room.Members = append(members, member)
		return nil
	})
}

// RemoveMember drops the user's membership row. Removing a non-member is a
// no-op.
func (s *RoomStore) RemoveMember(room *models.Room, userID uint) error {
	err := s.db.
		Where("room_id = ? AND user_id = ?", room.ID, userID).
		Delete(&models.RoomMember{}).Error
	if err != nil {
		return err
	}
	kept := room.Members[:0]
	for _, m := range room.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	room.Members = kept
	return nil
}

// TouchActivity bumps the room's last-activity timestamp. Called on join
// and on every message sent in the room.
func (s *RoomStore) TouchActivity(room *models.Room) error {
	if err := s.TouchActivityByID(room.ID); err != nil {
		return err
	}
	room.LastActivity = time.Now()
	return nil
}

func (s *RoomStore) TouchActivityByID(roomID uint) error {
	return s.db.Model(&models.Room{}).
		Where("id = ?", roomID).
		Update("last_activity", time.Now()).Error
}

func (s *RoomStore) IsMember(roomID, userID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}
