package store

import (
	"errors"
	"strings"
	"time"

	"github.com/chatwave/chat_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxContentLength = 1000

type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Append persists a new message. Content is trimmed and must be between 1
// and 1000 characters afterwards. The returned message has its sender
// preloaded for broadcasting.
func (s *MessageStore) Append(roomID, senderID uint, content, msgType string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" || len([]rune(content)) > maxContentLength {
		return nil, ErrInvalidContent
	}
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	message := &models.Message{
		Content:  content,
		RoomID:   roomID,
		SenderID: senderID,
		Type:     msgType,
	}
	if err := s.db.Create(message).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("Sender").First(message, message.ID).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// Recent returns the newest limit messages in the room, oldest first.
func (s *MessageStore) Recent(roomID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Preload("Sender").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	reverse(messages)
	return messages, nil
}

// Page returns one page of the room's history, oldest first within the
// page, newest pages first, plus the total message count.
func (s *MessageStore) Page(roomID uint, page, pageSize int) ([]models.Message, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	var total int64
	if err := s.db.Model(&models.Message{}).
		Where("room_id = ?", roomID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.Message
	err := s.db.
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Preload("Sender").
		Preload("Reactions").
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	reverse(messages)
	return messages, total, nil
}

// AddReaction appends a reaction row. Reactions carry no uniqueness
// constraint, matching the message data model.
func (s *MessageStore) AddReaction(messageID, userID uint, emoji string) (*models.Reaction, error) {
	var count int64
	if err := s.db.Model(&models.Message{}).
		Where("id = ?", messageID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrMessageNotFound
	}

	reaction := &models.Reaction{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
	}
	if err := s.db.Create(reaction).Error; err != nil {
		return nil, err
	}
	return reaction, nil
}

// MarkRead records that the user has read the message, keeping at most one
// receipt per reader.
func (s *MessageStore) MarkRead(messageID, userID uint, at time.Time) error {
	var count int64
	if err := s.db.Model(&models.Message{}).
		Where("id = ?", messageID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}

	receipt := models.ReadReceipt{
		MessageID: messageID,
		UserID:    userID,
		ReadAt:    at,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"read_at"}),
	}).Create(&receipt).Error
}

func (s *MessageStore) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := s.db.Preload("Sender").First(&message, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func reverse(messages []models.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
