package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/chatwave/chat_backend/store"
	"github.com/gin-gonic/gin"
)

type MessageController struct {
	messages *store.MessageStore
	rooms    *store.RoomStore
}

func NewMessageController(messages *store.MessageStore, rooms *store.RoomStore) *MessageController {
	return &MessageController{messages: messages, rooms: rooms}
}

type ReactionInput struct {
	Emoji string `json:"emoji" binding:"required,max=16"`
}

// AddReaction godoc
// @Summary React to a message
// @Description Appends a reaction to a message. Members of the message's room only.
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Param body body ReactionInput true "Reaction"
// @Success 201 {object} map[string]interface{} "Reaction added"
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Message not found"
// @Router /api/messages/{id}/reactions [post]
func (mc *MessageController) AddReaction(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	var input ReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := mc.messages.FindByID(messageID)
	if err != nil {
		if errors.Is(err, store.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add reaction"})
		}
		return
	}

	if !mc.requireMember(c, message.RoomID, userID) {
		return
	}

	reaction, err := mc.messages.AddReaction(messageID, userID, input.Emoji)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add reaction"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Reaction added",
		"reaction": reaction,
	})
}

// MarkRead godoc
// @Summary Mark a message as read
// @Description Records a read receipt for the authenticated user, keeping one receipt per reader
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} map[string]string "Marked read"
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Message not found"
// @Router /api/messages/{id}/read [post]
func (mc *MessageController) MarkRead(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}

	message, err := mc.messages.FindByID(messageID)
	if err != nil {
		if errors.Is(err, store.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark message read"})
		}
		return
	}

	if !mc.requireMember(c, message.RoomID, userID) {
		return
	}

	if err := mc.messages.MarkRead(messageID, userID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark message read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}

func (mc *MessageController) requireMember(c *gin.Context, roomID, userID uint) bool {
	isMember, err := mc.rooms.IsMember(roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check room membership"})
		return false
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this room"})
		return false
	}
	return true
}

func parseMessageID(c *gin.Context) (uint, bool) {
	messageID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return 0, false
	}
	return uint(messageID), true
}
