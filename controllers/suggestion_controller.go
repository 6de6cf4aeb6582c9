package controllers

import (
	"errors"
	"net/http"

	"github.com/chatwave/chat_backend/store"
	"github.com/chatwave/chat_backend/suggest"
	"github.com/gin-gonic/gin"
)

// suggestionContext is how many recent messages feed the generator.
const suggestionContext = 10

type SuggestionController struct {
	rooms    *store.RoomStore
	messages *store.MessageStore
}

func NewSuggestionController(rooms *store.RoomStore, messages *store.MessageStore) *SuggestionController {
	return &SuggestionController{rooms: rooms, messages: messages}
}

type RecommendationInput struct {
	RoomID uint `json:"room_id" binding:"required"`
}

// Recommendations godoc
// @Summary Get suggested replies for a room
// @Description Returns up to three heuristic reply suggestions based on the room's recent messages. Members only.
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecommendationInput true "Room"
// @Success 200 {object} map[string][]string "Suggestions"
// @Failure 400 {object} map[string]string "Room ID is required"
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/ai/recommendations [post]
func (sc *SuggestionController) Recommendations(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input RecommendationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room ID is required"})
		return
	}

	if _, err := sc.rooms.FindByID(input.RoomID); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recommendations"})
		}
		return
	}

	isMember, err := sc.rooms.IsMember(input.RoomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recommendations"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	recent, err := sc.messages.Recent(input.RoomID, suggestionContext)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recommendations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": suggest.Generate(recent, userID),
	})
}
