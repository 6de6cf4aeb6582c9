package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/chatwave/chat_backend/access"
	"github.com/chatwave/chat_backend/store"
	"github.com/gin-gonic/gin"
)

type RoomController struct {
	rooms    *store.RoomStore
	messages *store.MessageStore
}

func NewRoomController(rooms *store.RoomStore, messages *store.MessageStore) *RoomController {
	return &RoomController{rooms: rooms, messages: messages}
}

type CreateRoomInput struct {
	Name         string     `json:"name" binding:"required,min=3,max=50" example:"general"`
	Description  string     `json:"description" binding:"max=200" example:"General discussion"`
	IsPrivate    bool       `json:"is_private"`
	Tags         []string   `json:"tags"`
	KeyExpiresAt *time.Time `json:"key_expires_at"`
}

type JoinRoomInput struct {
	AccessKey string `json:"access_key"`
}

type JoinByKeyInput struct {
	AccessKey string `json:"access_key" binding:"required"`
}

// GetRooms godoc
// @Summary List public rooms
// @Description Returns public rooms matching an optional search term, most recently active first
// @Tags rooms
// @Accept json
// @Produce json
// @Param search query string false "Substring matched against name, description and tags"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} map[string]interface{} "List of rooms"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms [get]
func (rc *RoomController) GetRooms(c *gin.Context) {
	page, limit := paging(c, 10)
	search := c.Query("search")

	rooms, total, err := rc.rooms.FindPublic(search, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rooms"})
		return
	}

	response := make([]gin.H, 0, len(rooms))
	for i := range rooms {
		response = append(response, gin.H{
			"room":         rooms[i],
			"member_count": rooms[i].MemberCount(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms": response,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// GetRoom godoc
// @Summary Get details of a specific room
// @Description Returns a room with its member list
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} map[string]interface{} "Room details"
// @Failure 400 {object} map[string]string "Invalid room ID"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{id} [get]
func (rc *RoomController) GetRoom(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	room, err := rc.rooms.FindByID(roomID)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch room"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":         room,
		"member_count": room.MemberCount(),
	})
}

// CreateRoom godoc
// @Summary Create a new chat room
// @Description Creates a room with the authenticated user as its first member. Private rooms get a generated access key, returned once in this response.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param room body CreateRoomInput true "Room Creation"
// @Success 201 {object} map[string]interface{} "Room created successfully"
// @Failure 400 {object} map[string]string "Invalid input or duplicate name"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms [post]
func (rc *RoomController) CreateRoom(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := rc.rooms.Create(input.Name, input.Description, userID, input.IsPrivate, input.Tags, input.KeyExpiresAt)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Room name already exists"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		}
		return
	}

	response := gin.H{
		"message":      "Room created successfully",
		"room":         room,
		"member_count": room.MemberCount(),
	}
	if room.AccessKey != nil {
		// the key is only ever exposed here, at creation time
		response["access_key"] = *room.AccessKey
	}

	c.JSON(http.StatusCreated, response)
}

// JoinRoom godoc
// @Summary Join a room by id
// @Description Adds the authenticated user to the room's membership. Private rooms require a valid, unexpired access key.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param body body JoinRoomInput false "Access key for private rooms"
// @Success 200 {object} map[string]string "Joined"
// @Failure 400 {object} map[string]string "Already a member, room full, or missing key"
// @Failure 403 {object} map[string]string "Invalid or expired access key"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{id}/join [post]
func (rc *RoomController) JoinRoom(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	var input JoinRoomInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	room, err := rc.rooms.FindByID(roomID)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
		}
		return
	}

	if err := access.ValidateJoin(room, input.AccessKey); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, access.ErrMissingKey) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if err := rc.rooms.AddMember(room, userID); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyMember):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You are already a member of this room"})
		case errors.Is(err, store.ErrRoomFull):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Room is at maximum capacity"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
		}
		return
	}

	rc.rooms.TouchActivity(room)

	c.JSON(http.StatusOK, gin.H{"message": "Successfully joined the room"})
}

// LeaveRoom godoc
// @Summary Leave a room
// @Description Removes the authenticated user from the room's membership
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} map[string]string "Left"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{id}/leave [post]
func (rc *RoomController) LeaveRoom(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	room, err := rc.rooms.FindByID(roomID)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave room"})
		}
		return
	}

	if err := rc.rooms.RemoveMember(room, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully left the room"})
}

// JoinByKey godoc
// @Summary Join a private room by access key
// @Description Looks up the room owning the key, verifies expiry and adds the user as a member. Idempotent for existing members.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body JoinByKeyInput true "Access key"
// @Success 200 {object} map[string]interface{} "Joined"
// @Failure 400 {object} map[string]string "Missing key or room full"
// @Failure 403 {object} map[string]string "Access key has expired"
// @Failure 404 {object} map[string]string "Invalid access key"
// @Router /api/rooms/join-by-key [post]
func (rc *RoomController) JoinByKey(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input JoinByKeyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Access key is required"})
		return
	}

	room, err := rc.rooms.FindByAccessKey(input.AccessKey)
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid access key"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
		}
		return
	}

	// the lookup does not check expiry, so do it here
	if room.KeyExpiresAt != nil && room.KeyExpiresAt.Before(time.Now()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access key has expired"})
		return
	}

	if !room.HasMember(userID) {
		if err := rc.rooms.AddMember(room, userID); err != nil && !errors.Is(err, store.ErrAlreadyMember) {
			if errors.Is(err, store.ErrRoomFull) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Room is at maximum capacity"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
			}
			return
		}
		rc.rooms.TouchActivity(room)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Successfully joined room",
		"room":         room,
		"member_count": room.MemberCount(),
	})
}

// GetRoomMessages godoc
// @Summary Get paginated room message history
// @Description Returns one page of the room's messages, oldest first within the page. Members only.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} map[string]interface{} "Messages"
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{id}/messages [get]
func (rc *RoomController) GetRoomMessages(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	if _, err := rc.rooms.FindByID(roomID); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		}
		return
	}

	isMember, err := rc.rooms.IsMember(roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this room"})
		return
	}

	page, limit := paging(c, 50)

	messages, total, err := rc.messages.Page(roomID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// paging reads the page and limit query parameters, clamping nonsense
// values so the store query and the response envelope agree.
func paging(c *gin.Context, defaultLimit int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

func parseRoomID(c *gin.Context) (uint, bool) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return 0, false
	}
	return uint(roomID), true
}
