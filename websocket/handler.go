package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/chatwave/chat_backend/models"
	"github.com/chatwave/chat_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// Handler upgrades authenticated HTTP requests to websocket sessions and
// keeps the identity's online flag in step with the connection lifecycle.
type Handler struct {
	hub         *Hub
	coordinator *Coordinator
	db          *gorm.DB
}

func NewHandler(hub *Hub, coordinator *Coordinator, db *gorm.DB) *Handler {
	return &Handler{hub: hub, coordinator: coordinator, db: db}
}

// HandleConnection handles websocket connections. The handshake carries the
// credential token as a query parameter; a missing or invalid token is
// rejected before the upgrade.
func (h *Handler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication token required"})
		return
	}

	userID, err := utils.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("error upgrading connection: %v", err)
		return
	}

	h.setOnline(user.ID, true)

	client := NewClient(h.hub, h.coordinator, conn, user.ID, user.Username)
	client.onClose = func() {
		h.setOnline(user.ID, false)
	}

	h.coordinator.Connect(client)

	log.Printf("user connected: %s (%s)", user.Username, client.ID)

	go client.writePump()
	go client.readPump()
}

func (h *Handler) setOnline(userID uint, online bool) {
	err := h.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_online": online,
			"last_seen": time.Now(),
		}).Error
	if err != nil {
		log.Printf("error updating online status for user %d: %v", userID, err)
	}
}
