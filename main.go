package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/chatwave/chat_backend/controllers"
	"github.com/chatwave/chat_backend/database"
	"github.com/chatwave/chat_backend/docs"
	"github.com/chatwave/chat_backend/middleware"
	"github.com/chatwave/chat_backend/store"
	"github.com/chatwave/chat_backend/websocket"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           ChatWave API
// @version         1.0
// @description     API Server for the ChatWave chat service
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize database
	database.Connect()
	database.Migrate()

	// Set up Swagger info
	docs.SwaggerInfo.Title = "ChatWave API"
	docs.SwaggerInfo.Description = "API Server for the ChatWave chat service"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + os.Getenv("PORT")
	if docs.SwaggerInfo.Host == "localhost:" {
		docs.SwaggerInfo.Host = "localhost:8080"
	}
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Schemes = []string{"http"}

	// Stores
	roomStore := store.NewRoomStore(database.DB)
	messageStore := store.NewMessageStore(database.DB)

	// Real-time core
	registry := websocket.NewRegistry()
	hub := websocket.NewHub(registry)
	coordinator := websocket.NewCoordinator(registry, hub, roomStore, messageStore)
	wsHandler := websocket.NewHandler(hub, coordinator, database.DB)

	// Controllers
	authController := controllers.NewAuthController(database.DB)
	roomController := controllers.NewRoomController(roomStore, messageStore)
	messageController := controllers.NewMessageController(messageStore, roomStore)
	suggestionController := controllers.NewSuggestionController(roomStore, messageStore)

	// Set up router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Server is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Authentication routes
	auth := router.Group("/api")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// Public room browsing
	router.GET("/api/rooms", roomController.GetRooms)

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		// Room routes
		api.POST("/rooms", roomController.CreateRoom)
		api.GET("/rooms/:id", roomController.GetRoom)
		api.POST("/rooms/:id/join", roomController.JoinRoom)
		api.POST("/rooms/:id/leave", roomController.LeaveRoom)
		api.POST("/rooms/join-by-key", roomController.JoinByKey)
		api.GET("/rooms/:id/messages", roomController.GetRoomMessages)

		// Message routes
		api.POST("/messages/:id/reactions", messageController.AddReaction)
		api.POST("/messages/:id/read", messageController.MarkRead)

		// AI suggestion route
		api.POST("/ai/recommendations", suggestionController.Recommendations)
	}

	// WebSocket route
	router.GET("/ws", wsHandler.HandleConnection)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server running on port %s", port)
	log.Printf("Swagger documentation available at http://localhost:%s/swagger/index.html", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
