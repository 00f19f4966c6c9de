package handler

import (
	"penpal/backend/internal/api/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route of the service.
func NewRouter(h *Handler, jwtSecret string, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	if len(corsOrigins) == 0 || (len(corsOrigins) == 1 && corsOrigins[0] == "*") {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))
	r.Use(middleware.Identity(jwtSecret))

	r.GET("/ping", h.Ping)
	r.GET("/ws/chat/:room_id", h.ServeWebSocket)

	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		api.GET("/languages", h.ListLanguages)
		api.GET("/languages/:id/partners", h.ListPartners)
		api.POST("/chats", h.StartChat)
		api.GET("/chats", h.ListChats)
		api.GET("/chats/:room_id/messages", h.ChatHistory)
	}

	return r
}
