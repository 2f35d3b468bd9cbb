package main

import (
	"github.com/gin-gonic/gin"

	"github.com/thereayou/codecollab/internal/handlers"
)

type routeHandlers struct {
	ws       *handlers.WebSocketHandler
	rooms    *handlers.RoomHandler
	identity *handlers.IdentityHandler
	health   *handlers.HealthHandler
}

func APIEndpoints(r *gin.Engine, h routeHandlers, identity gin.HandlerFunc) {
	r.GET("/ws", identity, h.ws.HandleWebSocket)
	r.GET("/health", h.health.Check)

	api := r.Group("/api")
	{
		api.GET("/rooms/:roomId", h.rooms.GetRoom)
		api.GET("/rooms/:roomId/messages", h.rooms.GetRoomMessages)
		api.GET("/languages", h.rooms.GetLanguages)
		api.POST("/identity", h.identity.Issue)
	}
}
