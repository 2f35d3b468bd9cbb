package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/codecollab/internal/session"
	ws "github.com/thereayou/codecollab/internal/websocket"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store    Pinger
	sessions *session.Registry
	hub      *ws.Hub
}

func NewHealthHandler(store Pinger, sessions *session.Registry, hub *ws.Hub) *HealthHandler {
	return &HealthHandler{store: store, sessions: sessions, hub: hub}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"sessions":    h.sessions.Len(),
		"connections": h.hub.ClientCount(),
	})
}
