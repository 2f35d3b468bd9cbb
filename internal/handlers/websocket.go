package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thereayou/codecollab/internal/middleware"
	ws "github.com/thereayou/codecollab/internal/websocket"
)

// WebSocketHandler upgrades HTTP requests and attaches clients to the hub.
type WebSocketHandler struct {
	hub      *ws.Hub
	events   *EventHandler
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewWebSocketHandler(hub *ws.Hub, events *EventHandler, origins middleware.OriginChecker, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		events: events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.CheckOrigin,
		},
		logger: logger.With("component", "ws"),
	}
}

// HandleWebSocket upgrades the connection and starts the client pumps.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", "origin", c.GetHeader("Origin"), "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn, middleware.UserID(c))
	if err := h.hub.Register(client); err != nil {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(h.events)
}
