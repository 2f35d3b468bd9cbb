package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/thereayou/codecollab/internal/presence"
	ws "github.com/thereayou/codecollab/internal/websocket"
)

const eventTimeout = 10 * time.Second

// EventHandler feeds websocket frames to the coordinator and fans the
// resulting effects out through the hub.
type EventHandler struct {
	coord  *presence.Coordinator
	hub    *ws.Hub
	logger *slog.Logger
}

// NewEventHandler also registers itself as the hub's disconnect callback.
func NewEventHandler(coord *presence.Coordinator, hub *ws.Hub, logger *slog.Logger) *EventHandler {
	h := &EventHandler{
		coord:  coord,
		hub:    hub,
		logger: logger.With("component", "events"),
	}
	hub.OnDisconnect(h.HandleDisconnect)
	return h
}

func (h *EventHandler) HandleMessage(client *ws.Client, msg *ws.Envelope) error {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	eff, err := h.coord.Handle(ctx, client.ID, presence.Event{
		Name:     msg.Event,
		Data:     msg.Data,
		Identity: client.UserID,
	})
	h.apply(client, eff)
	return err
}

func (h *EventHandler) HandleDisconnect(client *ws.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	eff, err := h.coord.Disconnect(ctx, client.ID)
	if err != nil {
		h.logger.Warn("disconnect", "client", client.ID, "error", err)
	}
	h.apply(client, eff)
}

func (h *EventHandler) apply(client *ws.Client, eff presence.Effect) {
	if eff.Subscribe != "" {
		h.hub.JoinRoom(client, eff.Subscribe)
	}

	for _, b := range eff.Broadcasts {
		data, err := ws.Encode(b.Event, b.Payload)
		if err != nil {
			h.logger.Error("encode broadcast", "event", b.Event, "error", err)
			continue
		}

		switch b.Audience {
		case presence.AudienceRoom:
			h.hub.SendToRoom(b.RoomID, data)
		case presence.AudienceOthers:
			h.hub.SendToRoomExcept(b.RoomID, data, client.ID)
		case presence.AudienceSender:
			if err := h.hub.SendToClient(client, data); err != nil {
				h.logger.Debug("send to client", "client", client.ID, "event", b.Event, "error", err)
			}
		}
	}
}
