package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"github.com/thereayou/codecollab/internal/database"
	"github.com/thereayou/codecollab/internal/models"
	"github.com/thereayou/codecollab/internal/session"
	"github.com/thereayou/codecollab/internal/snippet"
	ws "github.com/thereayou/codecollab/internal/websocket"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 100

	// Bounds a shared room load once it is detached from the caller.
	loadTimeout = 5 * time.Second
)

type RoomReader interface {
	FindRoom(ctx context.Context, roomID string) (*models.Room, error)
}

// RoomHandler serves read-only views of rooms. Concurrent reads of the same
// room share one store round trip.
type RoomHandler struct {
	rooms    RoomReader
	sessions *session.Registry
	hub      *ws.Hub
	group    singleflight.Group
	logger   *slog.Logger
}

func NewRoomHandler(rooms RoomReader, sessions *session.Registry, hub *ws.Hub, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, sessions: sessions, hub: hub, logger: logger}
}

// load returns a room shared between concurrent callers; it must not be mutated.
// The store call outlives the caller that started it, so one client hanging up
// does not fail the others waiting on the same key.
func (h *RoomHandler) load(ctx context.Context, roomID string) (*models.Room, error) {
	ch := h.group.DoChan(roomID, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return h.rooms.FindRoom(loadCtx, roomID)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Room), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *RoomHandler) loadOrAbort(c *gin.Context) (*models.Room, bool) {
	roomID := c.Param("roomId")
	room, err := h.load(c.Request.Context(), roomID)
	switch {
	case errors.Is(err, database.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return nil, false
	case err != nil:
		h.logger.Error("load room", "room", roomID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get room"})
		return nil, false
	}
	return room, true
}

// GetRoom returns a snapshot of the room.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, ok := h.loadOrAbort(c)
	if !ok {
		return
	}

	response := gin.H{
		"roomId":       room.RoomID,
		"code":         room.Code,
		"language":     room.Language,
		"theme":        room.Theme,
		"users":        room.Users,
		"host":         room.Host(),
		"online_count": room.OnlineCount(),
		"sessions":     h.sessions.InRoom(room.RoomID),
		"connections":  h.hub.RoomSize(room.RoomID),
		"created_at":   room.CreatedAt,
		"updated_at":   room.UpdatedAt,
	}

	c.JSON(http.StatusOK, response)
}

// GetRoomMessages returns a page of the chat log, newest last.
func (h *RoomHandler) GetRoomMessages(c *gin.Context) {
	limit := defaultMessageLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxMessageLimit {
			limit = parsed
		}
	}

	var before time.Time
	if b := c.Query("before"); b != "" {
		parsed, err := time.Parse(time.RFC3339Nano, b)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before timestamp"})
			return
		}
		before = parsed
	}

	room, ok := h.loadOrAbort(c)
	if !ok {
		return
	}

	messages, hasMore := tail(room.Messages, before, limit)
	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"has_more": hasMore,
	})
}

// tail returns the last limit messages older than before (all when before is zero).
func tail(msgs []models.Message, before time.Time, limit int) ([]models.Message, bool) {
	end := len(msgs)
	if !before.IsZero() {
		end = 0
		for end < len(msgs) && msgs[end].Timestamp.Before(before) {
			end++
		}
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	out := make([]models.Message, end-start)
	copy(out, msgs[start:end])
	return out, start > 0
}

func (h *RoomHandler) GetLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"languages": snippet.Languages(),
		"default":   models.DefaultLanguage,
	})
}
