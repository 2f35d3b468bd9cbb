package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const statsInterval = 30 * time.Second

type Client struct {
	ID string
	// UserID is the identity proven at upgrade time, empty for anonymous connections.
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub

	mu   sync.RWMutex
	room string
}

// Hub tracks live connections and the room channel each one is subscribed to.
// A connection belongs to at most one room.
type Hub struct {
	clients map[string]*Client

	// Clients per room
	rooms map[string]map[string]*Client

	register   chan *Client
	unregister chan *Client

	onDisconnect func(*Client)

	mu     sync.RWMutex
	logger *slog.Logger

	// Cancelled by Stop
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With("component", "hub"),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// OnDisconnect sets the callback run after a client was unregistered.
// It runs on its own goroutine, outside the hub lock.
func (h *Hub) OnDisconnect(fn func(*Client)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDisconnect = fn
}

// Run processes registrations until Stop is called.
func (h *Hub) Run() {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.mu.RLock()
			h.logger.Debug("hub stats", "clients", len(h.clients), "rooms", len(h.rooms))
			h.mu.RUnlock()
		}
	}
}

// Stop closes every connection. Disconnect callbacks are not run for them.
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		close(client.Send)
		client.Conn.Close()
		delete(h.clients, id)
	}
	h.rooms = make(map[string]map[string]*Client)
	h.logger.Info("hub stopped")
}

func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.ctx.Done():
		return ErrHubStopped
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	h.logger.Info("client registered", "client", client.ID, "user", client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; !ok {
		h.mu.Unlock()
		return
	}

	h.removeFromRoomUnsafe(client)
	delete(h.clients, client.ID)
	close(client.Send)
	callback := h.onDisconnect
	h.mu.Unlock()

	h.logger.Info("client unregistered", "client", client.ID, "user", client.UserID)

	if callback != nil {
		go callback(client)
	}
}

// JoinRoom subscribes the client to roomID, leaving the room it was in before.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	if client.Room() == roomID {
		return
	}
	h.removeFromRoomUnsafe(client)

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][client.ID] = client

	client.mu.Lock()
	client.room = roomID
	client.mu.Unlock()

	h.logger.Debug("client joined room", "client", client.ID, "room", roomID, "size", len(h.rooms[roomID]))
}

func (h *Hub) removeFromRoomUnsafe(client *Client) {
	client.mu.Lock()
	roomID := client.room
	client.room = ""
	client.mu.Unlock()

	if room, ok := h.rooms[roomID]; ok {
		delete(room, client.ID)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// SendToRoom queues message for every client in the room.
func (h *Hub) SendToRoom(roomID string, message []byte) {
	h.SendToRoomExcept(roomID, message, "")
}

// SendToRoomExcept delivers to every client of roomID but excludeID.
func (h *Hub) SendToRoomExcept(roomID string, message []byte, excludeID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[roomID] {
		if client.ID == excludeID {
			continue
		}
		h.enqueue(client, message)
	}
}

// SendToClient delivers to a single client if it is still registered.
func (h *Hub) SendToClient(client *Client, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client.ID]; !ok {
		return ErrClientGone
	}
	if !h.enqueue(client, message) {
		return ErrClientQueueFull
	}
	return nil
}

func (h *Hub) enqueue(client *Client, message []byte) bool {
	select {
	case client.Send <- message:
		return true
	default:
		h.logger.Warn("client send channel full", "client", client.ID)
		return false
	}
}

// RoomSize returns the number of connections subscribed to roomID.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
