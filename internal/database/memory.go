package database

import (
	"context"
	"sync"
	"time"

	"github.com/thereayou/codecollab/internal/models"
)

// MemoryStore keeps rooms in process memory. Documents are copied in and out
// so callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*models.Room)}
}

func (s *MemoryStore) FindRoom(_ context.Context, roomID string) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *MemoryStore) CreateRoom(_ context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.RoomID]; ok {
		return ErrRoomExists
	}
	now := time.Now()
	room.CreatedAt, room.UpdatedAt = now, now
	s.rooms[room.RoomID] = room.Clone()
	return nil
}

func (s *MemoryStore) SaveRoom(_ context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rooms[room.RoomID]
	if !ok {
		return ErrRoomNotFound
	}
	saved := room.Clone()
	existing.Users = saved.Users
	existing.Messages = saved.Messages
	existing.UpdatedAt = time.Now()

	room.CreatedAt, room.UpdatedAt = existing.CreatedAt, existing.UpdatedAt
	return nil
}

func (s *MemoryStore) UpdateRoom(_ context.Context, roomID string, fields RoomFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	applyFields(room, fields)
	room.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func applyFields(room *models.Room, fields RoomFields) {
	if fields.Code != nil {
		room.Code = *fields.Code
	}
	if fields.Language != nil {
		room.Language = *fields.Language
	}
	if fields.Theme != nil {
		room.Theme = *fields.Theme
	}
}
