package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/thereayou/codecollab/internal/models"
)

const (
	roomKeyPrefix   = "room:"
	redisMaxRetries = 3
)

// RedisStore keeps each room as a JSON document under room:<id>.
type RedisStore struct {
	client *redis.Client
}

func ConnectRedis(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(client), nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func roomKey(roomID string) string {
	return roomKeyPrefix + roomID
}

func (s *RedisStore) FindRoom(ctx context.Context, roomID string) (*models.Room, error) {
	data, err := s.client.Get(ctx, roomKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	var room models.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	return &room, nil
}

func (s *RedisStore) CreateRoom(ctx context.Context, room *models.Room) error {
	now := time.Now()
	room.CreatedAt, room.UpdatedAt = now, now

	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, roomKey(room.RoomID), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return ErrRoomExists
	}
	return nil
}

func (s *RedisStore) SaveRoom(ctx context.Context, room *models.Room) error {
	now := time.Now()
	err := s.modify(ctx, room.RoomID, func(stored *models.Room) {
		stored.Users = room.Users
		stored.Messages = room.Messages
		stored.UpdatedAt = now
	})
	if err == nil {
		room.UpdatedAt = now
	}
	return err
}

func (s *RedisStore) UpdateRoom(ctx context.Context, roomID string, fields RoomFields) error {
	if fields.empty() {
		return nil
	}
	return s.modify(ctx, roomID, func(stored *models.Room) {
		applyFields(stored, fields)
		stored.UpdatedAt = time.Now()
	})
}

// modify runs a read-modify-write of one document inside a WATCH transaction,
// so concurrent SaveRoom and UpdateRoom calls never drop each other's fields.
// A conflicting write is retried a few times.
func (s *RedisStore) modify(ctx context.Context, roomID string, apply func(*models.Room)) error {
	key := roomKey(roomID)
	update := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrRoomNotFound
			}
			return err
		}

		var room models.Room
		if err := json.Unmarshal(data, &room); err != nil {
			return fmt.Errorf("decode room %s: %w", roomID, err)
		}
		apply(&room)

		out, err := json.Marshal(&room)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, redis.KeepTTL)
			return nil
		})
		return err
	}

	for i := 0; i < redisMaxRetries; i++ {
		err := s.client.Watch(ctx, update, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update room %s: %w", roomID, redis.TxFailedErr)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
