package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thereayou/codecollab/internal/models"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverRedis    = "redis"
)

// RoomFields is a partial update of a room's editor settings. Nil fields are left untouched.
type RoomFields struct {
	Code     *string
	Language *string
	Theme    *string
}

func (f RoomFields) empty() bool {
	return f.Code == nil && f.Language == nil && f.Theme == nil
}

// RoomStore is a document store of rooms keyed by room id.
// Implementations give no isolation between concurrent read-modify-write cycles.
type RoomStore interface {
	FindRoom(ctx context.Context, roomID string) (*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	// SaveRoom writes the roster and chat log of room. Code, language and theme
	// are left as stored; they change only through UpdateRoom.
	SaveRoom(ctx context.Context, room *models.Room) error
	UpdateRoom(ctx context.Context, roomID string, fields RoomFields) error
	Ping(ctx context.Context) error
	Close() error
}

type Options struct {
	Driver        string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	RedisURL      string
	Logger        *slog.Logger
}

// Open connects the store selected by opts.Driver.
func Open(ctx context.Context, opts Options) (RoomStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "database", "driver", opts.Driver)

	var (
		store RoomStore
		err   error
	)
	switch opts.Driver {
	case DriverMemory:
		store = NewMemoryStore()
	case DriverPostgres:
		store, err = ConnectPostgres(opts.DatabaseURL)
	case DriverMongo:
		store, err = ConnectMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	case DriverRedis:
		store, err = ConnectRedis(ctx, opts.RedisURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("room store connected")
	return store, nil
}
