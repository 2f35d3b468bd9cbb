package database

import (
	"context"
	"errors"

	"github.com/thereayou/codecollab/internal/models"
	"gorm.io/gorm"
)

// GormStore keeps one row per room. Users and messages live in JSON columns so
// the row stays a single document, like the other stores.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	if err := s.db.WithContext(ctx).First(&room, "room_id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (s *GormStore) CreateRoom(ctx context.Context, room *models.Room) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Room{}).Where("room_id = ?", room.RoomID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrRoomExists
	}
	return s.db.WithContext(ctx).Create(room).Error
}

func (s *GormStore) SaveRoom(ctx context.Context, room *models.Room) error {
	res := s.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("room_id = ?", room.RoomID).
		Select("users", "messages", "updated_at").
		Updates(room)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (s *GormStore) UpdateRoom(ctx context.Context, roomID string, fields RoomFields) error {
	if fields.empty() {
		return nil
	}

	updates := make(map[string]interface{}, 3)
	if fields.Code != nil {
		updates["code"] = *fields.Code
	}
	if fields.Language != nil {
		updates["language"] = *fields.Language
	}
	if fields.Theme != nil {
		updates["theme"] = *fields.Theme
	}

	res := s.db.WithContext(ctx).Model(&models.Room{}).Where("room_id = ?", roomID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
