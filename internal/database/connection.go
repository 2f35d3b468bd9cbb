package database

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/thereayou/codecollab/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectPostgres opens the gorm store on dsn and migrates the rooms table.
func ConnectPostgres(dsn string) (*GormStore, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	return openGorm(postgres.Open(dsn))
}

func openGorm(dialector gorm.Dialector) (*GormStore, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.Room{}); err != nil {
		return nil, err
	}

	return NewGormStore(db), nil
}
