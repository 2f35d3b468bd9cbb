package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()

	store, err := openGorm(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())))
	require.NoError(t, err)

	sqlDB, err := store.db.DB()
	require.NoError(t, err)
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGormStore(t *testing.T) {
	runRoomStoreSuite(t, newSQLiteStore(t))
}

func TestConnectPostgres_RequiresDSN(t *testing.T) {
	_, err := ConnectPostgres("")
	require.Error(t, err)
}
