package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/codecollab/internal/models"
)

func newTestRoom(roomID string) *models.Room {
	now := time.Now()
	return models.NewRoom(roomID, "// starter",
		models.NewParticipant("u1", "Alice", "conn-1"),
		models.NewSystemMessage("Alice joined the room", now))
}

func strPtr(s string) *string { return &s }

// runRoomStoreSuite exercises the behaviour every RoomStore driver must share.
func runRoomStoreSuite(t *testing.T, store RoomStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("find missing room", func(t *testing.T) {
		_, err := store.FindRoom(ctx, "missing")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("create and find", func(t *testing.T) {
		room := newTestRoom("create-find")
		require.NoError(t, store.CreateRoom(ctx, room))

		got, err := store.FindRoom(ctx, "create-find")
		require.NoError(t, err)
		assert.Equal(t, "create-find", got.RoomID)
		assert.Equal(t, "// starter", got.Code)
		assert.Equal(t, models.DefaultLanguage, got.Language)
		assert.Equal(t, models.DefaultTheme, got.Theme)
		require.Len(t, got.Users, 1)
		assert.Equal(t, "u1", got.Users[0].UserID)
		assert.True(t, got.Users[0].ConnectedTo("conn-1"))
		assert.Nil(t, got.Users[0].LastSeen)
		require.Len(t, got.Messages, 1)
		assert.Equal(t, models.MessageTypeSystem, got.Messages[0].Type)
	})

	t.Run("create duplicate", func(t *testing.T) {
		require.NoError(t, store.CreateRoom(ctx, newTestRoom("dup")))
		assert.ErrorIs(t, store.CreateRoom(ctx, newTestRoom("dup")), ErrRoomExists)
	})

	t.Run("save writes roster and messages", func(t *testing.T) {
		require.NoError(t, store.CreateRoom(ctx, newTestRoom("save")))

		room, err := store.FindRoom(ctx, "save")
		require.NoError(t, err)

		seen := time.Now().UTC().Truncate(time.Millisecond)
		room.Users[0].MarkOffline(seen)
		room.Users = append(room.Users, models.NewParticipant("u2", "Bob", "conn-2"))
		room.AppendMessage(models.NewSystemMessage("Alice left the room", seen))
		require.NoError(t, store.SaveRoom(ctx, room))

		got, err := store.FindRoom(ctx, "save")
		require.NoError(t, err)
		require.Len(t, got.Users, 2)
		assert.False(t, got.Users[0].IsOnline)
		assert.Nil(t, got.Users[0].ConnectionID)
		require.NotNil(t, got.Users[0].LastSeen)
		assert.True(t, seen.Equal(*got.Users[0].LastSeen))
		assert.Equal(t, "u2", got.Users[1].UserID)
		assert.Len(t, got.Messages, 2)
	})

	t.Run("save missing room", func(t *testing.T) {
		assert.ErrorIs(t, store.SaveRoom(ctx, newTestRoom("never-created")), ErrRoomNotFound)
	})

	t.Run("save keeps newer editor settings", func(t *testing.T) {
		require.NoError(t, store.CreateRoom(ctx, newTestRoom("stale")))

		stale, err := store.FindRoom(ctx, "stale")
		require.NoError(t, err)

		require.NoError(t, store.UpdateRoom(ctx, "stale", RoomFields{
			Code:     strPtr("print('newer')"),
			Language: strPtr("python"),
			Theme:    strPtr("light"),
		}))

		stale.AppendMessage(models.NewChatMessage("u1", "Alice", "hi", time.Now()))
		require.NoError(t, store.SaveRoom(ctx, stale))

		got, err := store.FindRoom(ctx, "stale")
		require.NoError(t, err)
		assert.Equal(t, "print('newer')", got.Code)
		assert.Equal(t, "python", got.Language)
		assert.Equal(t, "light", got.Theme)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "hi", got.Messages[1].Message)
	})

	t.Run("partial update", func(t *testing.T) {
		require.NoError(t, store.CreateRoom(ctx, newTestRoom("update")))

		require.NoError(t, store.UpdateRoom(ctx, "update", RoomFields{Code: strPtr("x = 1")}))
		require.NoError(t, store.UpdateRoom(ctx, "update", RoomFields{Language: strPtr("python"), Theme: strPtr("light")}))

		got, err := store.FindRoom(ctx, "update")
		require.NoError(t, err)
		assert.Equal(t, "x = 1", got.Code)
		assert.Equal(t, "python", got.Language)
		assert.Equal(t, "light", got.Theme)
		assert.Len(t, got.Users, 1)
		assert.Len(t, got.Messages, 1)
	})

	t.Run("partial update missing room", func(t *testing.T) {
		err := store.UpdateRoom(ctx, "missing", RoomFields{Code: strPtr("x")})
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	runRoomStoreSuite(t, NewMemoryStore())
}

func TestMemoryStore_IsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	room := newTestRoom("iso")
	require.NoError(t, store.CreateRoom(ctx, room))
	room.Code = "mutated after create"

	got, err := store.FindRoom(ctx, "iso")
	require.NoError(t, err)
	got.Users[0].MarkOffline(time.Now())

	again, err := store.FindRoom(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, "// starter", again.Code)
	assert.True(t, again.Users[0].IsOnline)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "cassandra"})
	assert.Error(t, err)
}

func TestOpen_Memory(t *testing.T) {
	store, err := Open(context.Background(), Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	assert.NoError(t, store.Close())
}
