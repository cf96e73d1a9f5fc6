package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/palemoky/card-battle-arena/internal/protocol"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client)
	return store, mr
}

func TestRedisStore_SaveLoadDeleteRoom(t *testing.T) {
	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	info := protocol.RoomInfo{
		ID:         "room-1",
		Name:       "Arena",
		Status:     "waiting",
		Players:    []string{"p1"},
		MaxPlayers: 4,
		CreatedAt:  time.Now().Unix(),
		CreatorID:  "p1",
		PlayerStates: []protocol.PlayerStateInfo{
			{ID: "p1", Name: "Alice", HP: 100, Money: 1000, Cards: []string{}},
		},
	}

	// Save
	err := store.SaveRoom(ctx, info)
	assert.NoError(t, err)

	// Load
	loaded, err := store.LoadRoom(ctx, info.ID)
	assert.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Equal(t, info.ID, loaded.ID)
	assert.Equal(t, info.Players, loaded.Players)
	assert.Equal(t, 100, loaded.PlayerStates[0].HP)

	// Delete
	err = store.DeleteRoom(ctx, info.ID)
	assert.NoError(t, err)

	// Verify Delete
	loaded, err = store.LoadRoom(ctx, info.ID)
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_ChatMessages(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := store.SaveMessage(ctx, protocol.ChatMessage{
			User:      "Alice",
			Text:      fmt.Sprintf("message %d", i),
			RoomID:    "room-1",
			Timestamp: time.Now().Unix(),
		})
		assert.NoError(t, err)
	}

	msgs, err := store.LoadMessages(ctx, "room-1", 10)
	assert.NoError(t, err)
	assert.Len(t, msgs, 3)
	assert.Equal(t, "message 0", msgs[0].Text)
	assert.Equal(t, "message 2", msgs[2].Text)

	// Limit returns the most recent messages.
	msgs, err = store.LoadMessages(ctx, "room-1", 2)
	assert.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, "message 1", msgs[0].Text)

	err = store.DeleteMessages(ctx, "room-1")
	assert.NoError(t, err)
	msgs, err = store.LoadMessages(ctx, "room-1", 10)
	assert.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRedisStore_ChatHistoryTrimmed(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	for i := 0; i < chatHistoryLimit+20; i++ {
		err := store.SaveMessage(ctx, protocol.ChatMessage{
			User:   "Alice",
			Text:   fmt.Sprintf("message %d", i),
			RoomID: "room-1",
		})
		assert.NoError(t, err)
	}

	msgs, err := store.LoadMessages(ctx, "room-1", chatHistoryLimit)
	assert.NoError(t, err)
	assert.Len(t, msgs, chatHistoryLimit)
	// Oldest entries beyond the cap are dropped.
	assert.Equal(t, "message 20", msgs[0].Text)
}

func TestRedisStore_DeleteRoomRemovesChat(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	err := store.SaveRoom(ctx, protocol.RoomInfo{ID: "room-1", Name: "Arena"})
	assert.NoError(t, err)
	err = store.SaveMessage(ctx, protocol.ChatMessage{User: "Alice", Text: "hi", RoomID: "room-1"})
	assert.NoError(t, err)

	err = store.DeleteRoom(ctx, "room-1")
	assert.NoError(t, err)

	msgs, err := store.LoadMessages(ctx, "room-1", 10)
	assert.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRedisStore_Users(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	user := User{
		ID:           "u1",
		Username:     "alice",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().Unix(),
	}

	err := store.CreateUser(ctx, user)
	assert.NoError(t, err)

	// Username is unique.
	err = store.CreateUser(ctx, User{ID: "u2", Username: "alice"})
	assert.ErrorIs(t, err, ErrUserExists)

	loaded, err := store.GetUser(ctx, "alice")
	assert.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Equal(t, "u1", loaded.ID)
	assert.Equal(t, user.PasswordHash, loaded.PasswordHash)

	loaded, err = store.GetUser(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}
