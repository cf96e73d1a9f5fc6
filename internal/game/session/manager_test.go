package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/card-battle-arena/internal/apperrors"
	"github.com/palemoky/card-battle-arena/internal/config"
	"github.com/palemoky/card-battle-arena/internal/game/card"
	"github.com/palemoky/card-battle-arena/internal/game/room"
	"github.com/palemoky/card-battle-arena/internal/protocol"
)

type memStore struct {
	rooms   map[string]protocol.RoomInfo
	failing bool
}

func newMemStore() *memStore {
	return &memStore{rooms: make(map[string]protocol.RoomInfo)}
}

func (s *memStore) SaveRoom(_ context.Context, info protocol.RoomInfo) error {
	if s.failing {
		return errors.New("store unavailable")
	}
	s.rooms[info.ID] = info
	return nil
}

func (s *memStore) DeleteRoom(_ context.Context, roomID string) error {
	if s.failing {
		return errors.New("store unavailable")
	}
	delete(s.rooms, roomID)
	return nil
}

type fixture struct {
	store    *memStore
	registry *room.Registry
	manager  *Manager
	room     *room.Room
}

// newFixture builds a two-player room owned by p1.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	cfg := config.Default()
	manager := NewManager(store, card.NewCatalog(), &cfg.Game)
	registry := room.NewRegistry(store, &cfg.Game, manager.Destroy)

	created, err := registry.Create(context.Background(), "Arena", room.Identity{ID: "p1", Name: "Alice"})
	require.NoError(t, err)
	_, err = registry.Join(context.Background(), created.ID, room.Identity{ID: "p2", Name: "Bob"})
	require.NoError(t, err)

	return &fixture{
		store:    store,
		registry: registry,
		manager:  manager,
		room:     registry.Get(created.ID),
	}
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	_, _, err := f.manager.Start(context.Background(), f.room, "p1")
	require.NoError(t, err)
}

func TestManager_Start(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.manager.Start(context.Background(), f.room, "p2")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Nil(t, f.manager.Get(f.room.ID))

	info, state, err := f.manager.Start(context.Background(), f.room, "p1")
	require.NoError(t, err)
	assert.Equal(t, "in_progress", info.Status)
	assert.True(t, info.GameStarted)
	assert.Equal(t, "preparing", state.Phase)
	assert.Equal(t, 1, state.Round)
	require.NotNil(t, f.manager.Get(f.room.ID))

	// Started rooms reject both re-start and new joins.
	_, _, err = f.manager.Start(context.Background(), f.room, "p1")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyStarted)
	_, err = f.registry.Join(context.Background(), f.room.ID, room.Identity{ID: "p3", Name: "Carol"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyStarted)
}

func TestManager_Start_StoreFailure(t *testing.T) {
	f := newFixture(t)

	f.store.failing = true
	_, _, err := f.manager.Start(context.Background(), f.room, "p1")
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	// Status rolled back, no session created.
	assert.Equal(t, room.StatusWaiting, f.room.Status)
	assert.Nil(t, f.manager.Get(f.room.ID))
}

func TestManager_BuyCard(t *testing.T) {
	f := newFixture(t)

	// Buying is a preparing-phase operation.
	_, err := f.manager.BuyCard(context.Background(), f.room, "p1", "warrior")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPhase)

	f.start(t)

	info, err := f.manager.BuyCard(context.Background(), f.room, "p1", "warrior")
	require.NoError(t, err)
	assert.Equal(t, 900, info.PlayerStates[0].Money)
	assert.Equal(t, []string{"warrior"}, info.PlayerStates[0].Cards)

	_, err = f.manager.BuyCard(context.Background(), f.room, "p1", "dragon")
	assert.ErrorIs(t, err, apperrors.ErrUnknownCard)

	_, err = f.manager.BuyCard(context.Background(), f.room, "p9", "warrior")
	assert.ErrorIs(t, err, apperrors.ErrNotAMember)
}

func TestManager_BuyCard_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	// 1000 starting money buys exactly ten cards at 100 each.
	for i := 0; i < 10; i++ {
		_, err := f.manager.BuyCard(context.Background(), f.room, "p1", "archer")
		require.NoError(t, err)
	}

	_, err := f.manager.BuyCard(context.Background(), f.room, "p1", "archer")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.Equal(t, 0, f.room.Player("p1").Money)
	assert.Len(t, f.room.Player("p1").Cards, 10)
}

func TestManager_BuyCard_StoreFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.store.failing = true
	_, err := f.manager.BuyCard(context.Background(), f.room, "p1", "warrior")
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	p := f.room.Player("p1")
	assert.Equal(t, 1000, p.Money)
	assert.Empty(t, p.Cards)
}

func TestManager_PlaceCard(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.PlaceCard(f.room, "p1", "warrior", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPhase)

	f.start(t)

	// Placement does not check ownership: p1 never bought a card.
	state, err := f.manager.PlaceCard(f.room, "p1", "warrior", 2)
	require.NoError(t, err)
	require.Len(t, state.Boards["p1"], 1)
	assert.Equal(t, "warrior", state.Boards["p1"][0].CardID)
	assert.Equal(t, 2, state.Boards["p1"][0].Position)

	state, err = f.manager.PlaceCard(f.room, "p1", "archer", 2)
	require.NoError(t, err)
	assert.Len(t, state.Boards["p1"], 2)
}

func TestManager_Ready_RoundContinues(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	_, err := f.manager.PlaceCard(f.room, "p1", "warrior", 0)
	require.NoError(t, err)
	_, err = f.manager.PlaceCard(f.room, "p2", "archer", 0)
	require.NoError(t, err)

	// Any single participant's ready resolves the whole room.
	result, err := f.manager.Ready(context.Background(), f.room, "p2")
	require.NoError(t, err)

	assert.False(t, result.Ended)
	assert.ElementsMatch(t, []string{"p1", "p2"}, result.Recipients)
	require.Len(t, result.Actions, 2)
	assert.Equal(t, "p2", result.Actions[0].PlayerID)
	assert.Equal(t, 85, result.Actions[0].TargetHP)
	assert.Equal(t, 85, f.room.Player("p1").HP)
	assert.Equal(t, 80, f.room.Player("p2").HP)

	// Next round: board cleared, round advanced, back to preparing.
	assert.Equal(t, "preparing", result.State.Phase)
	assert.Equal(t, 2, result.State.Round)
	assert.Empty(t, result.State.Boards)
	require.NotNil(t, f.manager.Get(f.room.ID))

	// Persisted snapshot reflects the post-round HP.
	assert.Equal(t, 85, f.store.rooms[f.room.ID].PlayerStates[0].HP)
}

func TestManager_Ready_GameEnded(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.room.Lock()
	f.room.Player("p2").HP = 15
	f.room.Unlock()

	_, err := f.manager.PlaceCard(f.room, "p1", "archer", 0)
	require.NoError(t, err)

	result, err := f.manager.Ready(context.Background(), f.room, "p1")
	require.NoError(t, err)

	assert.True(t, result.Ended)
	assert.Equal(t, "p1", result.WinnerID)
	assert.Equal(t, "Alice", result.WinnerName)
	// The eliminated player is still notified.
	assert.ElementsMatch(t, []string{"p1", "p2"}, result.Recipients)

	// Session destroyed, room back to waiting with only the survivor.
	assert.Nil(t, f.manager.Get(f.room.ID))
	assert.Equal(t, room.StatusWaiting, f.room.Status)
	assert.False(t, f.room.HasPlayer("p2"))

	// The room is joinable again.
	_, err = f.registry.Join(context.Background(), f.room.ID, room.Identity{ID: "p3", Name: "Carol"})
	assert.NoError(t, err)
}

func TestManager_Ready_NoWinner(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.room.Lock()
	f.room.Player("p1").HP = 15
	f.room.Player("p2").HP = 15
	f.room.Unlock()

	_, err := f.manager.PlaceCard(f.room, "p1", "archer", 0)
	require.NoError(t, err)
	_, err = f.manager.PlaceCard(f.room, "p2", "warrior", 0)
	require.NoError(t, err)

	result, err := f.manager.Ready(context.Background(), f.room, "p1")
	require.NoError(t, err)

	assert.True(t, result.Ended)
	assert.Empty(t, result.WinnerID)
	assert.Empty(t, result.WinnerName)
	assert.Empty(t, f.room.Players)
}

func TestManager_Ready_InvalidPhase(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Ready(context.Background(), f.room, "p1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPhase)
}

func TestManager_Ready_StoreFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	_, err := f.manager.PlaceCard(f.room, "p1", "warrior", 0)
	require.NoError(t, err)

	f.store.failing = true
	_, err = f.manager.Ready(context.Background(), f.room, "p1")
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	// HP and status restored, the round can be resolved again.
	assert.Equal(t, 100, f.room.Player("p2").HP)
	assert.Equal(t, room.StatusInProgress, f.room.Status)
	sess := f.manager.Get(f.room.ID)
	require.NotNil(t, sess)
	assert.Equal(t, PhasePreparing, sess.Phase)

	f.store.failing = false
	result, err := f.manager.Ready(context.Background(), f.room, "p1")
	require.NoError(t, err)
	assert.Equal(t, 80, f.room.Player("p2").HP)
	assert.False(t, result.Ended)
}

func TestManager_Destroy_OnRoomDisband(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	_, _, err := f.registry.Leave(context.Background(), f.room.ID, "p1")
	require.NoError(t, err)
	_, destroyed, err := f.registry.Leave(context.Background(), f.room.ID, "p2")
	require.NoError(t, err)

	assert.True(t, destroyed)
	assert.Nil(t, f.manager.Get(f.room.ID))
}
