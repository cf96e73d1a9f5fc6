package room

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/card-battle-arena/internal/apperrors"
	"github.com/palemoky/card-battle-arena/internal/config"
	"github.com/palemoky/card-battle-arena/internal/protocol"
)

// Store 房间持久化存储
type Store interface {
	SaveRoom(ctx context.Context, info protocol.RoomInfo) error
	DeleteRoom(ctx context.Context, roomID string) error
}

// Registry 房间注册表
// 内存状态与外部存储同步写入：先改内存，持久化失败则回滚并报 ErrInternal
type Registry struct {
	store     Store
	cfg       *config.GameConfig
	onDestroy func(roomID string) // 房间销毁时回调（持锁调用，用于同步清理对局）
	rooms     map[string]*Room
	mu        sync.RWMutex
}

// NewRegistry 创建房间注册表
func NewRegistry(store Store, cfg *config.GameConfig, onDestroy func(roomID string)) *Registry {
	return &Registry{
		store:     store,
		cfg:       cfg,
		onDestroy: onDestroy,
		rooms:     make(map[string]*Room),
	}
}

// newPlayerState 按配置创建默认玩家状态
func (rg *Registry) newPlayerState(ident Identity) *PlayerState {
	return &PlayerState{
		ID:    ident.ID,
		Name:  ident.Name,
		HP:    rg.cfg.StartingHP,
		Money: rg.cfg.StartingMoney,
		Cards: []string{},
	}
}

// Create 创建房间，创建者自动成为第一个成员
func (rg *Registry) Create(ctx context.Context, name string, creator Identity) (protocol.RoomInfo, error) {
	room := &Room{
		ID:         uuid.New().String(),
		Name:       name,
		Status:     StatusWaiting,
		CreatorID:  creator.ID,
		MaxPlayers: rg.cfg.MaxPlayers,
		CreatedAt:  time.Now(),
		Players:    []*PlayerState{rg.newPlayerState(creator)},
	}

	info := room.Snapshot()
	if err := rg.store.SaveRoom(ctx, info); err != nil {
		log.Printf("保存房间失败: %v", err)
		return protocol.RoomInfo{}, apperrors.ErrInternal
	}

	rg.mu.Lock()
	rg.rooms[room.ID] = room
	rg.mu.Unlock()

	log.Printf("🏠 房间 %s (%s) 已创建，房主 %s", room.Name, room.ID, creator.Name)

	return info, nil
}

// Join 加入房间
func (rg *Registry) Join(ctx context.Context, roomID string, ident Identity) (protocol.RoomInfo, error) {
	room := rg.Get(roomID)
	if room == nil {
		return protocol.RoomInfo{}, apperrors.ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()

	// 重复加入视为幂等
	if room.HasPlayer(ident.ID) {
		return room.Snapshot(), nil
	}

	if len(room.Players) >= room.MaxPlayers {
		return protocol.RoomInfo{}, apperrors.ErrRoomFull
	}

	if room.Status != StatusWaiting {
		return protocol.RoomInfo{}, apperrors.ErrAlreadyStarted
	}

	room.Players = append(room.Players, rg.newPlayerState(ident))

	info := room.Snapshot()
	if err := rg.store.SaveRoom(ctx, info); err != nil {
		room.Players = room.Players[:len(room.Players)-1]
		log.Printf("保存房间失败: %v", err)
		return protocol.RoomInfo{}, apperrors.ErrInternal
	}

	log.Printf("👤 玩家 %s 加入房间 %s", ident.Name, roomID)

	return info, nil
}

// Leave 离开房间。最后一名成员离开时房间连同对局一并销毁
func (rg *Registry) Leave(ctx context.Context, roomID, participantID string) (info protocol.RoomInfo, destroyed bool, err error) {
	room := rg.Get(roomID)
	if room == nil {
		return protocol.RoomInfo{}, false, apperrors.ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()

	idx := -1
	for i, p := range room.Players {
		if p.ID == participantID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return protocol.RoomInfo{}, false, apperrors.ErrNotAMember
	}

	leaving := room.Players[idx]
	room.RemovePlayer(participantID)
	restore := func() {
		room.Players = append(room.Players[:idx], append([]*PlayerState{leaving}, room.Players[idx:]...)...)
	}

	if len(room.Players) == 0 {
		if err := rg.store.DeleteRoom(ctx, roomID); err != nil {
			restore()
			log.Printf("删除房间失败: %v", err)
			return protocol.RoomInfo{}, false, apperrors.ErrInternal
		}

		rg.mu.Lock()
		delete(rg.rooms, roomID)
		rg.mu.Unlock()

		if rg.onDestroy != nil {
			rg.onDestroy(roomID)
		}

		log.Printf("🏠 房间 %s 已解散", roomID)
		return protocol.RoomInfo{}, true, nil
	}

	info = room.Snapshot()
	if err := rg.store.SaveRoom(ctx, info); err != nil {
		restore()
		log.Printf("保存房间失败: %v", err)
		return protocol.RoomInfo{}, false, apperrors.ErrInternal
	}

	log.Printf("👋 玩家 %s 离开房间 %s", leaving.Name, roomID)

	return info, false, nil
}

// Get 获取房间
func (rg *Registry) Get(roomID string) *Room {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.rooms[roomID]
}

// List 返回所有房间快照，按创建时间排序
func (rg *Registry) List() []protocol.RoomInfo {
	rg.mu.RLock()
	rooms := make([]*Room, 0, len(rg.rooms))
	for _, room := range rg.rooms {
		rooms = append(rooms, room)
	}
	rg.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})

	infos := make([]protocol.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		room.Lock()
		infos = append(infos, room.Snapshot())
		room.Unlock()
	}
	return infos
}

// IsMember 判断参与者是否是房间成员
func (rg *Registry) IsMember(roomID, participantID string) bool {
	room := rg.Get(roomID)
	if room == nil {
		return false
	}
	room.Lock()
	defer room.Unlock()
	return room.HasPlayer(participantID)
}

// Members 返回房间当前成员 ID 列表
func (rg *Registry) Members(roomID string) []string {
	room := rg.Get(roomID)
	if room == nil {
		return nil
	}
	room.Lock()
	defer room.Unlock()

	ids := make([]string, 0, len(room.Players))
	for _, p := range room.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// RoomsOf 返回参与者所属的所有房间 ID（用于断线清理）
func (rg *Registry) RoomsOf(participantID string) []string {
	rg.mu.RLock()
	rooms := make([]*Room, 0, len(rg.rooms))
	for _, room := range rg.rooms {
		rooms = append(rooms, room)
	}
	rg.mu.RUnlock()

	var ids []string
	for _, room := range rooms {
		room.Lock()
		if room.HasPlayer(participantID) {
			ids = append(ids, room.ID)
		}
		room.Unlock()
	}
	return ids
}
