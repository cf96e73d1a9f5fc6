package room

import (
	"sync"
	"time"

	"github.com/palemoky/card-battle-arena/internal/protocol"
)

// Status 房间状态
type Status int

const (
	StatusWaiting    Status = iota // 等待玩家
	StatusInProgress               // 对局进行中
)

// String 返回状态的序列化形式
func (s Status) String() string {
	if s == StatusInProgress {
		return "in_progress"
	}
	return "waiting"
}

// Identity 参与者身份（连接标识与游戏状态分离，游戏状态只认参与者 ID）
type Identity struct {
	ID   string
	Name string
}

// PlayerState 玩家在房间内的状态
type PlayerState struct {
	ID    string
	Name  string
	HP    int
	Money int
	Cards []string // 已购卡牌，允许重复
}

// Clone 深拷贝玩家状态
func (p *PlayerState) Clone() *PlayerState {
	cp := *p
	cp.Cards = append([]string(nil), p.Cards...)
	return &cp
}

// Room 游戏房间
// Players 是唯一的成员集合：id 与状态同属一个条目，顺序即加入顺序
type Room struct {
	ID         string
	Name       string
	Status     Status
	CreatorID  string
	MaxPlayers int
	CreatedAt  time.Time
	Players    []*PlayerState

	mu sync.Mutex
}

// Lock 锁定房间。同一房间的所有命令（含战斗结算）必须持锁串行执行
func (r *Room) Lock() { r.mu.Lock() }

// Unlock 解锁房间
func (r *Room) Unlock() { r.mu.Unlock() }

// Player 按参与者 ID 查找玩家状态，调用方需持有房间锁
func (r *Room) Player(id string) *PlayerState {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// HasPlayer 判断参与者是否在房间中，调用方需持有房间锁
func (r *Room) HasPlayer(id string) bool {
	return r.Player(id) != nil
}

// RemovePlayer 移除参与者并保持加入顺序，调用方需持有房间锁
func (r *Room) RemovePlayer(id string) {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return
		}
	}
}

// ClonePlayers 深拷贝玩家状态列表（用于失败回滚）
func (r *Room) ClonePlayers() []*PlayerState {
	cloned := make([]*PlayerState, len(r.Players))
	for i, p := range r.Players {
		cloned[i] = p.Clone()
	}
	return cloned
}

// Snapshot 构建房间快照（持久化与广播共用），调用方需持有房间锁
func (r *Room) Snapshot() protocol.RoomInfo {
	info := protocol.RoomInfo{
		ID:           r.ID,
		Name:         r.Name,
		Status:       r.Status.String(),
		Players:      make([]string, 0, len(r.Players)),
		MaxPlayers:   r.MaxPlayers,
		CreatedAt:    r.CreatedAt.Unix(),
		GameStarted:  r.Status == StatusInProgress,
		CreatorID:    r.CreatorID,
		PlayerStates: make([]protocol.PlayerStateInfo, 0, len(r.Players)),
	}

	for _, p := range r.Players {
		info.Players = append(info.Players, p.ID)
		info.PlayerStates = append(info.PlayerStates, protocol.PlayerStateInfo{
			ID:    p.ID,
			Name:  p.Name,
			HP:    p.HP,
			Money: p.Money,
			Cards: append([]string(nil), p.Cards...),
		})
	}

	return info
}
