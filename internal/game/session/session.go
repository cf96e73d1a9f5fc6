package session

import (
	"github.com/palemoky/card-battle-arena/internal/game/battle"
	"github.com/palemoky/card-battle-arena/internal/protocol"
)

// Phase 对局阶段
type Phase int

const (
	PhasePreparing Phase = iota // 准备阶段：购卡、放置
	PhaseResolving              // 结算阶段：持房间锁同步进行
)

// String 返回阶段的序列化形式
func (p Phase) String() string {
	if p == PhaseResolving {
		return "resolving"
	}
	return "preparing"
}

// Session 一个房间的对局状态
// 生命周期与房间状态绑定：房间 in_progress 时存在，对局结束或房间解散时销毁。
// 所有读写都在对应房间的锁内进行。
type Session struct {
	RoomID string
	Phase  Phase
	Round  int
	Boards map[string][]battle.Placement // 参与者 ID -> 本轮放置
}

// newSession 创建首轮对局状态
func newSession(roomID string) *Session {
	return &Session{
		RoomID: roomID,
		Phase:  PhasePreparing,
		Round:  1,
		Boards: make(map[string][]battle.Placement),
	}
}

// resetRound 进入下一轮：清空棋盘，回到准备阶段
func (s *Session) resetRound() {
	s.Phase = PhasePreparing
	s.Round++
	s.Boards = make(map[string][]battle.Placement)
}

// Snapshot 构建对局快照
func (s *Session) Snapshot() protocol.GameStateInfo {
	state := protocol.GameStateInfo{
		Phase:  s.Phase.String(),
		Round:  s.Round,
		Boards: make(map[string][]protocol.PlacementInfo, len(s.Boards)),
	}
	for id, placements := range s.Boards {
		infos := make([]protocol.PlacementInfo, 0, len(placements))
		for _, p := range placements {
			infos = append(infos, protocol.PlacementInfo{CardID: p.CardID, Position: p.Position})
		}
		state.Boards[id] = infos
	}
	return state
}
