package session

import (
	"context"
	"log"
	"sync"

	"github.com/palemoky/card-battle-arena/internal/apperrors"
	"github.com/palemoky/card-battle-arena/internal/config"
	"github.com/palemoky/card-battle-arena/internal/game/battle"
	"github.com/palemoky/card-battle-arena/internal/game/card"
	"github.com/palemoky/card-battle-arena/internal/game/room"
	"github.com/palemoky/card-battle-arena/internal/protocol"
)

// Manager 对局管理器，按房间 ID 维护进行中的对局
// 不变式：房间状态为 in_progress 当且仅当这里存在对应的 Session。
// 为保证这一点，所有对局生命周期变更都在持有房间锁的情况下完成。
type Manager struct {
	store    room.Store
	catalog  *card.Catalog
	cfg      *config.GameConfig
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewManager 创建对局管理器
func NewManager(store room.Store, catalog *card.Catalog, cfg *config.GameConfig) *Manager {
	return &Manager{
		store:    store,
		catalog:  catalog,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Get 获取房间对应的对局，不存在返回 nil
func (m *Manager) Get(roomID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[roomID]
}

// Destroy 销毁房间对应的对局（房间解散时由注册表回调，调用方已持房间锁）
func (m *Manager) Destroy(roomID string) {
	m.mu.Lock()
	if _, ok := m.sessions[roomID]; ok {
		delete(m.sessions, roomID)
		log.Printf("🧹 房间 %s 的对局已清理", roomID)
	}
	m.mu.Unlock()
}

// Start 开始对局，仅房主可以发起
func (m *Manager) Start(ctx context.Context, r *room.Room, participantID string) (protocol.RoomInfo, protocol.GameStateInfo, error) {
	r.Lock()
	defer r.Unlock()

	if r.CreatorID != participantID {
		return protocol.RoomInfo{}, protocol.GameStateInfo{}, apperrors.ErrUnauthorized
	}
	if r.Status != room.StatusWaiting {
		return protocol.RoomInfo{}, protocol.GameStateInfo{}, apperrors.ErrAlreadyStarted
	}

	r.Status = room.StatusInProgress
	sess := newSession(r.ID)

	info := r.Snapshot()
	if err := m.store.SaveRoom(ctx, info); err != nil {
		r.Status = room.StatusWaiting
		log.Printf("保存房间失败: %v", err)
		return protocol.RoomInfo{}, protocol.GameStateInfo{}, apperrors.ErrInternal
	}

	m.mu.Lock()
	m.sessions[r.ID] = sess
	m.mu.Unlock()

	log.Printf("🎮 房间 %s 对局开始，共 %d 名玩家", r.ID, len(r.Players))

	return info, sess.Snapshot(), nil
}

// BuyCard 购买卡牌，固定价格从配置读取
func (m *Manager) BuyCard(ctx context.Context, r *room.Room, participantID, cardID string) (protocol.RoomInfo, error) {
	r.Lock()
	defer r.Unlock()

	sess := m.Get(r.ID)
	if sess == nil || sess.Phase != PhasePreparing {
		return protocol.RoomInfo{}, apperrors.ErrInvalidPhase
	}

	if !m.catalog.Has(cardID) {
		return protocol.RoomInfo{}, apperrors.ErrUnknownCard
	}

	p := r.Player(participantID)
	if p == nil {
		return protocol.RoomInfo{}, apperrors.ErrNotAMember
	}

	if p.Money < m.cfg.CardCost {
		return protocol.RoomInfo{}, apperrors.ErrInsufficientFunds
	}

	p.Money -= m.cfg.CardCost
	p.Cards = append(p.Cards, cardID)

	info := r.Snapshot()
	if err := m.store.SaveRoom(ctx, info); err != nil {
		p.Money += m.cfg.CardCost
		p.Cards = p.Cards[:len(p.Cards)-1]
		log.Printf("保存房间失败: %v", err)
		return protocol.RoomInfo{}, apperrors.ErrInternal
	}

	log.Printf("🃏 玩家 %s 在房间 %s 购买 %s，余额 %d", p.Name, r.ID, cardID, p.Money)

	return info, nil
}

// PlaceCard 在棋盘上放置卡牌
// 放置不校验持有与占位，结算时未知卡牌也不会产生行动
func (m *Manager) PlaceCard(r *room.Room, participantID, cardID string, position int) (protocol.GameStateInfo, error) {
	r.Lock()
	defer r.Unlock()

	sess := m.Get(r.ID)
	if sess == nil || sess.Phase != PhasePreparing {
		return protocol.GameStateInfo{}, apperrors.ErrInvalidPhase
	}

	sess.Boards[participantID] = append(sess.Boards[participantID], battle.Placement{CardID: cardID, Position: position})

	return sess.Snapshot(), nil
}

// RoundResult 一轮结算对外发布所需的全部内容
type RoundResult struct {
	RoomID       string
	Recipients   []string // 结算前的全体成员，本轮出局者也要收到通知
	Actions      []protocol.BattleActionInfo
	PlayerStates []protocol.PlayerStateInfo
	Ended        bool
	WinnerID     string
	WinnerName   string
	Room         protocol.RoomInfo
	State        protocol.GameStateInfo // 仅对局继续时有意义
}

// Ready 任一参与者宣告就绪即触发整个房间的本轮结算
func (m *Manager) Ready(ctx context.Context, r *room.Room, participantID string) (RoundResult, error) {
	r.Lock()
	defer r.Unlock()

	sess := m.Get(r.ID)
	if sess == nil || sess.Phase != PhasePreparing {
		return RoundResult{}, apperrors.ErrInvalidPhase
	}
	if !r.HasPlayer(participantID) {
		return RoundResult{}, apperrors.ErrNotAMember
	}

	sess.Phase = PhaseResolving

	backup := r.ClonePlayers()
	recipients := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		recipients = append(recipients, p.ID)
	}

	battleResult := battle.Resolve(r.Players, sess.Boards, m.catalog)

	r.Players = battleResult.Survivors
	ended := battleResult.Outcome == battle.GameEnded
	if ended {
		r.Status = room.StatusWaiting
	}

	info := r.Snapshot()
	if err := m.store.SaveRoom(ctx, info); err != nil {
		r.Players = backup
		r.Status = room.StatusInProgress
		sess.Phase = PhasePreparing
		log.Printf("保存房间失败: %v", err)
		return RoundResult{}, apperrors.ErrInternal
	}

	result := RoundResult{
		RoomID:       r.ID,
		Recipients:   recipients,
		Actions:      make([]protocol.BattleActionInfo, 0, len(battleResult.Actions)),
		PlayerStates: info.PlayerStates,
		Ended:        ended,
		Room:         info,
	}
	for _, a := range battleResult.Actions {
		result.Actions = append(result.Actions, protocol.BattleActionInfo{
			PlayerID: a.PlayerID,
			CardID:   a.Card.ID,
			Speed:    a.Card.Speed,
			Attack:   a.Card.Attack,
			TargetID: a.TargetID,
			TargetHP: a.TargetHP,
			Skipped:  a.Skipped,
		})
	}

	if ended {
		result.WinnerID = battleResult.WinnerID
		if winner := r.Player(battleResult.WinnerID); winner != nil {
			result.WinnerName = winner.Name
		}

		m.mu.Lock()
		delete(m.sessions, r.ID)
		m.mu.Unlock()

		log.Printf("🏆 房间 %s 对局结束，获胜者 %s", r.ID, result.WinnerName)
		return result, nil
	}

	sess.resetRound()
	result.State = sess.Snapshot()

	log.Printf("⚔️ 房间 %s 第 %d 轮结算完成，进入第 %d 轮", r.ID, sess.Round-1, sess.Round)

	return result, nil
}
