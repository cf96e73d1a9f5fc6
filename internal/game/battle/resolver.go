package battle

import (
	"sort"

	"github.com/palemoky/card-battle-arena/internal/game/card"
	"github.com/palemoky/card-battle-arena/internal/game/room"
)

// Placement 棋盘上的一次放置
type Placement struct {
	CardID   string
	Position int
}

// Action 战斗中的一次行动
type Action struct {
	PlayerID string
	Card     card.Definition
	TargetID string
	TargetHP int  // 行动结算后目标剩余生命值
	Skipped  bool // 无存活对手时跳过
}

// Outcome 一轮结算的结果类型
type Outcome int

const (
	RoundContinues Outcome = iota // 多于一名玩家存活，进入下一轮
	GameEnded                     // 至多一名玩家存活，对局结束
)

// Result 一轮结算的完整结果
type Result struct {
	Actions    []Action
	Survivors  []*room.PlayerState
	Eliminated []string
	Outcome    Outcome
	WinnerID   string // 仅 GameEnded 且有存活者时非空
}

// Resolve 结算一轮战斗，纯函数：输入相同则行动顺序与结果完全相同
//
// 行动按速度降序排列，速度相同时保持收集顺序（即玩家加入顺序、放置顺序）。
// 行动逐个生效并立即修改共享状态：目标是加入顺序上第一个存活的对手，
// 生命值降到 0 及以下的玩家立刻出局，其后续被指向的行动跳过；
// 已出局玩家自己剩余的行动仍会生效。
//
// players 中的 HP 会被原地修改，需要回滚的调用方应自行先拷贝。
func Resolve(players []*room.PlayerState, boards map[string][]Placement, catalog *card.Catalog) Result {
	var result Result

	// 收集所有放置，保持加入顺序与放置顺序
	for _, p := range players {
		for _, placement := range boards[p.ID] {
			def, err := catalog.Lookup(placement.CardID)
			if err != nil {
				// 放置未经校验，卡池中不存在的放置不产生行动
				continue
			}
			result.Actions = append(result.Actions, Action{PlayerID: p.ID, Card: def})
		}
	}

	// 速度降序，稳定排序保证同速行动的相对顺序
	sort.SliceStable(result.Actions, func(i, j int) bool {
		return result.Actions[i].Card.Speed > result.Actions[j].Card.Speed
	})

	living := append([]*room.PlayerState(nil), players...)

	findTarget := func(attackerID string) *room.PlayerState {
		for _, p := range living {
			if p.ID != attackerID {
				return p
			}
		}
		return nil
	}

	for i := range result.Actions {
		action := &result.Actions[i]

		target := findTarget(action.PlayerID)
		if target == nil {
			action.Skipped = true
			continue
		}

		target.HP -= action.Card.Attack
		action.TargetID = target.ID
		action.TargetHP = target.HP

		if target.HP <= 0 {
			for j, p := range living {
				if p.ID == target.ID {
					living = append(living[:j], living[j+1:]...)
					break
				}
			}
			result.Eliminated = append(result.Eliminated, target.ID)
		}
	}

	result.Survivors = living
	if len(living) <= 1 {
		result.Outcome = GameEnded
		if len(living) == 1 {
			result.WinnerID = living[0].ID
		}
	} else {
		result.Outcome = RoundContinues
	}

	return result
}
