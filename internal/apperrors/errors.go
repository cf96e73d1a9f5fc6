package apperrors

import (
	"github.com/palemoky/card-battle-arena/internal/protocol"
)

// GameError 游戏错误（房间和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound      = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"}
	ErrRoomFull          = &GameError{Code: protocol.ErrCodeRoomFull, Message: "房间已满"}
	ErrNotAMember        = &GameError{Code: protocol.ErrCodeNotAMember, Message: "您不在房间中"}
	ErrAlreadyStarted    = &GameError{Code: protocol.ErrCodeAlreadyStarted, Message: "游戏已开始"}
	ErrInvalidPhase      = &GameError{Code: protocol.ErrCodeInvalidPhase, Message: "当前阶段无法执行该操作"}
	ErrInsufficientFunds = &GameError{Code: protocol.ErrCodeInsufficientFunds, Message: "金币不足"}
	ErrUnknownCard       = &GameError{Code: protocol.ErrCodeUnknownCard, Message: "卡牌不存在"}
	ErrUnauthorized      = &GameError{Code: protocol.ErrCodeUnauthorized, Message: "没有权限执行该操作"}
	ErrInternal          = &GameError{Code: protocol.ErrCodeInternal, Message: "内部错误，请稍后重试"}
)
