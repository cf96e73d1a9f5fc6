package handler

import (
	"errors"
	"log"

	"github.com/palemoky/card-battle-arena/internal/apperrors"
	"github.com/palemoky/card-battle-arena/internal/game/room"
	"github.com/palemoky/card-battle-arena/internal/game/session"
	"github.com/palemoky/card-battle-arena/internal/protocol"
	"github.com/palemoky/card-battle-arena/internal/protocol/codec"
	"github.com/palemoky/card-battle-arena/internal/types"
)

// Deps 处理器依赖
type Deps struct {
	Server    types.ServerInterface
	Registry  *room.Registry
	Sessions  *session.Manager
	ChatStore types.ChatStore
	Verifier  types.TokenVerifier
}

// Handler 消息处理器，所有命令的统一入口
type Handler struct {
	server    types.ServerInterface
	registry  *room.Registry
	sessions  *session.Manager
	chatStore types.ChatStore
	verifier  types.TokenVerifier
	handlers  map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps Deps) *Handler {
	h := &Handler{
		server:    deps.Server,
		registry:  deps.Registry,
		sessions:  deps.Sessions,
		chatStore: deps.ChatStore,
		verifier:  deps.Verifier,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgAuth: h.handleAuth,
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgCreateRoom:  h.handleCreateRoom,
		protocol.MsgJoinRoom:    h.handleJoinRoom,
		protocol.MsgLeaveRoom:   h.handleLeaveRoom,
		protocol.MsgGetRoomList: func(c types.ClientInterface, _ *protocol.Message) { h.handleGetRoomList(c) },

		// 游戏操作
		protocol.MsgStartGame: h.handleStartGame,
		protocol.MsgBuyCard:   h.handleBuyCard,
		protocol.MsgPlaceCard: h.handlePlaceCard,
		protocol.MsgReady:     h.handleReady,

		// 聊天
		protocol.MsgChat: h.handleChat,
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Printf("⚠️  未知消息类型: '%s' (来自玩家: %s, ID: %s)", msg.Type, client.GetName(), client.GetID())
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// sendError 将业务错误翻译成错误消息发给发起者
func (h *Handler) sendError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessage(gameErr.Code))
		return
	}
	client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error()))
}

// memberRoom 解析房间并校验成员身份，失败时直接回复错误
func (h *Handler) memberRoom(client types.ClientInterface, roomID string) *room.Room {
	r := h.registry.Get(roomID)
	if r == nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRoomNotFound))
		return nil
	}
	if !h.registry.IsMember(roomID, client.GetPlayerID()) {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeNotAMember))
		return nil
	}
	return r
}
