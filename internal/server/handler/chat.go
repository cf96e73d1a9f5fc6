package handler

import (
	"context"
	"log"
	"time"

	"github.com/palemoky/card-battle-arena/internal/protocol"
	"github.com/palemoky/card-battle-arena/internal/protocol/codec"
	"github.com/palemoky/card-battle-arena/internal/types"
)

// handleChat 处理房间聊天
// 消息先持久化再回显，存储失败时发起者收到内部错误
func (h *Handler) handleChat(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ChatPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if payload.Text == "" {
		return
	}

	if !h.registry.IsMember(payload.RoomID, client.GetPlayerID()) {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeNotAMember))
		return
	}

	chatMsg := protocol.ChatMessage{
		User:      client.GetName(),
		Text:      payload.Text,
		RoomID:    payload.RoomID,
		Timestamp: time.Now().Unix(),
	}

	if err := h.chatStore.SaveMessage(context.Background(), chatMsg); err != nil {
		log.Printf("保存聊天消息失败: %v", err)
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInternal))
		return
	}

	h.server.SendToPlayers(h.registry.Members(payload.RoomID), codec.MustNewMessage(protocol.MsgChat, chatMsg))
}
