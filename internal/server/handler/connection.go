package handler

import (
	"context"
	"log"
	"time"

	"github.com/palemoky/card-battle-arena/internal/protocol"
	"github.com/palemoky/card-battle-arena/internal/protocol/codec"
	"github.com/palemoky/card-battle-arena/internal/types"
)

// handleAuth 绑定已认证身份到当前连接
func (h *Handler) handleAuth(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.AuthPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	playerID, username, err := h.verifier.Verify(payload.Token)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnauthorized))
		return
	}

	// 用认证身份替换游客身份，并更新参与者索引
	h.server.UnregisterClient(client.GetPlayerID())
	client.SetIdentity(playerID, username, false)
	h.server.RegisterClient(playerID, client)

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:   playerID,
		PlayerName: username,
		Guest:      false,
	}))

	log.Printf("🔐 玩家 %s (%s) 身份绑定成功", username, playerID)
}

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	// 立即回复 pong
	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// HandleDisconnect 连接断开时为参与者合成离开动作
func (h *Handler) HandleDisconnect(client types.ClientInterface) {
	playerID := client.GetPlayerID()
	ctx := context.Background()

	roomIDs := h.registry.RoomsOf(playerID)
	for _, roomID := range roomIDs {
		info, destroyed, err := h.registry.Leave(ctx, roomID, playerID)
		if err != nil {
			log.Printf("断线清理失败 (房间 %s): %v", roomID, err)
			continue
		}
		if !destroyed {
			h.server.SendToPlayers(info.Players, codec.MustNewMessage(protocol.MsgPlayerUpdate, protocol.PlayerUpdatePayload{
				RoomID:       roomID,
				PlayerStates: info.PlayerStates,
			}))
		}
	}

	if len(roomIDs) > 0 {
		h.server.BroadcastRoomList()
	}
}
