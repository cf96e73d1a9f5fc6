package handler

import (
	"context"
	"log"

	"github.com/palemoky/card-battle-arena/internal/game/room"
	"github.com/palemoky/card-battle-arena/internal/protocol"
	"github.com/palemoky/card-battle-arena/internal/protocol/codec"
	"github.com/palemoky/card-battle-arena/internal/types"
)

// 加入房间时回放的聊天记录条数
const chatReplayLimit = 50

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	name := payload.Name
	if name == "" {
		name = client.GetName() + " 的房间"
	}

	info, err := h.registry.Create(context.Background(), name, room.Identity{
		ID:   client.GetPlayerID(),
		Name: client.GetName(),
	})
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{Room: info}))
	h.server.BroadcastRoomList()
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	ctx := context.Background()
	info, err := h.registry.Join(ctx, payload.RoomID, room.Identity{
		ID:   client.GetPlayerID(),
		Name: client.GetName(),
	})
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{Room: info}))

	// 回放最近的聊天记录给新成员
	if history, err := h.chatStore.LoadMessages(ctx, info.ID, chatReplayLimit); err == nil {
		for _, chatMsg := range history {
			client.SendMessage(codec.MustNewMessage(protocol.MsgChat, chatMsg))
		}
	} else {
		log.Printf("加载聊天记录失败 (房间 %s): %v", info.ID, err)
	}

	// 通知房间内其他成员
	h.server.SendToPlayers(info.Players, codec.MustNewMessage(protocol.MsgPlayerUpdate, protocol.PlayerUpdatePayload{
		RoomID:       info.ID,
		PlayerStates: info.PlayerStates,
	}))

	h.server.BroadcastRoomList()
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.LeaveRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	info, destroyed, err := h.registry.Leave(context.Background(), payload.RoomID, client.GetPlayerID())
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomLeft, protocol.RoomLeftPayload{RoomID: payload.RoomID}))

	if !destroyed {
		h.server.SendToPlayers(info.Players, codec.MustNewMessage(protocol.MsgPlayerUpdate, protocol.PlayerUpdatePayload{
			RoomID:       payload.RoomID,
			PlayerStates: info.PlayerStates,
		}))
	}

	h.server.BroadcastRoomList()
}

// handleGetRoomList 处理获取房间列表
func (h *Handler) handleGetRoomList(client types.ClientInterface) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomList, protocol.RoomListPayload{
		Rooms: h.registry.List(),
	}))
}
