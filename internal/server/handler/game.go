package handler

import (
	"context"

	"github.com/palemoky/card-battle-arena/internal/protocol"
	"github.com/palemoky/card-battle-arena/internal/protocol/codec"
	"github.com/palemoky/card-battle-arena/internal/types"
)

// handleStartGame 处理开始游戏
func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.StartGamePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	r := h.memberRoom(client, payload.RoomID)
	if r == nil {
		return
	}

	info, state, err := h.sessions.Start(context.Background(), r, client.GetPlayerID())
	if err != nil {
		h.sendError(client, err)
		return
	}

	h.server.SendToPlayers(info.Players, codec.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{
		Room:  info,
		State: state,
	}))

	// 房间状态变为进行中，更新全局列表
	h.server.BroadcastRoomList()
}

// handleBuyCard 处理购买卡牌
func (h *Handler) handleBuyCard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.BuyCardPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	r := h.memberRoom(client, payload.RoomID)
	if r == nil {
		return
	}

	info, err := h.sessions.BuyCard(context.Background(), r, client.GetPlayerID(), payload.CardID)
	if err != nil {
		h.sendError(client, err)
		return
	}

	h.server.SendToPlayers(info.Players, codec.MustNewMessage(protocol.MsgPlayerUpdate, protocol.PlayerUpdatePayload{
		RoomID:       payload.RoomID,
		PlayerStates: info.PlayerStates,
	}))
}

// handlePlaceCard 处理放置卡牌
func (h *Handler) handlePlaceCard(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PlaceCardPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	r := h.memberRoom(client, payload.RoomID)
	if r == nil {
		return
	}

	state, err := h.sessions.PlaceCard(r, client.GetPlayerID(), payload.CardID, payload.Position)
	if err != nil {
		h.sendError(client, err)
		return
	}

	h.server.SendToPlayers(h.registry.Members(payload.RoomID), codec.MustNewMessage(protocol.MsgGameUpdate, protocol.GameUpdatePayload{
		RoomID: payload.RoomID,
		State:  state,
	}))
}

// handleReady 处理准备完毕，任一参与者就绪即触发整轮结算
func (h *Handler) handleReady(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ReadyPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	r := h.memberRoom(client, payload.RoomID)
	if r == nil {
		return
	}

	result, err := h.sessions.Ready(context.Background(), r, client.GetPlayerID())
	if err != nil {
		h.sendError(client, err)
		return
	}

	// 结算通知发给结算前的全体成员，本轮出局者也能看到结果
	h.server.SendToPlayers(result.Recipients, codec.MustNewMessage(protocol.MsgBattleUpdate, protocol.BattleUpdatePayload{
		RoomID:       result.RoomID,
		Actions:      result.Actions,
		PlayerStates: result.PlayerStates,
	}))

	if result.Ended {
		h.server.SendToPlayers(result.Recipients, codec.MustNewMessage(protocol.MsgGameEnded, protocol.GameEndedPayload{
			RoomID:     result.RoomID,
			WinnerID:   result.WinnerID,
			WinnerName: result.WinnerName,
		}))

		// 房间回到等待状态，更新全局列表
		h.server.BroadcastRoomList()
		return
	}

	h.server.SendToPlayers(result.Room.Players, codec.MustNewMessage(protocol.MsgGameUpdate, protocol.GameUpdatePayload{
		RoomID: result.RoomID,
		State:  result.State,
	}))
}
