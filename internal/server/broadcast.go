package server

import (
	"github.com/palemoky/card-battle-arena/internal/protocol"
	"github.com/palemoky/card-battle-arena/internal/protocol/codec"
)

// GetOnlineCount 获取在线人数（按需调用）
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Broadcast 广播消息给所有客户端
func (s *Server) Broadcast(msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		client.SendMessage(msg)
	}
}

// BroadcastRoomList 向所有客户端广播最新房间列表
// 每次房间成员或状态变化后都会触发
func (s *Server) BroadcastRoomList() {
	s.Broadcast(codec.MustNewMessage(protocol.MsgRoomList, protocol.RoomListPayload{
		Rooms: s.registry.List(),
	}))
}

// SendToPlayers 按参与者 ID 发送消息，不在线的参与者跳过
func (s *Server) SendToPlayers(playerIDs []string, msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, id := range playerIDs {
		if client, ok := s.players[id]; ok {
			client.SendMessage(msg)
		}
	}
}
