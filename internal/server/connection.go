package server

import (
	"log"
	"net"
	"net/http"

	"github.com/palemoky/card-battle-arena/internal/protocol"
	"github.com/palemoky/card-battle-arena/internal/protocol/codec"
	"github.com/palemoky/card-battle-arena/internal/types"
)

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}

	// 创建客户端，初始为游客身份
	client := NewClient(s, conn)
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		client.IP = host
	}
	s.registerClient(client)

	// 发送连接成功消息（含生成的游客身份）
	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:   client.GetPlayerID(),
		PlayerName: client.GetName(),
		Guest:      true,
	}))

	log.Printf("✅ 玩家 %s (%s) 已连接", client.GetName(), client.ID)

	// 启动客户端读写协程
	go client.ReadPump()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
	s.players[client.GetPlayerID()] = client
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		delete(s.players, client.GetPlayerID())
		log.Printf("❌ 玩家 %s (%s) 已断开", client.GetName(), client.ID)
	}
}

// Interface implementations for types.ServerInterface

func (s *Server) GetClientByID(id string) types.ClientInterface {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	if c, ok := s.players[id]; ok {
		return c
	}
	return nil
}

func (s *Server) RegisterClient(id string, client types.ClientInterface) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if c, ok := client.(*Client); ok {
		s.players[id] = c
	}
}

func (s *Server) UnregisterClient(id string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.players, id)
}
