package server

import "log"

// Shutdown 优雅关闭：断开所有客户端并释放 Redis 连接
func (s *Server) Shutdown() {
	s.clientsMu.Lock()
	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.clientsMu.Unlock()

	for _, c := range clients {
		c.Close()
	}

	if err := s.redis.Close(); err != nil {
		log.Printf("关闭 Redis 连接失败: %v", err)
	}

	log.Println("✅ 服务器已关闭")
}
