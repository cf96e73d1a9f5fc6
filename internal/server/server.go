package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/card-battle-arena/internal/config"
	"github.com/palemoky/card-battle-arena/internal/game/card"
	"github.com/palemoky/card-battle-arena/internal/game/room"
	"github.com/palemoky/card-battle-arena/internal/game/session"
	"github.com/palemoky/card-battle-arena/internal/server/auth"
	"github.com/palemoky/card-battle-arena/internal/server/handler"
	"github.com/palemoky/card-battle-arena/internal/server/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源，生产环境需要限制
	},
	EnableCompression: false,
}

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client
	redisStore  *storage.RedisStore
	catalog     *card.Catalog
	registry    *room.Registry
	sessions    *session.Manager
	authService *auth.Service
	handler     *handler.Handler

	clients   map[string]*Client // 连接 ID → 客户端
	players   map[string]*Client // 参与者 ID → 客户端
	clientsMu sync.RWMutex
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) (*Server, error) {
	// 初始化 Redis 客户端
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 测试 Redis 连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	s := &Server{
		config:     cfg,
		redis:      rdb,
		redisStore: storage.NewRedisStore(rdb),
		catalog:    card.NewCatalog(),
		clients:    make(map[string]*Client),
		players:    make(map[string]*Client),
	}

	// 初始化对局管理器与房间注册表
	// 房间解散时同步销毁对应的对局
	s.sessions = session.NewManager(s.redisStore, s.catalog, &cfg.Game)
	s.registry = room.NewRegistry(s.redisStore, &cfg.Game, s.sessions.Destroy)

	// 初始化认证服务
	s.authService = auth.NewService(s.redisStore, &cfg.Auth)

	// 初始化消息处理器
	s.handler = handler.NewHandler(handler.Deps{
		Server:    s,
		Registry:  s.registry,
		Sessions:  s.sessions,
		ChatStore: s.redisStore,
		Verifier:  s.authService,
	})

	return s, nil
}

// Start 启动服务器
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/login", s.handleLogin)

	log.Printf("🚀 服务器启动在 ws://%s/ws (CPU核心数: %d)", addr, runtime.NumCPU())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		IdleTimeout:       60 * time.Second,
	}
	return server.ListenAndServe()
}
