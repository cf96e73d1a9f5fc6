package types

import (
	"context"

	"github.com/palemoky/card-battle-arena/internal/protocol"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	GetOnlineCount() int
	BroadcastRoomList()
	SendToPlayers(playerIDs []string, msg *protocol.Message)
	GetClientByID(id string) ClientInterface
	RegisterClient(id string, client ClientInterface)
	UnregisterClient(id string)
}

// ClientInterface 定义客户端接口
// 连接 ID 与参与者 ID 分离：前者标识 WebSocket 连接，后者标识游戏内身份
type ClientInterface interface {
	GetID() string
	GetPlayerID() string
	GetName() string
	IsGuest() bool
	SetIdentity(playerID, name string, guest bool)
	SendMessage(msg *protocol.Message)
	Close()
}

// ChatStore 聊天消息持久化接口
type ChatStore interface {
	SaveMessage(ctx context.Context, msg protocol.ChatMessage) error
	LoadMessages(ctx context.Context, roomID string, limit int64) ([]protocol.ChatMessage, error)
}

// TokenVerifier 令牌校验接口
type TokenVerifier interface {
	Verify(token string) (playerID, username string, err error)
}
