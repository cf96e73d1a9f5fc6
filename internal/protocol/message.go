package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgAuth MessageType = "auth" // 绑定已认证身份
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom  MessageType = "create_room"   // 创建房间
	MsgJoinRoom    MessageType = "join_room"     // 加入房间
	MsgLeaveRoom   MessageType = "leave_room"    // 离开房间
	MsgGetRoomList MessageType = "get_room_list" // 获取房间列表

	// 游戏操作
	MsgStartGame MessageType = "start_game" // 房主开始游戏
	MsgBuyCard   MessageType = "buy_card"   // 购买卡牌
	MsgPlaceCard MessageType = "place_card" // 放置卡牌
	MsgReady     MessageType = "ready"      // 准备完毕，触发结算

	// 聊天
	MsgChat MessageType = "chat" // 房间聊天
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功（含参与者身份）
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间相关
	MsgRoomList   MessageType = "room_list"   // 房间列表（全局广播）
	MsgRoomJoined MessageType = "room_joined" // 加入房间成功（仅发起者）
	MsgRoomLeft   MessageType = "room_left"   // 离开房间成功（仅发起者）

	// 游戏流程
	MsgGameStarted  MessageType = "game_started"  // 游戏开始
	MsgPlayerUpdate MessageType = "player_update" // 玩家经济/状态更新
	MsgGameUpdate   MessageType = "game_update"   // 游戏状态更新
	MsgBattleUpdate MessageType = "battle_update" // 本轮战斗结算
	MsgGameEnded    MessageType = "game_ended"    // 游戏结束

	// 错误
	MsgError MessageType = "error" // 错误消息
)

// --- 客户端请求 Payloads ---

// AuthPayload 绑定身份请求
type AuthPayload struct {
	Token string `json:"token"` // 登录接口签发的 JWT
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	Name string `json:"name"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomID string `json:"room_id"`
}

// LeaveRoomPayload 离开房间请求
type LeaveRoomPayload struct {
	RoomID string `json:"room_id"`
}

// StartGamePayload 开始游戏请求
type StartGamePayload struct {
	RoomID string `json:"room_id"`
}

// BuyCardPayload 购买卡牌请求
type BuyCardPayload struct {
	RoomID string `json:"room_id"`
	CardID string `json:"card_id"`
}

// PlaceCardPayload 放置卡牌请求
type PlaceCardPayload struct {
	RoomID   string `json:"room_id"`
	CardID   string `json:"card_id"`
	Position int    `json:"position"`
}

// ReadyPayload 准备请求
type ReadyPayload struct {
	RoomID string `json:"room_id"`
}

// ChatPayload 聊天请求
type ChatPayload struct {
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Guest      bool   `json:"guest"` // 未登录时为游客身份
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// RoomListPayload 房间列表
type RoomListPayload struct {
	Rooms []RoomInfo `json:"rooms"`
}

// RoomJoinedPayload 加入房间成功响应
type RoomJoinedPayload struct {
	Room RoomInfo `json:"room"`
}

// RoomLeftPayload 离开房间成功响应
type RoomLeftPayload struct {
	RoomID string `json:"room_id"`
}

// GameStartedPayload 游戏开始通知
type GameStartedPayload struct {
	Room  RoomInfo      `json:"room"`
	State GameStateInfo `json:"state"`
}

// PlayerUpdatePayload 玩家状态更新通知
type PlayerUpdatePayload struct {
	RoomID       string            `json:"room_id"`
	PlayerStates []PlayerStateInfo `json:"player_states"`
}

// GameUpdatePayload 游戏状态更新通知
type GameUpdatePayload struct {
	RoomID string        `json:"room_id"`
	State  GameStateInfo `json:"state"`
}

// BattleUpdatePayload 战斗结算通知
type BattleUpdatePayload struct {
	RoomID       string             `json:"room_id"`
	Actions      []BattleActionInfo `json:"actions"`
	PlayerStates []PlayerStateInfo  `json:"player_states"`
}

// GameEndedPayload 游戏结束通知
type GameEndedPayload struct {
	RoomID     string `json:"room_id"`
	WinnerID   string `json:"winner_id,omitempty"` // 无人存活时为空
	WinnerName string `json:"winner_name,omitempty"`
}

// ChatMessage 聊天消息（持久化与回显共用同一形状）
type ChatMessage struct {
	User      string `json:"user"`
	Text      string `json:"text"`
	RoomID    string `json:"room_id"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- 通用数据结构 ---

// RoomInfo 房间快照（持久化与广播共用同一形状）
type RoomInfo struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Status       string            `json:"status"` // waiting / in_progress
	Players      []string          `json:"players"`
	MaxPlayers   int               `json:"max_players"`
	CreatedAt    int64             `json:"created_at"`
	GameStarted  bool              `json:"game_started"`
	CreatorID    string            `json:"creator"`
	PlayerStates []PlayerStateInfo `json:"player_states"`
}

// PlayerStateInfo 玩家状态
type PlayerStateInfo struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	HP    int      `json:"hp"`
	Money int      `json:"money"`
	Cards []string `json:"cards"`
}

// GameStateInfo 对局状态
type GameStateInfo struct {
	Phase  string                     `json:"phase"` // preparing / resolving
	Round  int                        `json:"round"`
	Boards map[string][]PlacementInfo `json:"boards"`
}

// PlacementInfo 棋盘上的一次放置
type PlacementInfo struct {
	CardID   string `json:"card_id"`
	Position int    `json:"position"`
}

// BattleActionInfo 战斗中的一次行动
type BattleActionInfo struct {
	PlayerID string `json:"player_id"`
	CardID   string `json:"card_id"`
	Speed    int    `json:"speed"`
	Attack   int    `json:"attack"`
	TargetID string `json:"target_id,omitempty"`
	TargetHP int    `json:"target_hp"`
	Skipped  bool   `json:"skipped"` // 无存活对手时跳过
}

// --- 错误码 ---
const (
	ErrCodeUnknown      = 1000
	ErrCodeInvalidMsg   = 1001
	ErrCodeUnauthorized = 1002
	ErrCodeInternal     = 1003

	ErrCodeRoomNotFound   = 2001
	ErrCodeRoomFull       = 2002
	ErrCodeNotAMember     = 2003
	ErrCodeAlreadyStarted = 2004

	ErrCodeInvalidPhase      = 3001
	ErrCodeUnknownCard       = 3002
	ErrCodeInsufficientFunds = 3003
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:      "未知错误",
	ErrCodeInvalidMsg:   "无效的消息格式",
	ErrCodeUnauthorized: "没有权限执行该操作",
	ErrCodeInternal:     "内部错误，请稍后重试",

	ErrCodeRoomNotFound:   "房间不存在",
	ErrCodeRoomFull:       "房间已满",
	ErrCodeNotAMember:     "您不在房间中",
	ErrCodeAlreadyStarted: "游戏已开始",

	ErrCodeInvalidPhase:      "当前阶段无法执行该操作",
	ErrCodeUnknownCard:       "卡牌不存在",
	ErrCodeInsufficientFunds: "金币不足",
}
