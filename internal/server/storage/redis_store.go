package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/card-battle-arena/internal/protocol"
)

const (
	// Redis key 前缀
	roomKeyPrefix = "room:"
	chatKeyPrefix = "chat:"
	userKeyPrefix = "user:"

	// 房间数据过期时间
	roomExpiration = 2 * time.Hour

	// 每个房间保留的聊天记录条数
	chatHistoryLimit = 100
)

// User 用户账号记录
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// --- 房间存储 ---

// SaveRoom 保存房间快照到 Redis
func (rs *RedisStore) SaveRoom(ctx context.Context, info protocol.RoomInfo) error {
	jsonData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	key := roomKeyPrefix + info.ID
	return rs.client.Set(ctx, key, jsonData, roomExpiration).Err()
}

// LoadRoom 从 Redis 加载房间快照，不存在返回 nil
func (rs *RedisStore) LoadRoom(ctx context.Context, roomID string) (*protocol.RoomInfo, error) {
	key := roomKeyPrefix + roomID
	data, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var info protocol.RoomInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}

	return &info, nil
}

// DeleteRoom 从 Redis 删除房间及其聊天记录
func (rs *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	return rs.client.Del(ctx, roomKeyPrefix+roomID, chatKeyPrefix+roomID).Err()
}

// --- 聊天存储 ---

// SaveMessage 追加一条聊天消息，超出上限的最早记录被裁剪
func (rs *RedisStore) SaveMessage(ctx context.Context, msg protocol.ChatMessage) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化聊天消息失败: %w", err)
	}

	key := chatKeyPrefix + msg.RoomID
	pipe := rs.client.Pipeline()
	pipe.RPush(ctx, key, jsonData)
	pipe.LTrim(ctx, key, -chatHistoryLimit, -1)
	pipe.Expire(ctx, key, roomExpiration)
	_, err = pipe.Exec(ctx)
	return err
}

// LoadMessages 加载房间最近的聊天消息，按时间正序返回
func (rs *RedisStore) LoadMessages(ctx context.Context, roomID string, limit int64) ([]protocol.ChatMessage, error) {
	if limit <= 0 || limit > chatHistoryLimit {
		limit = chatHistoryLimit
	}

	key := chatKeyPrefix + roomID
	items, err := rs.client.LRange(ctx, key, -limit, -1).Result()
	if err != nil {
		return nil, err
	}

	msgs := make([]protocol.ChatMessage, 0, len(items))
	for _, item := range items {
		var msg protocol.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue // 跳过损坏的记录
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// DeleteMessages 删除房间的聊天记录
func (rs *RedisStore) DeleteMessages(ctx context.Context, roomID string) error {
	return rs.client.Del(ctx, chatKeyPrefix+roomID).Err()
}

// --- 用户存储 ---

// ErrUserExists 用户名已被注册
var ErrUserExists = errors.New("用户名已存在")

// CreateUser 创建用户，用户名唯一
func (rs *RedisStore) CreateUser(ctx context.Context, user User) error {
	jsonData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("序列化用户数据失败: %w", err)
	}

	key := userKeyPrefix + user.Username
	ok, err := rs.client.SetNX(ctx, key, jsonData, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserExists
	}
	return nil
}

// GetUser 按用户名查找用户，不存在返回 nil
func (rs *RedisStore) GetUser(ctx context.Context, username string) (*User, error) {
	data, err := rs.client.Get(ctx, userKeyPrefix+username).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("反序列化用户数据失败: %w", err)
	}
	return &user, nil
}
