package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/palemoky/card-battle-arena/internal/config"
	"github.com/palemoky/card-battle-arena/internal/server/storage"
)

var (
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	// ErrInvalidToken 令牌无效或已过期
	ErrInvalidToken = errors.New("令牌无效")
)

// Claims JWT 载荷
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service 账号与令牌服务
type Service struct {
	store *storage.RedisStore
	cfg   *config.AuthConfig
}

// NewService 创建认证服务
func NewService(store *storage.RedisStore, cfg *config.AuthConfig) *Service {
	return &Service{store: store, cfg: cfg}
}

// Register 注册新用户，密码以 bcrypt 哈希存储
func (s *Service) Register(ctx context.Context, username, password string) (*storage.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	user := storage.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().Unix(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login 校验密码并签发 JWT
func (s *Service) Login(ctx context.Context, username, password string) (string, *storage.User, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTLDuration())),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("签发令牌失败: %w", err)
	}
	return token, user, nil
}

// Verify 校验 JWT，返回用户 ID 与用户名
func (s *Service) Verify(tokenString string) (string, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("不支持的签名算法: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.Username, nil
}
