package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Auth   AuthConfig   `yaml:"auth"`
	Game   GameConfig   `yaml:"game"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	TokenTTL  int    `yaml:"token_ttl"` // 令牌有效期（小时）
}

// GameConfig 游戏配置
type GameConfig struct {
	CardCost      int `yaml:"card_cost"`      // 卡牌固定价格
	StartingHP    int `yaml:"starting_hp"`    // 玩家初始生命值
	StartingMoney int `yaml:"starting_money"` // 玩家初始金币
	MaxPlayers    int `yaml:"max_players"`    // 房间人数上限
}

// TokenTTLDuration 返回令牌有效时长
func (c *AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(c.TokenTTL) * time.Hour
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// 设置默认值
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "your-secret-key"
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 1
	}
	if cfg.Game.CardCost == 0 {
		cfg.Game.CardCost = 100
	}
	if cfg.Game.StartingHP == 0 {
		cfg.Game.StartingHP = 100
	}
	if cfg.Game.StartingMoney == 0 {
		cfg.Game.StartingMoney = 1000
	}
	if cfg.Game.MaxPlayers == 0 {
		cfg.Game.MaxPlayers = 4
	}

	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Auth: AuthConfig{
			JWTSecret: "your-secret-key",
			TokenTTL:  1,
		},
		Game: GameConfig{
			CardCost:      100,
			StartingHP:    100,
			StartingMoney: 1000,
			MaxPlayers:    4,
		},
	}
}
