package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"
)

// APIConfig OneBot HTTP API 配置
type APIConfig struct {
	Root        string `json:"root" mapstructure:"root" env:"CQHTTP_API_ROOT"`
	AccessToken string `json:"accessToken,omitempty" mapstructure:"accessToken" env:"CQHTTP_ACCESS_TOKEN"`
	Timeout     int    `json:"timeout" mapstructure:"timeout" env:"CQHTTP_API_TIMEOUT"` // 秒，0 表示不限制
	SelfID      int64  `json:"selfId,omitempty" mapstructure:"selfId" env:"CQHTTP_SELF_ID"`
}

// ServerConfig 上报接收配置
type ServerConfig struct {
	Host         string `json:"host" mapstructure:"host" env:"CQHTTP_HOST"`
	Port         int    `json:"port" mapstructure:"port" env:"CQHTTP_PORT"`
	Path         string `json:"path" mapstructure:"path"`
	Secret       string `json:"secret,omitempty" mapstructure:"secret" env:"CQHTTP_SECRET"`
	MaxBodyBytes int64  `json:"maxBodyBytes,omitempty" mapstructure:"maxBodyBytes"`
}

// WebSocketConfig 反向 WebSocket 配置，与 HTTP 上报共用监听地址
type WebSocketConfig struct {
	Enabled      bool     `json:"enabled" mapstructure:"enabled"`
	Path         string   `json:"path,omitempty" mapstructure:"path"`
	AllowOrigins []string `json:"allowOrigins,omitempty" mapstructure:"allowOrigins"`
}

// BusConfig 队列配置
type BusConfig struct {
	BufferSize int `json:"bufferSize" mapstructure:"bufferSize"`
}

// CronConfig 定时消息配置
type CronConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	StorePath string `json:"storePath,omitempty" mapstructure:"storePath"`
}

// Config 根配置
type Config struct {
	API       APIConfig       `json:"api" mapstructure:"api"`
	Server    ServerConfig    `json:"server" mapstructure:"server"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
	Bus       BusConfig       `json:"bus" mapstructure:"bus"`
	Cron      CronConfig      `json:"cron" mapstructure:"cron"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Root:    "http://127.0.0.1:5700",
			Timeout: 10,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			Path:         "/",
			MaxBodyBytes: 1 << 20,
		},
		WebSocket: WebSocketConfig{
			Enabled: false,
			Path:    "/ws",
		},
		Bus: BusConfig{
			BufferSize: 100,
		},
		Cron: CronConfig{
			Enabled:   true,
			StorePath: filepath.Join(GetDataDir(), "cron", "jobs.json"),
		},
	}
}

// APITimeout 调用超时
func (c *Config) APITimeout() time.Duration {
	if c.API.Timeout <= 0 {
		return 0
	}
	return time.Duration(c.API.Timeout) * time.Second
}

// Validate 检查配置
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.Root)
	if err != nil {
		return fmt.Errorf("api.root: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.root: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api.root: missing host")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d out of range", c.Server.Port)
	}
	if c.WebSocket.Enabled && c.WebSocket.Path == c.Server.Path {
		return fmt.Errorf("websocket.path must differ from server.path")
	}
	if c.Bus.BufferSize < 0 {
		return fmt.Errorf("bus.bufferSize: must not be negative")
	}
	return nil
}
