package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://127.0.0.1:5700", cfg.API.Root)
	assert.Empty(t, cfg.API.AccessToken)
	assert.Equal(t, 10*time.Second, cfg.APITimeout())

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/", cfg.Server.Path)

	assert.False(t, cfg.WebSocket.Enabled)
	assert.Equal(t, "/ws", cfg.WebSocket.Path)
	assert.Equal(t, 100, cfg.Bus.BufferSize)
	assert.True(t, cfg.Cron.Enabled)
	assert.NotEmpty(t, cfg.Cron.StorePath)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.API.Root = "ftp://host" }},
		{"missing host", func(c *Config) { c.API.Root = "http://" }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"ws path clash", func(c *Config) { c.WebSocket.Enabled = true; c.WebSocket.Path = "/" }},
		{"negative buffer", func(c *Config) { c.Bus.BufferSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAPITimeoutDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = 0
	assert.Equal(t, time.Duration(0), cfg.APITimeout())
}

func TestLoadSaveConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	// 配置文件不存在时返回默认配置
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	cfg.API.AccessToken = "test-token"
	cfg.Server.Port = 9000
	require.NoError(t, SaveConfig(cfg))

	info, err := os.Stat(GetConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-token", loaded.API.AccessToken)
	assert.Equal(t, 9000, loaded.Server.Port)
}

func TestLoadConfigAcceptsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{
  // 网关地址
  "api": {"root": "http://10.0.0.2:5700/", "timeout": 3,},
  /* 上报 */
  "server": {"port": 5701, "secret": "abc"},
}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:5700", cfg.API.Root)
	assert.Equal(t, 3*time.Second, cfg.APITimeout())
	assert.Equal(t, 5701, cfg.Server.Port)
	assert.Equal(t, "abc", cfg.Server.Secret)
	// 未出现的字段保留默认值
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api": [}`), 0600))

	_, err := LoadConfigFrom(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api":{"root":"http://file:5700","accessToken":"from-file"}}`), 0600))

	t.Setenv("CQHTTP_API_ROOT", "http://env:5700")
	t.Setenv("CQHTTP_ACCESS_TOKEN", "from-env")
	t.Setenv("CQHTTP_API_TIMEOUT", "7")
	t.Setenv("CQHTTP_SECRET", "env-secret")
	t.Setenv("CQHTTP_PORT", "6000")

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:5700", cfg.API.Root)
	assert.Equal(t, "from-env", cfg.API.AccessToken)
	assert.Equal(t, 7*time.Second, cfg.APITimeout())
	assert.Equal(t, "env-secret", cfg.Server.Secret)
	assert.Equal(t, 6000, cfg.Server.Port)
}

func TestEnvOverrideInvalid(t *testing.T) {
	t.Setenv("CQHTTP_PORT", "not-a-port")
	_, err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadConfigExpandsStorePath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"tilde", "~/jobs.json", filepath.Join(tmpDir, "jobs.json")},
		{"env", "$HOME/cron/jobs.json", filepath.Join(tmpDir, "cron", "jobs.json")},
	}

	path := filepath.Join(tmpDir, "config.json")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := fmt.Sprintf(`{"cron":{"storePath":%q}}`, tt.value)
			require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

			loaded, err := LoadConfigFrom(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, loaded.Cron.StorePath)
		})
	}
}
