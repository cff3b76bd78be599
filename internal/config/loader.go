package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/tidwall/jsonc"
)

// GetConfigDir 返回配置目录
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".cqhttp-go"
	}
	return filepath.Join(homeDir, ".cqhttp-go")
}

// GetConfigPath 返回配置文件路径
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.json")
}

// GetDataDir 返回数据目录
func GetDataDir() string {
	return GetConfigDir()
}

// GetLogsDir 返回日志目录
func GetLogsDir() string {
	return filepath.Join(GetConfigDir(), "logs")
}

// LoadConfig 加载默认路径的配置
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(GetConfigPath())
}

// LoadConfigFrom 从文件加载配置，文件允许注释与尾逗号，之后应用环境变量
func LoadConfigFrom(configPath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// 没有配置文件时使用默认配置
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	config.Cron.StorePath = expandPath(config.Cron.StorePath)
	config.API.Root = strings.TrimRight(config.API.Root, "/")

	return config, nil
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				return home
			}
			if strings.HasPrefix(path, "~/") {
				return filepath.Join(home, path[2:])
			}
		}
	}

	return path
}

// SaveConfig 保存配置到默认路径
func SaveConfig(config *Config) error {
	configDir := GetConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(GetConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
