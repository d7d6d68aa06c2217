package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Token store backends selectable through WALLET_TOKEN_STORE.
const (
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

const (
	defaultAPIBaseURL  = "http://localhost:8080/api"
	defaultHTTPTimeout = 30 * time.Second
	defaultDeviceID    = "default"
)

// ClientConfig configures the device-side session client.
type ClientConfig struct {
	APIBaseURL     string
	TokenStore     string
	TokenStorePath string
	DeviceID       string
	RedisURL       string
	HTTPTimeout    time.Duration
	LogLevel       string
}

// LoadClient reads the device-side configuration from the environment.
func LoadClient() (ClientConfig, error) {
	cfg := ClientConfig{
		APIBaseURL:     strings.TrimSuffix(getEnv("WALLET_API_BASE_URL", defaultAPIBaseURL), "/"),
		TokenStore:     strings.ToLower(getEnv("WALLET_TOKEN_STORE", TokenStoreFile)),
		TokenStorePath: os.Getenv("WALLET_TOKEN_STORE_PATH"),
		DeviceID:       getEnv("WALLET_DEVICE_ID", defaultDeviceID),
		RedisURL:       os.Getenv("REDIS_URL"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		HTTPTimeout:    defaultHTTPTimeout,
	}

	if v := os.Getenv("WALLET_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("invalid WALLET_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}

	switch cfg.TokenStore {
	case TokenStoreFile:
		if cfg.TokenStorePath == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return ClientConfig{}, fmt.Errorf("resolve token store path: %w", err)
			}
			cfg.TokenStorePath = filepath.Join(dir, "walletsession", "tokens.json")
		}
	case TokenStoreRedis:
		if cfg.RedisURL == "" {
			return ClientConfig{}, fmt.Errorf("REDIS_URL must be set when WALLET_TOKEN_STORE=redis")
		}
	case TokenStoreMemory:
	default:
		return ClientConfig{}, fmt.Errorf("unknown WALLET_TOKEN_STORE %q", cfg.TokenStore)
	}

	return cfg, nil
}
