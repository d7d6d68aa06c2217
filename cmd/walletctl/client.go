package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/unihub/walletsession/internal/config"
	"github.com/unihub/walletsession/internal/gateway"
	"github.com/unihub/walletsession/internal/infra"
	"github.com/unihub/walletsession/internal/lifecycle"
	"github.com/unihub/walletsession/internal/logging"
	"github.com/unihub/walletsession/internal/resolver"
	"github.com/unihub/walletsession/internal/tokenstore"
)

// client bundles the device-side components for one invocation.
type client struct {
	store    *tokenstore.Store
	gateway  *gateway.Gateway
	manager  *lifecycle.Manager
	resolver *resolver.Resolver
	logger   *slog.Logger
	redis    *redis.Client
}

func newClient(ctx context.Context, cfg config.ClientConfig, logOut io.Writer) (*client, error) {
	logger := logging.NewWithWriter(cfg.LogLevel, logOut)

	var storage tokenstore.Storage
	var rdb *redis.Client
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		var err error
		rdb, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		storage = tokenstore.NewRedisStorage(rdb, cfg.DeviceID)
	case config.TokenStoreMemory:
		storage = tokenstore.NewMemoryStorage()
	default:
		storage = tokenstore.NewFileStorage(cfg.TokenStorePath)
	}

	store := tokenstore.New(storage, logger)
	gw, err := gateway.New(gateway.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.HTTPTimeout}, store, logger)
	if err != nil {
		if rdb != nil {
			rdb.Close()
		}
		return nil, fmt.Errorf("build gateway: %w", err)
	}

	return &client{
		store:    store,
		gateway:  gw,
		manager:  lifecycle.NewManager(store, gw, logger),
		resolver: resolver.New(store, gw, logger),
		logger:   logger,
		redis:    rdb,
	}, nil
}

func (c *client) close() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.logger.Warn("close redis", "error", err)
		}
	}
}
