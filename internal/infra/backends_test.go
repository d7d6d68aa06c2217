package infra

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/unihub/walletsession/internal/config"
	"github.com/unihub/walletsession/internal/logging"
)

func TestConnectWithoutURLsFallsBack(t *testing.T) {
	b, err := Connect(context.Background(), config.Config{AppEnv: "development"}, logging.Discard())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if b.DB != nil || b.Cache != nil {
		t.Fatalf("expected no backends, got %+v", b)
	}
	b.Close(logging.Discard())
}

func TestConnectRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	b, err := Connect(context.Background(), config.Config{RedisURL: "redis://" + mr.Addr()}, logging.Discard())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer b.Close(logging.Discard())
	if b.Cache == nil {
		t.Fatalf("expected redis client")
	}
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), "not-a-url"); err == nil {
		t.Fatalf("expected parse error")
	}
}
