package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, KeyPhoneNumber); err != nil || ok {
		t.Fatalf("expected empty storage, got ok=%v err=%v", ok, err)
	}

	if err := s.MultiSet(ctx, map[string]string{KeyPhoneNumber: "0821234567", KeyUserID: "42"}); err != nil {
		t.Fatalf("multi set: %v", err)
	}
	v, ok, err := s.Get(ctx, KeyUserID)
	if err != nil || !ok || v != "42" {
		t.Fatalf("expected 42, got %q ok=%v err=%v", v, ok, err)
	}

	if err := s.MultiSet(ctx, map[string]string{KeyCustomerID: "cus_1"}); err != nil {
		t.Fatalf("multi set: %v", err)
	}
	if err := s.Update(ctx, map[string]string{KeyUserID: "7"}, []string{KeyCustomerID}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyCustomerID); ok {
		t.Fatalf("expected customer removed by update")
	}
	if v, _, _ := s.Get(ctx, KeyUserID); v != "7" {
		t.Fatalf("expected user id set by update, got %q", v)
	}

	if err := s.MultiRemove(ctx, KeyPhoneNumber, KeyUserID, KeyCustomerID); err != nil {
		t.Fatalf("multi remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyPhoneNumber); ok {
		t.Fatalf("expected phone removed")
	}
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	s := NewFileStorage(path)
	exerciseStorage(t, s)

	if err := s.MultiSet(context.Background(), map[string]string{KeyPhoneNumber: "0821234567"}); err != nil {
		t.Fatalf("multi set: %v", err)
	}
	reopened := NewFileStorage(path)
	v, ok, err := reopened.Get(context.Background(), KeyPhoneNumber)
	if err != nil || !ok || v != "0821234567" {
		t.Fatalf("expected value to survive reopen, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestFileStorageCorruptFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewFileStorage(path)
	if _, _, err := s.Get(context.Background(), KeyPhoneNumber); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRedisStorage(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exerciseStorage(t, NewRedisStorage(client, "device-a"))

	a := NewRedisStorage(client, "device-a")
	b := NewRedisStorage(client, "device-b")
	if err := a.MultiSet(context.Background(), map[string]string{KeyPhoneNumber: "1"}); err != nil {
		t.Fatalf("multi set: %v", err)
	}
	if _, ok, _ := b.Get(context.Background(), KeyPhoneNumber); ok {
		t.Fatalf("expected devices to be isolated")
	}
}
