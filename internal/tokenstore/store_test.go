package tokenstore

import (
	"context"
	"errors"
	"testing"

	"github.com/unihub/walletsession/internal/logging"
	"github.com/unihub/walletsession/internal/walleterr"
)

func TestSetCacheAndRead(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryStorage(), logging.Discard())

	if err := store.SetCache(ctx, "0821234567", 42, "cus_1"); err != nil {
		t.Fatalf("set cache: %v", err)
	}

	phone, ok := store.CachedPhoneNumber(ctx)
	if !ok || phone != "0821234567" {
		t.Fatalf("expected cached phone, got %q %v", phone, ok)
	}
	id, ok := store.CachedUserID(ctx)
	if !ok || id != 42 {
		t.Fatalf("expected cached user id 42, got %d %v", id, ok)
	}
	customer, ok := store.CachedCustomerID(ctx)
	if !ok || customer != "cus_1" {
		t.Fatalf("expected cached customer id, got %q %v", customer, ok)
	}
}

func TestSetCacheWithoutCustomerRemovesStaleCustomer(t *testing.T) {
	ctx := context.Background()
	store := New(NewMemoryStorage(), logging.Discard())

	if err := store.SetCache(ctx, "0821234567", 42, "cus_1"); err != nil {
		t.Fatalf("set cache: %v", err)
	}
	if err := store.SetCache(ctx, "0830000000", 7, ""); err != nil {
		t.Fatalf("set cache: %v", err)
	}
	if _, ok := store.CachedCustomerID(ctx); ok {
		t.Fatalf("expected customer id to be removed")
	}
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	store := New(mem, logging.Discard())

	if err := store.SetCache(ctx, "0821234567", 42, "cus_1"); err != nil {
		t.Fatalf("set cache: %v", err)
	}
	if err := store.ClearCache(ctx); err != nil {
		t.Fatalf("clear cache: %v", err)
	}
	if _, ok := store.CachedPhoneNumber(ctx); ok {
		t.Fatalf("expected phone cache miss after clear")
	}
	if mem.Len() != 0 {
		t.Fatalf("expected empty storage, got %d keys", mem.Len())
	}
}

func TestCachedUserIDUnparsable(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	_ = mem.MultiSet(ctx, map[string]string{KeyUserID: "not-a-number"})
	store := New(mem, logging.Discard())

	if _, ok := store.CachedUserID(ctx); ok {
		t.Fatalf("expected unparsable user id to be a miss")
	}
}

func TestReadErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	store := New(&FailingStorage{FailReads: true}, logging.Discard())

	if _, ok := store.CachedPhoneNumber(ctx); ok {
		t.Fatalf("expected miss on read failure")
	}
	if _, ok := store.CachedUserID(ctx); ok {
		t.Fatalf("expected miss on read failure")
	}
	if _, ok := store.CachedCustomerID(ctx); ok {
		t.Fatalf("expected miss on read failure")
	}
}

func TestWriteErrorsAreClassified(t *testing.T) {
	ctx := context.Background()
	store := New(&FailingStorage{FailWrites: true}, logging.Discard())

	err := store.SetCache(ctx, "0821234567", 42, "")
	if !walleterr.Is(err, walleterr.KindStorage) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	if !errors.Is(err, ErrInjected) {
		t.Fatalf("expected wrapped injected error, got %v", err)
	}
	if err := store.ClearCache(ctx); !walleterr.Is(err, walleterr.KindStorage) {
		t.Fatalf("expected storage failure, got %v", err)
	}
}

func TestSetCacheWithoutCustomerIsOneWrite(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	counting := &FailingStorage{Inner: mem}
	store := New(counting, logging.Discard())

	if err := store.SetCache(ctx, "0821234567", 42, "cus_1"); err != nil {
		t.Fatalf("set cache: %v", err)
	}
	counting.Writes = 0
	if err := store.SetCache(ctx, "0830000000", 7, ""); err != nil {
		t.Fatalf("set cache: %v", err)
	}
	if counting.Writes != 1 {
		t.Fatalf("expected a single storage write, got %d", counting.Writes)
	}

	// a failed write leaves the previous identity intact
	counting.FailWrites = true
	if err := store.SetCache(ctx, "0840000000", 9, ""); err == nil {
		t.Fatalf("expected write failure")
	}
	if phone, _ := store.CachedPhoneNumber(ctx); phone != "0830000000" {
		t.Fatalf("expected previous phone kept, got %q", phone)
	}
	if _, ok := store.CachedCustomerID(ctx); ok {
		t.Fatalf("expected no customer id")
	}
}
