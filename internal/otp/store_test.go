package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore(300 * time.Second)
	ctx := context.Background()

	if err := store.Put(ctx, "+79123456789", "1234"); err != nil {
		t.Fatalf("put: %v", err)
	}

	code, err := store.Get(ctx, "+79123456789")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if code != "1234" {
		t.Fatalf("expected code 1234, got %q", code)
	}

	if _, err := store.Get(ctx, "+70000000000"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound for unknown phone, got %v", err)
	}
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	store := NewMemoryStore(300 * time.Second)
	ctx := context.Background()

	if err := store.Put(ctx, "+79123456789", "1111"); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := store.Put(ctx, "+79123456789", "2222"); err != nil {
		t.Fatalf("second put: %v", err)
	}

	code, err := store.Get(ctx, "+79123456789")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if code != "2222" {
		t.Fatalf("expected latest code 2222, got %q", code)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(300 * time.Second)
	ctx := context.Background()

	base := time.Now()
	store.SetClock(func() time.Time { return base })

	if err := store.Put(ctx, "+79123456789", "1234"); err != nil {
		t.Fatalf("put: %v", err)
	}

	store.SetClock(func() time.Time { return base.Add(299 * time.Second) })
	if _, err := store.Get(ctx, "+79123456789"); err != nil {
		t.Fatalf("expected code still valid before TTL, got %v", err)
	}

	store.SetClock(func() time.Time { return base.Add(301 * time.Second) })
	if _, err := store.Get(ctx, "+79123456789"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound after TTL, got %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(300 * time.Second)
	ctx := context.Background()

	if err := store.Put(ctx, "+79123456789", "1234"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "+79123456789"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "+79123456789"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound after delete, got %v", err)
	}

	// Deleting an absent entry is fine.
	if err := store.Delete(ctx, "+79123456789"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, 300*time.Second), mr
}

func TestRedisStorePutGet(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "+79123456789", "1234"); err != nil {
		t.Fatalf("put: %v", err)
	}

	code, err := store.Get(ctx, "+79123456789")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if code != "1234" {
		t.Fatalf("expected code 1234, got %q", code)
	}

	if _, err := store.Get(ctx, "+70000000000"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestRedisStoreReplacesPriorEntry(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "+79123456789", "1111"); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := store.Put(ctx, "+79123456789", "2222"); err != nil {
		t.Fatalf("second put: %v", err)
	}

	code, err := store.Get(ctx, "+79123456789")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if code != "2222" {
		t.Fatalf("expected latest code 2222, got %q", code)
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "+79123456789", "1234"); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(301 * time.Second)

	if _, err := store.Get(ctx, "+79123456789"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound after TTL, got %v", err)
	}
}

func TestRedisStoreDeleteConsumesEntry(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "+79123456789", "1234"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "+79123456789"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "+79123456789"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound after delete, got %v", err)
	}
}
