package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryRefreshTokenStore(t *testing.T) {
	store := NewMemoryRefreshTokenStore()
	ctx := context.Background()

	if err := store.Store(ctx, "jti-1", "u1", time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}
	ok, err := store.Exists(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("expected jti to exist, ok=%v err=%v", ok, err)
	}

	if err := store.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = store.Exists(ctx, "jti-1")
	if err != nil || ok {
		t.Fatalf("expected jti revoked, ok=%v err=%v", ok, err)
	}

	// TTL vencido se reporta como inexistente.
	if err := store.Store(ctx, "jti-2", "u1", -time.Second); err != nil {
		t.Fatalf("store expired: %v", err)
	}
	ok, err = store.Exists(ctx, "jti-2")
	if err != nil || ok {
		t.Fatalf("expected expired jti to be gone, ok=%v err=%v", ok, err)
	}
}

func TestRedisRefreshTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisRefreshTokenStore(client)
	ctx := context.Background()

	if err := store.Store(ctx, "jti-1", "u1", time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}
	ok, err := store.Exists(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("expected jti to exist, ok=%v err=%v", ok, err)
	}

	mr.FastForward(2 * time.Minute)
	ok, err = store.Exists(ctx, "jti-1")
	if err != nil || ok {
		t.Fatalf("expected jti expired, ok=%v err=%v", ok, err)
	}

	if err := store.Store(ctx, "jti-2", "u1", time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := store.Revoke(ctx, "jti-2"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = store.Exists(ctx, "jti-2")
	if err != nil || ok {
		t.Fatalf("expected jti revoked, ok=%v err=%v", ok, err)
	}
}

func TestRedisRefreshTokenStore_NilClient(t *testing.T) {
	if store := NewRedisRefreshTokenStore(nil); store != nil {
		t.Fatalf("expected nil store for nil client")
	}
}
