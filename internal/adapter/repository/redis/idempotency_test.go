package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*IdempotencyStore, *redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewIdempotencyStore(client), client, mr
}

func TestIdempotencyStore_ReplaysCachedResponse(t *testing.T) {
	store, client, _ := newTestStore(t)
	ctx := context.Background()

	cached := `{"id":"entry-1","sequence":3}`
	if err := client.Set(ctx, store.prefix+"post-entry-abc", cached, time.Minute).Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	exists, resp, err := store.CheckAndSet(ctx, "post-entry-abc", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	if !exists {
		t.Fatal("expected key to exist")
	}
	if string(resp) != cached {
		t.Fatalf("expected cached entry response, got %s", resp)
	}
}

func TestIdempotencyStore_FirstCallerLocksKey(t *testing.T) {
	store, client, _ := newTestStore(t)
	ctx := context.Background()

	exists, resp, err := store.CheckAndSet(ctx, "post-entry-new", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}
	if exists || resp != nil {
		t.Fatalf("expected fresh key, got exists=%v resp=%s", exists, resp)
	}

	val, err := client.Get(ctx, store.prefix+"post-entry-new").Result()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if val != "processing" {
		t.Fatalf("expected placeholder lock, got %q", val)
	}

	// A concurrent retry sees the in-flight placeholder, not a fresh key.
	exists, resp, err = store.CheckAndSet(ctx, "post-entry-new", nil, time.Minute)
	if err != nil {
		t.Fatalf("second CheckAndSet failed: %v", err)
	}
	if !exists || string(resp) != "processing" {
		t.Fatalf("expected placeholder for concurrent caller, got exists=%v resp=%s", exists, resp)
	}
}

func TestIdempotencyStore_UpdateStoresFinalResponse(t *testing.T) {
	store, client, _ := newTestStore(t)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "close-period-1", nil, time.Minute); err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	final := `{"id":"p-1","state":"closed"}`
	if err := store.Update(ctx, "close-period-1", []byte(final), time.Minute); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	val, err := client.Get(ctx, store.prefix+"close-period-1").Result()
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if val != final {
		t.Fatalf("expected final response, got %q", val)
	}
}

func TestIdempotencyStore_KeyExpires(t *testing.T) {
	store, _, mr := newTestStore(t)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "post-entry-ttl", nil, time.Minute); err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	exists, _, err := store.CheckAndSet(ctx, "post-entry-ttl", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet after expiry failed: %v", err)
	}
	if exists {
		t.Fatal("expected key to have expired")
	}
}
