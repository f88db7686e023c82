package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return mr, c
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	_, c := newTestRedis(t)

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("miss: hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(got) != "v" {
		t.Fatalf("Get = %q, %v, %v", got, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key should miss")
	}
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestRedis(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("k"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired key should miss")
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), "redis://"+addr)
	if !errors.Is(err, ErrBackend) {
		t.Errorf("NewRedisCache error = %v, want ErrBackend", err)
	}
}

func TestRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "http://nope"); err == nil {
		t.Error("NewRedisCache should reject non-redis URLs")
	}
}
