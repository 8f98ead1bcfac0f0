package redis

import (
	"errors"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

func redisProvider(t *testing.T) (*Redis, goredis.UniversalClient) {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis integration test")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := rdb.Ping(t.Context()).Err(); err != nil {
		t.Fatalf("cannot reach Redis at %s: %v", addr, err)
	}
	p, err := New(Config{Client: rdb, CloseClient: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close(t.Context()) })
	return p, rdb
}

func TestNilClient(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("err = %v, want ErrNilClient", err)
	}
}

func TestGetSetDel(t *testing.T) {
	p, _ := redisProvider(t)
	ctx := t.Context()
	key := "test:gracecache:" + t.Name()
	t.Cleanup(func() { _ = p.Del(ctx, key) })

	if _, ok, err := p.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, key, []byte("v1"), 1, time.Minute); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	v, ok, err := p.Get(ctx, key)
	if err != nil || !ok || string(v) != "v1" {
		t.Fatalf("Get: %q ok=%v err=%v", v, ok, err)
	}
	if err := p.Del(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, key); ok {
		t.Fatal("expected miss after Del")
	}
}

func TestSetAppliesWholeMinuteTTL(t *testing.T) {
	p, rdb := redisProvider(t)
	ctx := t.Context()
	key := "test:gracecache:" + t.Name()
	t.Cleanup(func() { _ = p.Del(ctx, key) })

	if _, err := p.Set(ctx, key, []byte("v"), 1, 5*time.Minute); err != nil {
		t.Fatal(err)
	}
	ttl, err := rdb.TTL(ctx, key).Result()
	if err != nil {
		t.Fatal(err)
	}
	if ttl <= 4*time.Minute || ttl > 5*time.Minute {
		t.Fatalf("TTL = %v, want ~5m", ttl)
	}
}
