package checkpoint

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStoreWithClient(client, "test:last_ingested")
}

func TestRedisStore_EmptyMeansNoCheckpoint(t *testing.T) {
	store := newTestRedisStore(t)

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("missing key should mean no checkpoint")
	}
}

func TestRedisStore_SaveThenLoad(t *testing.T) {
	store := newTestRedisStore(t)

	if err := store.Save(1325412060.5); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ts, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("load failed: ok=%v err=%v", ok, err)
	}
	if ts != 1325412060.5 {
		t.Errorf("ts = %v, want 1325412060.5", ts)
	}
}
