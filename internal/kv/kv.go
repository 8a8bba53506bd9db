package kv

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store 封裝 Redis 的最小操作集合，目前用來保存 refresh token session；
// 測試時以 FakeStore 替換。ttl <= 0 表示不設過期。GetDel 讀取並刪除是單一
// 指令，同一個 key 只會有一個呼叫端拿到值
type Store interface {
	GetDel(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

type FakeStore struct {
	GetDelFn func(ctx context.Context, key string) *redis.StringCmd
	SetFn    func(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	DelFn    func(ctx context.Context, keys ...string) *redis.IntCmd
	PingFn   func(ctx context.Context) *redis.StatusCmd
	CloseFn  func() error
}

// GetDel 執行 Fake 設定或 panic
func (f *FakeStore) GetDel(ctx context.Context, key string) *redis.StringCmd {
	if f.GetDelFn != nil {
		return f.GetDelFn(ctx, key)
	}
	panic("unexpected GetDel")
}

// Set 執行 Fake 設定或 panic
func (f *FakeStore) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.SetFn != nil {
		return f.SetFn(ctx, key, value, expiration)
	}
	panic("unexpected Set")
}

func (f *FakeStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.DelFn != nil {
		return f.DelFn(ctx, keys...)
	}
	panic("unexpected Del")
}

func (f *FakeStore) Ping(ctx context.Context) *redis.StatusCmd {
	if f.PingFn != nil {
		return f.PingFn(ctx)
	}
	return redis.NewStatusResult("PONG", nil)
}

// Close 執行 Fake 設定或 no-op
func (f *FakeStore) Close() error {
	if f.CloseFn != nil {
		return f.CloseFn()
	}
	return nil
}
