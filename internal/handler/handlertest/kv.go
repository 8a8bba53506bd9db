package handlertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"foodmap/internal/kv"

	"github.com/redis/go-redis/v9"
)

// MemoryKV returns a kv.FakeStore backed by a map. TTLs are ignored.
func MemoryKV() (*kv.FakeStore, map[string]string) {
	var mu sync.Mutex
	data := map[string]string{}
	return &kv.FakeStore{
		GetDelFn: func(_ context.Context, key string) *redis.StringCmd {
			mu.Lock()
			defer mu.Unlock()
			v, ok := data[key]
			if !ok {
				return redis.NewStringResult("", redis.Nil)
			}
			delete(data, key)
			return redis.NewStringResult(v, nil)
		},
		SetFn: func(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
			mu.Lock()
			defer mu.Unlock()
			switch v := value.(type) {
			case []byte:
				data[key] = string(v)
			default:
				data[key] = fmt.Sprint(v)
			}
			return redis.NewStatusResult("OK", nil)
		},
		DelFn: func(_ context.Context, keys ...string) *redis.IntCmd {
			mu.Lock()
			defer mu.Unlock()
			var n int64
			for _, k := range keys {
				if _, ok := data[k]; ok {
					delete(data, k)
					n++
				}
			}
			return redis.NewIntResult(n, nil)
		},
	}, data
}
