package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestFakeStore(t *testing.T) {
	c := &FakeStore{}
	require.Panics(t, func() { c.GetDel(context.Background(), "k") })
	require.Panics(t, func() { c.Set(context.Background(), "k", 1, 0) })
	require.Panics(t, func() { c.Del(context.Background(), "k") })
	require.Equal(t, "PONG", c.Ping(context.Background()).Val())
	require.NoError(t, c.Close())

	gCalled := false
	sCalled := false
	dCalled := false
	clCalled := false
	c.GetDelFn = func(ctx context.Context, key string) *redis.StringCmd {
		gCalled = true
		return redis.NewStringResult("v", nil)
	}
	c.SetFn = func(ctx context.Context, key string, val any, exp time.Duration) *redis.StatusCmd {
		sCalled = true
		return redis.NewStatusResult("OK", nil)
	}
	c.DelFn = func(ctx context.Context, keys ...string) *redis.IntCmd {
		dCalled = true
		return redis.NewIntResult(int64(len(keys)), nil)
	}
	c.CloseFn = func() error { clCalled = true; return errors.New("close") }

	require.Equal(t, "v", c.GetDel(context.Background(), "k").Val())
	require.Equal(t, "OK", c.Set(context.Background(), "k", 1, 0).Val())
	require.Equal(t, int64(2), c.Del(context.Background(), "a", "b").Val())
	require.EqualError(t, c.Close(), "close")
	require.True(t, gCalled)
	require.True(t, sCalled)
	require.True(t, dCalled)
	require.True(t, clCalled)
}

func TestNewRedisClient(t *testing.T) {
	orig := redisNewClient
	t.Cleanup(func() { redisNewClient = orig })

	t.Run("success", func(t *testing.T) {
		var opts *redis.Options
		stub := &FakeStore{}
		redisNewClient = func(o *redis.Options) Store {
			opts = o
			return stub
		}

		c, err := NewRedisClient("127.0.0.1:6379", "secret", 1)
		require.NoError(t, err)
		require.Equal(t, stub, c)
		require.Equal(t, "127.0.0.1:6379", opts.Addr)
		require.Equal(t, "secret", opts.Password)
		require.Equal(t, 1, opts.DB)
	})

	t.Run("ping fail", func(t *testing.T) {
		closed := false
		redisNewClient = func(o *redis.Options) Store {
			return &FakeStore{
				PingFn:  func(context.Context) *redis.StatusCmd { return redis.NewStatusResult("", errors.New("fail")) },
				CloseFn: func() error { closed = true; return nil },
			}
		}

		c, err := NewRedisClient("addr", "", 0)
		require.Error(t, err)
		require.Nil(t, c)
		require.True(t, closed)
	})
}
