package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapu/digital-card-go/pkg/errors"
)

func unreachableStore(t *testing.T) *RedisStore {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
		PoolSize:    10,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreFromClient(client, nil)
}

func TestWaitUntilReadyTimesOut(t *testing.T) {
	store := unreachableStore(t)

	start := time.Now()
	err := store.WaitUntilReady(context.Background(), 250*time.Millisecond)
	require.Error(t, err)

	assert.Equal(t, errors.CodeCache, errors.CodeOf(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWaitUntilReadyHonoursCancel(t *testing.T) {
	store := unreachableStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.WaitUntilReady(ctx, time.Minute)
	assert.Equal(t, errors.CodeCache, errors.CodeOf(err))
}

func TestNewRedisStoreFailsWhenRedisNeverAnswers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	store, err := NewRedisStore(ctx, CacheConfig{Host: "127.0.0.1", Port: 1}, nil)
	assert.Nil(t, store)
	assert.Equal(t, errors.CodeCache, errors.CodeOf(err))
}
