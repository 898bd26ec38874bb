package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrikatori/backend/internal/domain"
)

// unreachableClient points at a port nothing listens on
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestNewRedisCache(t *testing.T) {
	t.Run("rejects malformed URL", func(t *testing.T) {
		_, err := NewRedisCache(context.Background(), "not-a-url")
		assert.Error(t, err)
	})

	t.Run("reports unreachable server as unavailable", func(t *testing.T) {
		_, err := NewRedisCache(context.Background(), "redis://127.0.0.1:1/0")
		assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
	})
}

func TestRedisCache_Unavailable(t *testing.T) {
	c := NewRedisCacheFromClient(unreachableClient())
	defer c.Close()
	ctx := context.Background()

	_, err := c.Get(ctx, "aliases:jeera")
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)

	err = c.Set(ctx, "aliases:jeera", []string{"cumin"}, time.Minute)
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)

	err = c.Delete(ctx, "aliases:jeera")
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)

	_, err = c.Exists(ctx, "aliases:jeera")
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
}

func TestRedisCache_SetSkipsZeroTTL(t *testing.T) {
	c := NewRedisCacheFromClient(unreachableClient())
	defer c.Close()

	// Nothing is sent to the server, so the unreachable client is not an error
	require.NoError(t, c.Set(context.Background(), "k", "v", 0))
}

func TestRedisCache_SetRejectsUnencodable(t *testing.T) {
	c := NewRedisCacheFromClient(unreachableClient())
	defer c.Close()

	err := c.Set(context.Background(), "k", make(chan int), time.Minute)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCacheUnavailable)
}
