package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-admin/internal/service"
)

var (
	_ service.Cache = (*RedisCache)(nil)
	_ service.Cache = NoopCache{}
)

func TestNoopCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := NewNoopCache()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	found, err := c.Get(ctx, "k", &out)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, out)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestNewRedisCacheFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
}
