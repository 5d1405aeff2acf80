package ratecache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/evcharge/core/currency"
)

func TestRedisStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	store := NewRedisStoreWithClient(client, "")
	defer store.Close()
	ctx := context.Background()

	_, ok, err := store.Load(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, store.Save(ctx, currency.FallbackTable(), time.Minute))
	assert.Equal(t, DefaultKey, store.key)
}
