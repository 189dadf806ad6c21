package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hupe1980/sketchdex/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `db\*\?\[x\]`, escapeGlob("db*?[x]"))
}

func TestCompact(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, compact([]string{"a", "a", "b", "b"}))
	assert.Empty(t, compact(nil))
}

func TestIntegration_RedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping Redis integration test: REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	store := NewStore(client, func(o *Options) {
		o.Prefix = fmt.Sprintf("sketchdex-test-%d:", time.Now().UnixNano())
		o.TTL = time.Minute
	})

	require.NoError(t, store.Save(ctx, "db/a.sig", []byte("alpha")))
	require.NoError(t, store.Save(ctx, "db/b.sig", []byte("beta")))

	data, err := store.Load(ctx, "db/a.sig")
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	keys, err := store.List(ctx, "db/")
	require.NoError(t, err)
	assert.Equal(t, []string{"db/a.sig", "db/b.sig"}, keys)

	require.NoError(t, store.Delete(ctx, "db/a.sig"))
	_, err = store.Load(ctx, "db/a.sig")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
