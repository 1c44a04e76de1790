package projection

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestFetchJSONCaches(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (any, error) {
		loads++
		return map[string]int{"stock": 42}, nil
	}

	key, err := cache.BuildKey(ctx, "stockbook", "report", "full")
	require.NoError(t, err)

	var first map[string]int
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	require.Equal(t, 42, first["stock"])

	var second map[string]int
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))
	require.Equal(t, 42, second["stock"])
	require.Equal(t, 1, loads)
}

func TestBumpInvalidates(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (any, error) {
		loads++
		return loads, nil
	}

	key, err := cache.BuildKey(ctx, "stockbook", "report", "summary")
	require.NoError(t, err)
	var got int
	require.NoError(t, cache.FetchJSON(ctx, key, &got, loader))
	require.Equal(t, 1, got)

	require.NoError(t, cache.Bump(ctx))

	// The versioned key changes, so the old payload is orphaned.
	newKey, err := cache.BuildKey(ctx, "stockbook", "report", "summary")
	require.NoError(t, err)
	require.NotEqual(t, key, newKey)

	require.NoError(t, cache.FetchJSON(ctx, newKey, &got, loader))
	require.Equal(t, 2, got)
}

func TestNilCacheComputesDirectly(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	require.Equal(t, "a:b", key)

	loads := 0
	var got int
	for i := 0; i < 2; i++ {
		require.NoError(t, cache.FetchJSON(ctx, key, &got, func(ctx context.Context) (any, error) {
			loads++
			return loads, nil
		}))
	}
	require.Equal(t, 2, loads)
	require.NoError(t, cache.Bump(ctx))
}
