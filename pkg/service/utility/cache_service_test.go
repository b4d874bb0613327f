package utility

import (
	"context"
	"sort"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (CacheService, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheService(client), m
}

func TestRedisCacheServiceSetGet(t *testing.T) {
	svc, _ := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "rss:feed", "<rss/>", 0))

	val, err := svc.Get(ctx, "rss:feed")
	require.NoError(t, err)
	require.Equal(t, "<rss/>", val)

	// 不存在的键按 Redis 惯例返回空串而不是错误
	val, err = svc.Get(ctx, "rss:missing")
	require.NoError(t, err)
	require.Empty(t, val)
}

func TestRedisCacheServiceDelete(t *testing.T) {
	svc, _ := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "a", "1", 0))
	require.NoError(t, svc.Set(ctx, "b", "2", 0))
	require.NoError(t, svc.Delete(ctx, "a", "b"))

	val, err := svc.Get(ctx, "a")
	require.NoError(t, err)
	require.Empty(t, val)
}

func TestRedisCacheServiceIncrement(t *testing.T) {
	svc, _ := newRedisCache(t)
	ctx := context.Background()

	n, err := svc.Increment(ctx, "views:article:1")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = svc.Increment(ctx, "views:article:1")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestRedisCacheServiceExpire(t *testing.T) {
	svc, m := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "session", "data", 0))
	require.NoError(t, svc.Expire(ctx, "session", time.Minute))

	// 拨快 miniredis 的时钟越过 TTL
	m.FastForward(2 * time.Minute)

	val, err := svc.Get(ctx, "session")
	require.NoError(t, err)
	require.Empty(t, val)
}

func TestRedisCacheServiceScan(t *testing.T) {
	svc, _ := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "views:article:1", "3", 0))
	require.NoError(t, svc.Set(ctx, "views:article:2", "7", 0))
	require.NoError(t, svc.Set(ctx, "rss:feed", "<rss/>", 0))

	keys, err := svc.Scan(ctx, "views:article:*")
	require.NoError(t, err)
	sort.Strings(keys)
	require.Equal(t, []string{"views:article:1", "views:article:2"}, keys)
}

func TestRedisCacheServiceGetAndDeleteMany(t *testing.T) {
	svc, _ := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "views:article:1", "5", 0))
	require.NoError(t, svc.Set(ctx, "views:article:2", "9", 0))
	require.NoError(t, svc.Set(ctx, "views:article:3", "not-a-number", 0))

	results, err := svc.GetAndDeleteMany(ctx, []string{
		"views:article:1", "views:article:2", "views:article:3", "views:article:404",
	})
	require.NoError(t, err)
	require.Equal(t, map[string]int{"views:article:1": 5, "views:article:2": 9}, results)

	// 读取之后所有键都应被删除，包括无法解析的那个
	for _, key := range []string{"views:article:1", "views:article:2", "views:article:3"} {
		val, err := svc.Get(ctx, key)
		require.NoError(t, err)
		require.Empty(t, val, "键 %s 应已被删除", key)
	}

	t.Run("空键列表直接返回", func(t *testing.T) {
		results, err := svc.GetAndDeleteMany(ctx, nil)
		require.NoError(t, err)
		require.Nil(t, results)
	})
}

func TestNewCacheServiceWithFallback(t *testing.T) {
	t.Run("无Redis客户端时降级到内存缓存", func(t *testing.T) {
		svc := NewCacheServiceWithFallback(nil)
		require.Equal(t, CacheTypeMemory, GetCacheServiceType(svc))
	})

	t.Run("Redis可达时使用Redis缓存", func(t *testing.T) {
		m, err := mr.Run()
		require.NoError(t, err)
		defer m.Close()

		client := redis.NewClient(&redis.Options{Addr: m.Addr()})
		defer client.Close()

		svc := NewCacheServiceWithFallback(client)
		require.Equal(t, CacheTypeRedis, GetCacheServiceType(svc))
	})

	t.Run("Redis探活失败时降级到内存缓存", func(t *testing.T) {
		m, err := mr.Run()
		require.NoError(t, err)
		addr := m.Addr()
		m.Close()

		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()

		svc := NewCacheServiceWithFallback(client)
		require.Equal(t, CacheTypeMemory, GetCacheServiceType(svc))
	})
}

func TestMemoryCacheService(t *testing.T) {
	svc := NewMemoryCacheService()
	ctx := context.Background()

	t.Run("过期的键按不存在处理", func(t *testing.T) {
		require.NoError(t, svc.Set(ctx, "short", "lived", time.Millisecond))
		time.Sleep(50 * time.Millisecond)

		val, err := svc.Get(ctx, "short")
		require.NoError(t, err)
		require.Empty(t, val)
	})

	t.Run("零过期时间表示永不过期", func(t *testing.T) {
		require.NoError(t, svc.Set(ctx, "forever", "1", 0))

		val, err := svc.Get(ctx, "forever")
		require.NoError(t, err)
		require.Equal(t, "1", val)
	})

	t.Run("计数自增", func(t *testing.T) {
		n, err := svc.Increment(ctx, "counter")
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		n, err = svc.Increment(ctx, "counter")
		require.NoError(t, err)
		require.EqualValues(t, 2, n)
	})

	t.Run("通配符匹配", func(t *testing.T) {
		require.NoError(t, svc.Set(ctx, "views:article:1", "3", 0))
		require.NoError(t, svc.Set(ctx, "other", "x", 0))

		keys, err := svc.Scan(ctx, "views:*")
		require.NoError(t, err)
		require.Equal(t, []string{"views:article:1"}, keys)
	})
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		s       string
		pattern string
		want    bool
	}{
		{"views:article:1", "views:article:*", true},
		{"views:article:1", "views:*", true},
		{"views:article:1", "*:article:*", true},
		{"views:article:1", "views:article:1", true},
		{"views:article:1", "rss:*", false},
		{"views:article:1", "views:article:2", false},
		{"rss:feed", "*feed", true},
		{"rss:feed", "feed*", false},
	}

	for _, tt := range tests {
		if got := matchPattern(tt.s, tt.pattern); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.s, tt.pattern, got, tt.want)
		}
	}
}
