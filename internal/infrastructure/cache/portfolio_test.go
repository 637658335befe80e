package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmanzanog/devfolio/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRedisClient returns a client on DB 15. Skips if Redis is unavailable.
func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("skipping integration test: Redis not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, portfolioKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func publishedPortfolio(t *testing.T) *domain.Portfolio {
	t.Helper()
	p, err := domain.NewPortfolio("0123456789abcdef", "user-1", "minimal", "Jane Doe", 1000)
	require.NoError(t, err)
	at := int64(2000)
	p.IsPublished = true
	p.PublishedAt = &at
	return &p
}

func TestConnectRedis(t *testing.T) {
	client, err := ConnectRedis(context.Background(), envOr("REDIS_ADDR", "localhost:6379"), "")
	if err != nil {
		t.Skipf("skipping: Redis not available: %v", err)
	}
	defer func() { _ = client.Close() }()

	pong, err := client.Ping(context.Background()).Result()
	require.NoError(t, err)
	assert.Equal(t, "PONG", pong)
}

func TestPortfolioCache_SetGetInvalidate(t *testing.T) {
	client := testRedisClient(t)
	c := NewPortfolioCache(client, time.Minute)
	ctx := context.Background()
	p := publishedPortfolio(t)

	_, ok := c.Get(ctx, p.Slug)
	assert.False(t, ok, "empty cache misses")

	c.Set(ctx, p)

	got, ok := c.Get(ctx, p.Slug)
	require.True(t, ok)
	assert.Equal(t, p, got)

	ttl, err := client.TTL(ctx, SlugKey(p.Slug)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	c.Invalidate(ctx, p.Slug)
	_, ok = c.Get(ctx, p.Slug)
	assert.False(t, ok)
}

func TestPortfolioCache_InvalidationHoldsOffStaleSet(t *testing.T) {
	client := testRedisClient(t)
	c := NewPortfolioCache(client, time.Minute)
	ctx := context.Background()
	p := publishedPortfolio(t)

	// A reader loaded p before the owner unpublished it and invalidated the slug.
	c.Invalidate(ctx, p.Slug)
	c.Set(ctx, p)

	_, ok := c.Get(ctx, p.Slug)
	assert.False(t, ok, "stale copy must not be cached after invalidation")

	ttl, err := client.TTL(ctx, SlugKey(p.Slug)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, InvalidationHold)

	// Once the hold expires the slug is cacheable again.
	require.NoError(t, client.Del(ctx, SlugKey(p.Slug)).Err())
	c.Set(ctx, p)
	got, ok := c.Get(ctx, p.Slug)
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestPortfolioCache_SetKeepsExistingEntry(t *testing.T) {
	client := testRedisClient(t)
	c := NewPortfolioCache(client, time.Minute)
	ctx := context.Background()
	p := publishedPortfolio(t)

	c.Set(ctx, p)
	renamed := *p
	renamed.Name = "Renamed"
	c.Set(ctx, &renamed)

	got, ok := c.Get(ctx, p.Slug)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", got.Name)
}

func TestPortfolioCache_CorruptEntryIsMiss(t *testing.T) {
	client := testRedisClient(t)
	c := NewPortfolioCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, SlugKey("broken"), "{not json", time.Minute).Err())

	_, ok := c.Get(ctx, "broken")
	assert.False(t, ok)

	exists, err := client.Exists(ctx, SlugKey("broken")).Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "corrupt entry is dropped")
}

func TestPortfolioCache_UnreachableIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = client.Close() }()

	c := NewPortfolioCache(client, 0)
	ctx := context.Background()
	p := publishedPortfolio(t)

	c.Set(ctx, p)
	_, ok := c.Get(ctx, p.Slug)
	assert.False(t, ok)
	c.Invalidate(ctx, p.Slug)
	assert.Equal(t, DefaultPortfolioTTL, c.ttl)
}

func TestSlugKey(t *testing.T) {
	assert.Equal(t, "portfolio:slug:jane-doe-01234567", SlugKey("jane-doe-01234567"))
}
