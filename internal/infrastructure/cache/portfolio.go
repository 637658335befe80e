package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jmanzanog/devfolio/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	portfolioKeyPrefix = "portfolio:slug:"
	tombstone          = "invalidated"

	DefaultPortfolioTTL = 5 * time.Minute
	// InvalidationHold is how long an invalidated slug refuses new entries.
	// A read that loaded the document before the mutation cannot repopulate
	// the key within this window.
	InvalidationHold    = 10 * time.Second
)

// PortfolioCache stores published portfolios as JSON keyed by slug. Redis
// failures are logged and reported as misses.
type PortfolioCache struct {
	client *redis.Client
	ttl    time.Duration
	hold   time.Duration
}

func NewPortfolioCache(client *redis.Client, ttl time.Duration) *PortfolioCache {
	if ttl <= 0 {
		ttl = DefaultPortfolioTTL
	}
	return &PortfolioCache{client: client, ttl: ttl, hold: InvalidationHold}
}

func SlugKey(slug string) string {
	return portfolioKeyPrefix + slug
}

func (c *PortfolioCache) Get(ctx context.Context, slug string) (*domain.Portfolio, bool) {
	val, err := c.client.Get(ctx, SlugKey(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.WarnContext(ctx, "Portfolio cache get error", "slug", slug, "error", err)
		return nil, false
	}
	if string(val) == tombstone {
		slog.DebugContext(ctx, "Portfolio cache entry held after invalidation", "slug", slug)
		return nil, false
	}

	var p domain.Portfolio
	if err := json.Unmarshal(val, &p); err != nil {
		slog.WarnContext(ctx, "Portfolio cache entry unreadable", "slug", slug, "error", err)
		if err := c.client.Del(ctx, SlugKey(slug)).Err(); err != nil {
			slog.WarnContext(ctx, "Portfolio cache delete error", "slug", slug, "error", err)
		}
		return nil, false
	}

	slog.DebugContext(ctx, "Portfolio cache hit", "slug", slug)
	return &p, true
}

// Set stores p only when the slug has no entry. An existing entry or a
// pending invalidation wins.
func (c *PortfolioCache) Set(ctx context.Context, p *domain.Portfolio) {
	data, err := json.Marshal(p)
	if err != nil {
		slog.WarnContext(ctx, "Portfolio cache encode error", "slug", p.Slug, "error", err)
		return
	}
	stored, err := c.client.SetNX(ctx, SlugKey(p.Slug), data, c.ttl).Result()
	if err != nil {
		slog.WarnContext(ctx, "Portfolio cache set error", "slug", p.Slug, "error", err)
		return
	}
	if !stored {
		slog.DebugContext(ctx, "Portfolio cache set skipped, key held", "slug", p.Slug)
	}
}

// Invalidate replaces the entry with a tombstone that expires after
// InvalidationHold.
func (c *PortfolioCache) Invalidate(ctx context.Context, slug string) {
	if err := c.client.Set(ctx, SlugKey(slug), tombstone, c.hold).Err(); err != nil {
		slog.WarnContext(ctx, "Portfolio cache invalidate error", "slug", slug, "error", err)
	}
}
