package application

import (
	"context"
	"log/slog"

	"github.com/jmanzanog/devfolio/internal/domain"
)

// PortfolioCache stores published portfolios by slug. Implementations treat
// their own failures as misses. Set must not overwrite an existing entry, and
// Invalidate must keep the slug from being repopulated for a while, so a copy
// loaded before a mutation cannot outlive it.
type PortfolioCache interface {
	Get(ctx context.Context, slug string) (*domain.Portfolio, bool)
	Set(ctx context.Context, portfolio *domain.Portfolio)
	Invalidate(ctx context.Context, slug string)
}

type SlugFinder interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Portfolio, error)
}

// PublicService resolves the public page for a slug. Drafts are never
// returned.
type PublicService struct {
	finder SlugFinder
	cache  PortfolioCache
}

// NewPublicService creates the service. cache may be nil.
func NewPublicService(finder SlugFinder, cache PortfolioCache) *PublicService {
	return &PublicService{finder: finder, cache: cache}
}

// GetPublished returns nil, nil when the slug is unknown or the portfolio is
// a draft.
func (s *PublicService) GetPublished(ctx context.Context, slug string) (*domain.Portfolio, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, slug); ok {
			return cached, nil
		}
	}

	portfolio, err := s.finder.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if portfolio == nil || !portfolio.IsPublished {
		return nil, nil
	}

	if s.cache != nil {
		s.cache.Set(ctx, portfolio)
	}
	return portfolio, nil
}

// Invalidate drops the cached page for slug after a mutation.
func (s *PublicService) Invalidate(ctx context.Context, slug string) {
	if s.cache == nil || slug == "" {
		return
	}
	s.cache.Invalidate(ctx, slug)
	slog.DebugContext(ctx, "Public portfolio invalidated", "slug", slug)
}
