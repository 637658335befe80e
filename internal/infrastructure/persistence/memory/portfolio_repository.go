package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jmanzanog/devfolio/internal/domain"
)

// PortfolioRepository keeps portfolio documents in process memory. Documents
// are copied on the way in and out so callers never share state with the
// store.
type PortfolioRepository struct {
	mu         sync.RWMutex
	portfolios map[string]*domain.Portfolio
}

func NewPortfolioRepository() *PortfolioRepository {
	return &PortfolioRepository{
		portfolios: make(map[string]*domain.Portfolio),
	}
}

func (r *PortfolioRepository) NextID() string {
	return uuid.NewString()
}

func (r *PortfolioRepository) Create(ctx context.Context, portfolio *domain.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := portfolio.Clone()
	r.portfolios[portfolio.ID] = &stored
	return nil
}

func (r *PortfolioRepository) FindByID(ctx context.Context, id string) (*domain.Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	portfolio, exists := r.portfolios[id]
	if !exists {
		return nil, domain.NewPortfolioNotFound(id)
	}

	out := portfolio.Clone()
	return &out, nil
}

func (r *PortfolioRepository) Find(ctx context.Context, q domain.Query) ([]*domain.Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	portfolios := make([]*domain.Portfolio, 0)
	for _, p := range r.portfolios {
		if q.Where != "" && fieldString(p, q.Where) != q.Equals {
			continue
		}
		out := p.Clone()
		portfolios = append(portfolios, &out)
	}

	if q.OrderBy != "" {
		sort.SliceStable(portfolios, func(i, j int) bool {
			a, b := fieldInt(portfolios[i], q.OrderBy), fieldInt(portfolios[j], q.OrderBy)
			if a == b {
				return portfolios[i].ID < portfolios[j].ID
			}
			if q.Descending {
				return a > b
			}
			return a < b
		})
	}

	if q.Limit > 0 && len(portfolios) > q.Limit {
		portfolios = portfolios[:q.Limit]
	}

	return portfolios, nil
}

func (r *PortfolioRepository) Update(ctx context.Context, id string, update domain.PortfolioUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	portfolio, exists := r.portfolios[id]
	if !exists {
		return domain.NewPortfolioNotFound(id)
	}

	update.Apply(portfolio)
	return nil
}

func (r *PortfolioRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.portfolios, id)
	return nil
}

func fieldString(p *domain.Portfolio, f domain.Field) string {
	switch f {
	case domain.FieldUserID:
		return p.UserID
	case domain.FieldSlug:
		return p.Slug
	}
	return ""
}

func fieldInt(p *domain.Portfolio, f domain.Field) int64 {
	switch f {
	case domain.FieldUpdatedAt:
		return p.UpdatedAt
	case domain.FieldCreatedAt:
		return p.CreatedAt
	}
	return 0
}
