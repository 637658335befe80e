package memory

import (
	"context"
	"sync"

	"github.com/jmanzanog/devfolio/internal/domain"
)

type TemplateRepository struct {
	mu        sync.RWMutex
	order     []string
	templates map[string]domain.PortfolioTemplate
}

func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{
		templates: make(map[string]domain.PortfolioTemplate),
	}
}

func (r *TemplateRepository) SaveTemplates(ctx context.Context, templates []domain.PortfolioTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range templates {
		if _, exists := r.templates[t.ID]; !exists {
			r.order = append(r.order, t.ID)
		}
		r.templates[t.ID] = t
	}
	return nil
}

func (r *TemplateRepository) FindAllTemplates(ctx context.Context) ([]domain.PortfolioTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.PortfolioTemplate, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out, nil
}

func (r *TemplateRepository) FindTemplateByID(ctx context.Context, id string) (*domain.PortfolioTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.templates[id]
	if !exists {
		return nil, domain.NewTemplateNotFound(id)
	}
	return &t, nil
}
