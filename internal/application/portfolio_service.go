package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmanzanog/devfolio/internal/domain"
)

// PortfolioService mediates every read and write of Portfolio aggregates and
// owns the defaulting and timestamp rules. Each call is a single round trip to
// the repository with no retry, locking or version check.
type PortfolioService struct {
	repo      domain.PortfolioRepository
	templates domain.TemplateRepository
	now       func() time.Time
}

type Option func(*PortfolioService)

// WithClock overrides the time source used for createdAt, updatedAt and
// publishedAt.
func WithClock(now func() time.Time) Option {
	return func(s *PortfolioService) {
		s.now = now
	}
}

func NewPortfolioService(repo domain.PortfolioRepository, templates domain.TemplateRepository, opts ...Option) *PortfolioService {
	s := &PortfolioService{
		repo:      repo,
		templates: templates,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PortfolioService) nowMillis() int64 {
	return s.now().UnixMilli()
}

// Create builds a draft portfolio with the default sections and persists it
// in one document write.
func (s *PortfolioService) Create(ctx context.Context, userID, templateID, name string) (*domain.Portfolio, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.NewValidationError("userId", "must not be empty")
	}
	if strings.TrimSpace(templateID) == "" {
		return nil, domain.NewValidationError("templateId", "must not be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}

	portfolio, err := domain.NewPortfolio(s.repo.NextID(), userID, templateID, name, s.nowMillis())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &portfolio); err != nil {
		return nil, storeError("create portfolio", err)
	}

	return &portfolio, nil
}

// GetByID returns nil, nil when the portfolio does not exist.
func (s *PortfolioService) GetByID(ctx context.Context, id string) (*domain.Portfolio, error) {
	portfolio, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get portfolio", err)
	}
	return portfolio, nil
}

// GetBySlug returns nil, nil when no portfolio carries the slug.
func (s *PortfolioService) GetBySlug(ctx context.Context, slug string) (*domain.Portfolio, error) {
	found, err := s.repo.Find(ctx, domain.Query{
		Where:  domain.FieldSlug,
		Equals: slug,
		Limit:  1,
	})
	if err != nil {
		return nil, storeError("get portfolio by slug", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// ListByUser returns the user's portfolios, most recently updated first.
func (s *PortfolioService) ListByUser(ctx context.Context, userID string) ([]*domain.Portfolio, error) {
	found, err := s.repo.Find(ctx, domain.Query{
		Where:      domain.FieldUserID,
		Equals:     userID,
		OrderBy:    domain.FieldUpdatedAt,
		Descending: true,
	})
	if err != nil {
		return nil, storeError("list portfolios", err)
	}
	if found == nil {
		found = make([]*domain.Portfolio, 0)
	}
	return found, nil
}

// Update merges the supplied fields into the stored document and refreshes
// updatedAt.
func (s *PortfolioService) Update(ctx context.Context, id string, update domain.PortfolioUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}
	update.UpdatedAt = s.nowMillis()

	if err := s.repo.Update(ctx, id, update); err != nil {
		return storeError("update portfolio", err)
	}
	return nil
}

// UpdateSection merges patch into the section with sectionID and writes back
// the whole section list. An unknown sectionID rewrites the list unchanged.
//
// This is a read-modify-write without a version check: two concurrent calls
// on the same portfolio can lose one another's changes to other sections.
func (s *PortfolioService) UpdateSection(ctx context.Context, portfolioID, sectionID string, patch domain.SectionPatch) error {
	portfolio, err := s.repo.FindByID(ctx, portfolioID)
	if err != nil {
		return storeError("update portfolio section", err)
	}

	sections := domain.CloneSections(portfolio.Sections)
	for i := range sections {
		if sections[i].ID == sectionID {
			if err := patch.Apply(&sections[i]); err != nil {
				return err
			}
		}
	}

	err = s.repo.Update(ctx, portfolioID, domain.PortfolioUpdate{
		Sections:  sections,
		UpdatedAt: s.nowMillis(),
	})
	if err != nil {
		return storeError("update portfolio section", err)
	}
	return nil
}

// Publish marks the portfolio published. publishedAt is refreshed on every
// call, including re-publishing.
func (s *PortfolioService) Publish(ctx context.Context, id string) error {
	now := s.nowMillis()
	published := true

	err := s.repo.Update(ctx, id, domain.PortfolioUpdate{
		IsPublished: &published,
		PublishedAt: &now,
		UpdatedAt:   now,
	})
	if err != nil {
		return storeError("publish portfolio", err)
	}
	return nil
}

// Unpublish returns the portfolio to draft. publishedAt is kept.
func (s *PortfolioService) Unpublish(ctx context.Context, id string) error {
	published := false

	err := s.repo.Update(ctx, id, domain.PortfolioUpdate{
		IsPublished: &published,
		UpdatedAt:   s.nowMillis(),
	})
	if err != nil {
		return storeError("unpublish portfolio", err)
	}
	return nil
}

// Delete removes the document permanently. Sections are embedded, so nothing
// else needs cleaning up.
func (s *PortfolioService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError("delete portfolio", err)
	}
	return nil
}

func (s *PortfolioService) ListTemplates(ctx context.Context) ([]domain.PortfolioTemplate, error) {
	templates, err := s.templates.FindAllTemplates(ctx)
	if err != nil {
		return nil, storeError("list templates", err)
	}
	return templates, nil
}

// GetTemplate returns nil, nil when the template does not exist.
func (s *PortfolioService) GetTemplate(ctx context.Context, id string) (*domain.PortfolioTemplate, error) {
	tmpl, err := s.templates.FindTemplateByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("get template", err)
	}
	return tmpl, nil
}

// SeedTemplates stores the default catalog when the template store is empty.
func (s *PortfolioService) SeedTemplates(ctx context.Context) error {
	existing, err := s.templates.FindAllTemplates(ctx)
	if err != nil {
		return storeError("seed templates", err)
	}
	if len(existing) > 0 {
		return nil
	}
	if err := s.templates.SaveTemplates(ctx, domain.DefaultTemplates()); err != nil {
		return storeError("seed templates", err)
	}
	return nil
}

// storeError passes not-found errors through and classifies everything else
// as a persistence failure.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrPersistence) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return domain.NewPersistenceError(op, err)
}
