package domain

import "context"

// Field names a queryable portfolio attribute.
type Field string

const (
	FieldUserID    Field = "userId"
	FieldSlug      Field = "slug"
	FieldUpdatedAt Field = "updatedAt"
	FieldCreatedAt Field = "createdAt"
)

// Query selects portfolios by field equality with optional ordering and limit.
// A zero Limit means no limit.
type Query struct {
	Where      Field
	Equals     string
	OrderBy    Field
	Descending bool
	Limit      int
}

// PortfolioRepository is the document persistence service for portfolios.
// All methods accept context.Context to enable proper timeout handling,
// cancellation propagation, and request-scoped values like tracing IDs.
//
// FindByID and Update return a *NotFoundError when the document is absent.
// Update merges the supplied fields into the stored document. Delete of an
// absent document is not an error.
type PortfolioRepository interface {
	NextID() string
	Create(ctx context.Context, portfolio *Portfolio) error
	FindByID(ctx context.Context, id string) (*Portfolio, error)
	Find(ctx context.Context, q Query) ([]*Portfolio, error)
	Update(ctx context.Context, id string, update PortfolioUpdate) error
	Delete(ctx context.Context, id string) error
}

type TemplateRepository interface {
	SaveTemplates(ctx context.Context, templates []PortfolioTemplate) error
	FindAllTemplates(ctx context.Context) ([]PortfolioTemplate, error)
	FindTemplateByID(ctx context.Context, id string) (*PortfolioTemplate, error)
}
