package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmanzanog/devfolio/internal/domain"
)

type TemplateRepository struct {
	db *DB
}

func NewTemplateRepository(db *DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// SaveTemplates upserts the catalog in one transaction. Slice order becomes
// the listing order.
func (r *TemplateRepository) SaveTemplates(ctx context.Context, templates []domain.PortfolioTemplate) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for i := range templates {
			if err := r.db.Dialect.UpsertTemplate(ctx, tx, &templates[i], i); err != nil {
				slog.Error("Failed to save template", "template_id", templates[i].ID, "error", err)
				return fmt.Errorf("upsert template: %w", err)
			}
		}
		return nil
	})
}

func (r *TemplateRepository) FindAllTemplates(ctx context.Context) ([]domain.PortfolioTemplate, error) {
	query := `SELECT id, name, description, thumbnail, is_premium, preview_url FROM templates ORDER BY position, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	templates := []domain.PortfolioTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

func (r *TemplateRepository) FindTemplateByID(ctx context.Context, id string) (*domain.PortfolioTemplate, error) {
	query := `SELECT id, name, description, thumbnail, is_premium, preview_url FROM templates WHERE id = $1`

	t, err := scanTemplate(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewTemplateNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan template: %w", err)
	}
	return t, nil
}

func scanTemplate(row rowScanner) (*domain.PortfolioTemplate, error) {
	var (
		t          domain.PortfolioTemplate
		isPremium  int64
		previewURL sql.NullString
	)
	var description, thumbnail sql.NullString
	if err := row.Scan(&t.ID, &t.Name, &description, &thumbnail, &isPremium, &previewURL); err != nil {
		return nil, err
	}
	t.Description = description.String
	t.Thumbnail = thumbnail.String
	t.PreviewURL = previewURL.String
	t.IsPremium = isPremium != 0
	return &t, nil
}
