package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmanzanog/devfolio/internal/domain"
)

const portfolioColumns = `id, user_id, name, slug, template_id, sections, custom_domain, seo, social_links, is_published, created_at, updated_at, published_at`

// Repository stores each portfolio as one row. Sections, SEO and social links
// are kept as JSON documents in text columns.
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) NextID() string {
	return uuid.NewString()
}

func (r *Repository) Create(ctx context.Context, p *domain.Portfolio) error {
	sections, seo, links, err := encodeDocuments(p.Sections, p.SEO, p.SocialLinks)
	if err != nil {
		return err
	}

	query := `INSERT INTO portfolios (` + portfolioColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.db.ExecContext(ctx, r.db.Dialect.Rebind(query),
		p.ID, p.UserID, p.Name, p.Slug, p.TemplateID,
		sections, nullString(p.CustomDomain), seo, links,
		boolToInt(p.IsPublished), p.CreatedAt, p.UpdatedAt, nullInt64(p.PublishedAt),
	)
	if err != nil {
		slog.Error("Failed to insert portfolio", "portfolio_id", p.ID, "error", err)
		return fmt.Errorf("insert portfolio: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE id = $1`

	row := r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), id)
	p, err := scanPortfolio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewPortfolioNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan portfolio: %w", err)
	}
	return p, nil
}

func (r *Repository) Find(ctx context.Context, q domain.Query) ([]*domain.Portfolio, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + portfolioColumns + ` FROM portfolios`)

	if q.Where != "" {
		col, err := columnFor(q.Where)
		if err != nil {
			return nil, err
		}
		args = append(args, q.Equals)
		sb.WriteString(" WHERE " + col + " = $1")
	}

	if q.OrderBy != "" {
		col, err := columnFor(q.OrderBy)
		if err != nil {
			return nil, err
		}
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		sb.WriteString(" ORDER BY " + col + " " + dir + ", id ASC")
	}

	if q.Limit > 0 {
		sb.WriteString(" " + r.db.Dialect.LimitClause(q.Limit))
	}

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(sb.String()), args...)
	if err != nil {
		slog.Error("Failed to query portfolios", "where", q.Where, "error", err)
		return nil, fmt.Errorf("query portfolios: %w", err)
	}
	defer func() { _ = rows.Close() }()

	portfolios := []*domain.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("scan portfolio: %w", err)
		}
		portfolios = append(portfolios, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate portfolios: %w", err)
	}

	return portfolios, nil
}

// Update writes only the columns present in update. updated_at is always set.
func (r *Repository) Update(ctx context.Context, id string, update domain.PortfolioUpdate) error {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Sections != nil {
		data, err := json.Marshal(update.Sections)
		if err != nil {
			return fmt.Errorf("encode sections: %w", err)
		}
		set("sections", string(data))
	}
	if update.SEO != nil {
		data, err := json.Marshal(update.SEO)
		if err != nil {
			return fmt.Errorf("encode seo: %w", err)
		}
		set("seo", string(data))
	}
	if update.SocialLinks != nil {
		data, err := json.Marshal(update.SocialLinks)
		if err != nil {
			return fmt.Errorf("encode social links: %w", err)
		}
		set("social_links", string(data))
	}
	if update.CustomDomain != nil {
		set("custom_domain", nullString(*update.CustomDomain))
	}
	if update.IsPublished != nil {
		set("is_published", boolToInt(*update.IsPublished))
	}
	if update.PublishedAt != nil {
		set("published_at", *update.PublishedAt)
	}
	set("updated_at", update.UpdatedAt)

	args = append(args, id)
	query := fmt.Sprintf("UPDATE portfolios SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query), args...)
	if err != nil {
		slog.Error("Failed to update portfolio", "portfolio_id", id, "error", err)
		return fmt.Errorf("update portfolio: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.NewPortfolioNotFound(id)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM portfolios WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query), id); err != nil {
		slog.Error("Failed to delete portfolio", "portfolio_id", id, "error", err)
		return fmt.Errorf("delete portfolio: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPortfolio(row rowScanner) (*domain.Portfolio, error) {
	var (
		p            domain.Portfolio
		sections     string
		customDomain sql.NullString
		seo          string
		links        string
		isPublished  int64
		publishedAt  sql.NullInt64
	)

	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Slug, &p.TemplateID,
		&sections, &customDomain, &seo, &links,
		&isPublished, &p.CreatedAt, &p.UpdatedAt, &publishedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(sections), &p.Sections); err != nil {
		return nil, fmt.Errorf("decode sections of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(seo), &p.SEO); err != nil {
		return nil, fmt.Errorf("decode seo of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(links), &p.SocialLinks); err != nil {
		return nil, fmt.Errorf("decode social links of %s: %w", p.ID, err)
	}
	if p.SocialLinks == nil {
		p.SocialLinks = map[string]string{}
	}

	p.CustomDomain = customDomain.String
	p.IsPublished = isPublished != 0
	if publishedAt.Valid {
		at := publishedAt.Int64
		p.PublishedAt = &at
	}

	return &p, nil
}

func encodeDocuments(sections []domain.Section, seo domain.SEO, links map[string]string) (string, string, string, error) {
	s, err := json.Marshal(sections)
	if err != nil {
		return "", "", "", fmt.Errorf("encode sections: %w", err)
	}
	m, err := json.Marshal(seo)
	if err != nil {
		return "", "", "", fmt.Errorf("encode seo: %w", err)
	}
	if links == nil {
		links = map[string]string{}
	}
	l, err := json.Marshal(links)
	if err != nil {
		return "", "", "", fmt.Errorf("encode social links: %w", err)
	}
	return string(s), string(m), string(l), nil
}

func columnFor(f domain.Field) (string, error) {
	switch f {
	case domain.FieldUserID:
		return "user_id", nil
	case domain.FieldSlug:
		return "slug", nil
	case domain.FieldUpdatedAt:
		return "updated_at", nil
	case domain.FieldCreatedAt:
		return "created_at", nil
	}
	return "", fmt.Errorf("unsupported query field %q", f)
}

// Oracle stores '' as NULL, so empty strings are written as NULL everywhere.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
