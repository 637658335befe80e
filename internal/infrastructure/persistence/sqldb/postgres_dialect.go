package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmanzanog/devfolio/internal/domain"
	"github.com/jmanzanog/devfolio/internal/infrastructure/persistence/sqldb/migrations"
	"github.com/pressly/goose/v3"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.PostgresFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "postgres"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

func (d *PostgresDialect) Rebind(query string) string { return query }

func (d *PostgresDialect) LimitClause(n int) string {
	return fmt.Sprintf("LIMIT %d", n)
}

func (d *PostgresDialect) UpsertTemplate(ctx context.Context, tx *sql.Tx, t *domain.PortfolioTemplate, position int) error {
	query := `
		INSERT INTO templates (id, name, description, thumbnail, is_premium, preview_url, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			thumbnail = EXCLUDED.thumbnail,
			is_premium = EXCLUDED.is_premium,
			preview_url = EXCLUDED.preview_url,
			position = EXCLUDED.position
	`
	_, err := tx.ExecContext(ctx, query, t.ID, t.Name, t.Description, t.Thumbnail, boolToInt(t.IsPremium), t.PreviewURL, position)
	return err
}
