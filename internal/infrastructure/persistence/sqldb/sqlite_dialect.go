package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmanzanog/devfolio/internal/domain"
	"github.com/jmanzanog/devfolio/internal/infrastructure/persistence/sqldb/migrations"
	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // remote libSQL driver
	_ "modernc.org/sqlite"                              // local SQLite driver
)

// SQLiteDialect serves local SQLite files and remote libSQL databases.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.SQLiteFS)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "sqlite"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

// Rebind turns $n into ?n, SQLite's numbered parameter form.
func (d *SQLiteDialect) Rebind(query string) string {
	return rebindWithPrefix(query, "?")
}

func (d *SQLiteDialect) LimitClause(n int) string {
	return fmt.Sprintf("LIMIT %d", n)
}

func (d *SQLiteDialect) UpsertTemplate(ctx context.Context, tx *sql.Tx, t *domain.PortfolioTemplate, position int) error {
	query := `
		INSERT INTO templates (id, name, description, thumbnail, is_premium, preview_url, position)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			thumbnail = excluded.thumbnail,
			is_premium = excluded.is_premium,
			preview_url = excluded.preview_url,
			position = excluded.position
	`
	_, err := tx.ExecContext(ctx, query, t.ID, t.Name, t.Description, t.Thumbnail, boolToInt(t.IsPremium), t.PreviewURL, position)
	return err
}
