package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmanzanog/devfolio/internal/domain"
	"github.com/jmanzanog/devfolio/internal/infrastructure/persistence/sqldb/migrations"
	_ "github.com/sijms/go-ora/v2" // registers the "oracle" driver
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) Migrate(ctx context.Context, db *sql.DB) error {
	// Goose does not support Oracle natively in a way that is easy to cross-compile with go-ora.
	// Read the SQL file and execute it statement by statement.
	content, err := migrations.OracleFS.ReadFile("oracle/20240101000000_init.sql")
	if err != nil {
		return fmt.Errorf("reading migration file: %w", err)
	}

	// Split statements by '/' which is standard in Oracle scripts
	statements := strings.Split(string(content), "\n/")

	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			// ORA-00955: name is already used by an existing object
			if !strings.Contains(err.Error(), "ORA-00955") {
				return fmt.Errorf("migrating: %s: %w", stmt, err)
			}
		}
	}
	return nil
}

func (d *OracleDialect) Rebind(query string) string {
	return rebindWithPrefix(query, ":")
}

func (d *OracleDialect) LimitClause(n int) string {
	return fmt.Sprintf("FETCH FIRST %d ROWS ONLY", n)
}

func (d *OracleDialect) UpsertTemplate(ctx context.Context, tx *sql.Tx, t *domain.PortfolioTemplate, position int) error {
	query := `MERGE INTO templates t
             USING (SELECT :1 as id_val FROM dual) s
             ON (t.id = s.id_val)
             WHEN MATCHED THEN
               UPDATE SET name = :2, description = :3, thumbnail = :4, is_premium = :5, preview_url = :6, position = :7
             WHEN NOT MATCHED THEN
               INSERT (id, name, description, thumbnail, is_premium, preview_url, position)
               VALUES (:8, :9, :10, :11, :12, :13, :14)`

	_, err := tx.ExecContext(ctx, query,
		t.ID,                   // 1 (s.id_val)
		t.Name,                 // 2 (UPDATE)
		t.Description,          // 3
		t.Thumbnail,            // 4
		boolToInt(t.IsPremium), // 5
		t.PreviewURL,           // 6
		position,               // 7
		t.ID,                   // 8 (INSERT)
		t.Name,                 // 9
		t.Description,          // 10
		t.Thumbnail,            // 11
		boolToInt(t.IsPremium), // 12
		t.PreviewURL,           // 13
		position,               // 14
	)
	return err
}
