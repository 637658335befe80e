package sqldb

import (
	"context"
	"database/sql"
	"regexp"

	"github.com/jmanzanog/devfolio/internal/domain"
)

// Dialect isolates the SQL differences between backends. Queries are written
// with $n placeholders and passed through Rebind.
type Dialect interface {
	Name() string
	Migrate(ctx context.Context, db *sql.DB) error
	Rebind(query string) string
	LimitClause(n int) string
	UpsertTemplate(ctx context.Context, tx *sql.Tx, t *domain.PortfolioTemplate, position int) error
}

var dollarPlaceholder = regexp.MustCompile(`\$(\d+)`)

func rebindWithPrefix(query, prefix string) string {
	return dollarPlaceholder.ReplaceAllString(query, prefix+"${1}")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
