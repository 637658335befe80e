package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type DB struct {
	*sql.DB
	Dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *DB {
	return &DB{
		DB:      db,
		Dialect: dialect,
	}
}

// Open connects to the database for the given driver and pings it.
// Supported drivers are postgres, oracle and sqlite. A sqlite DSN starting
// with libsql:// or wss:// is opened through the libSQL client instead.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var (
		driverName string
		dialect    Dialect
	)

	switch driver {
	case "postgres":
		driverName, dialect = "pgx", &PostgresDialect{}
	case "oracle":
		driverName, dialect = "oracle", &OracleDialect{}
	case "sqlite":
		driverName, dialect = "sqlite", &SQLiteDialect{}
		if strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "wss://") {
			driverName = "libsql"
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}

	if driverName == "sqlite" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}

	return New(db, dialect), nil
}

func (db *DB) Migrate(ctx context.Context) error {
	return db.Dialect.Migrate(ctx, db.DB)
}

func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
