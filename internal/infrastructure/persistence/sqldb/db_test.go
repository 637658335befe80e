package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmanzanog/devfolio/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDB_WithTx_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	wrapper := New(db, &PostgresDialect{})

	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx := context.Background()
	err = wrapper.WithTx(ctx, func(tx *sql.Tx) error {
		return nil
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_WithTx_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	wrapper := New(db, &PostgresDialect{})

	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx := context.Background()
	expectedErr := errors.New("business error")
	err = wrapper.WithTx(ctx, func(tx *sql.Tx) error {
		return expectedErr
	})

	assert.Equal(t, expectedErr, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_WithTx_RollbackOnPanic(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	wrapper := New(db, &PostgresDialect{})

	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			assert.Equal(t, "unexpected panic", r)
			assert.NoError(t, mock.ExpectationsWereMet())
		}
	}()

	_ = wrapper.WithTx(ctx, func(tx *sql.Tx) error {
		panic("unexpected panic")
	})
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mongodb", "mongodb://localhost")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpen_DriversRegisteredByPackage(t *testing.T) {
	drivers := sql.Drivers()
	for _, name := range []string{"pgx", "oracle", "sqlite", "libsql"} {
		assert.Contains(t, drivers, name)
	}
}

func TestDialect_Rebind(t *testing.T) {
	query := "UPDATE portfolios SET name = $1, updated_at = $2 WHERE id = $3"

	tests := []struct {
		name    string
		dialect Dialect
		want    string
	}{
		{"postgres", &PostgresDialect{}, query},
		{"oracle", &OracleDialect{}, "UPDATE portfolios SET name = :1, updated_at = :2 WHERE id = :3"},
		{"sqlite", &SQLiteDialect{}, "UPDATE portfolios SET name = ?1, updated_at = ?2 WHERE id = ?3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.Rebind(query))
		})
	}
}

func TestRepository_Update_OnlySuppliedColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	repo := NewRepository(New(db, &PostgresDialect{}))

	mock.ExpectExec(`UPDATE portfolios SET name = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("Renamed", int64(42), "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	name := "Renamed"
	err = repo.Update(context.Background(), "p-1", domain.PortfolioUpdate{Name: &name, UpdatedAt: 42})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update_NoRowsIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	repo := NewRepository(New(db, &PostgresDialect{}))

	mock.ExpectExec(`UPDATE portfolios SET updated_at = \$1 WHERE id = \$2`).
		WithArgs(int64(7), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), "missing", domain.PortfolioUpdate{UpdatedAt: 7})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
