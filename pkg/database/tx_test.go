package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockTransactor(t *testing.T) (*Transactor, *sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewTransactor(sqlxDB), sqlxDB, mock
}

func TestWithinTransactionCommits(t *testing.T) {
	tr, db, mock := newMockTransactor(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM attendance_records").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := tr.WithinTransaction(context.Background(), func(ctx context.Context) error {
		_, ok := TxFromContext(ctx)
		assert.True(t, ok)
		_, execErr := Executor(ctx, db).ExecContext(ctx, "DELETE FROM attendance_records WHERE session_id = $1", "s1")
		return execErr
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTransactionRollsBackOnError(t *testing.T) {
	tr, _, mock := newMockTransactor(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := tr.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTransactionRollsBackOnPanic(t *testing.T) {
	tr, _, mock := newMockTransactor(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = tr.WithinTransaction(context.Background(), func(ctx context.Context) error {
			panic("unexpected")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTransactionJoinsOuter(t *testing.T) {
	tr, _, mock := newMockTransactor(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := tr.WithinTransaction(context.Background(), func(ctx context.Context) error {
		outer, _ := TxFromContext(ctx)
		return tr.WithinTransaction(ctx, func(inner context.Context) error {
			tx, _ := TxFromContext(inner)
			assert.Same(t, outer, tx)
			return nil
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutorFallsBackToDB(t *testing.T) {
	_, db, _ := newMockTransactor(t)
	assert.Equal(t, db, Executor(context.Background(), db))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
}
