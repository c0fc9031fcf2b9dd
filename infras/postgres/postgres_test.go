package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/infras/postgres"
)

func newConnection(t *testing.T) (*postgres.Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")

	return &postgres.Connection{Read: sqlxDB, Write: sqlxDB}, mock
}

func TestWithTransaction_Commit(t *testing.T) {
	conn, mock := newConnection(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE time_slots").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := postgres.NewTransactor(conn).WithTransaction(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.Exec("UPDATE time_slots SET booked_count = booked_count + 1")

		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	conn, mock := newConnection(t)
	boom := errors.New("capacity exceeded")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := conn.WithTransaction(context.Background(), func(_ *sqlx.Tx) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_RollbackOnPanic(t *testing.T) {
	conn, mock := newConnection(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = conn.WithTransaction(context.Background(), func(_ *sqlx.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_BeginFails(t *testing.T) {
	conn, mock := newConnection(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	called := false
	err := conn.WithTransaction(context.Background(), func(_ *sqlx.Tx) error {
		called = true

		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
}
