package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/infras/otel/mocks"
	"wellness/infras/postgres"
	"wellness/internal/domains/booking/model"
	"wellness/internal/domains/booking/repository"
)

func newRepo(t *testing.T) (repository.Booking, sqlmock.Sqlmock, *sqlx.Tx) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "postgres")
	conn := &postgres.Connection{Read: sqlxDB, Write: sqlxDB}

	mock.ExpectBegin()

	tx, err := sqlxDB.Beginx()
	require.NoError(t, err)

	return repository.New(conn, mocks.NewOtel()), mock, tx
}

func TestBooking_CancelTx(t *testing.T) {
	at := time.Date(2099, 5, 30, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "first cancel wins", affected: 1, want: true},
		{name: "already cancelled", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, tx := newRepo(t)

			mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET booking_status = $1, cancelled_at = $2, modified_at = $3, modified_by = $4 WHERE id = $5 AND booking_status <> $6")).
				WithArgs(model.StatusCancelled, at, at, "tester", "b-1", model.StatusCancelled).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := repo.CancelTx(context.Background(), tx, "b-1", at, "tester")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBooking_CancelTxDatabaseError(t *testing.T) {
	repo, mock, tx := newRepo(t)

	mock.ExpectExec("UPDATE bookings").WillReturnError(errors.New("connection reset"))

	_, err := repo.CancelTx(context.Background(), tx, "b-1", time.Now(), "tester")
	assert.ErrorContains(t, err, "failed to cancel booking")
}
