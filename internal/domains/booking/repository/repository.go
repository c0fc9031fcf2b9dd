package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"wellness/infras/otel"
	"wellness/infras/postgres"
	"wellness/internal/domains/booking/model"
	"wellness/shared"
	"wellness/shared/constant"
	gDto "wellness/shared/dto"
	"wellness/shared/logger"
	gRepo "wellness/shared/repository"
)

type Booking interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, booking model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error)
	CancelTx(ctx context.Context, sqltx *sqlx.Tx, id string, at time.Time, user string) (bool, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.Booking, error) {
	return r.Repository.GetForUpdateTx(ctx, sqltx, shared.FilterByID(id, model.FieldID, model.TableName)) //nolint:wrapcheck
}

// CancelTx flips the booking to cancelled unless it already is. False means another caller got
// there first.
func (r *repositoryImpl) CancelTx(ctx context.Context, sqltx *sqlx.Tx, id string, at time.Time, user string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.CancelTx")
	defer scope.End()

	query, args, err := gRepo.SQL.Update(model.TableName).
		Set(model.FieldBookingStatus, model.StatusCancelled).
		Set(model.FieldCancelledAt, at).
		Set(constant.FieldModifiedAt, at).
		Set(constant.FieldModifiedBy, user).
		Where(squirrel.Eq{model.FieldID: id}).
		Where(squirrel.NotEq{model.FieldBookingStatus: model.StatusCancelled}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build booking cancel: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := sqltx.ExecContext(ctx, query, args...)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read cancelled rows: %w", err)
	}

	return affected == 1, nil
}
