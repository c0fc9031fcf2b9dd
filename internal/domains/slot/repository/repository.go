package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"wellness/infras/otel"
	"wellness/infras/postgres"
	"wellness/internal/domains/slot/model"
	"wellness/shared/constant"
	gDto "wellness/shared/dto"
	"wellness/shared/logger"
	gRepo "wellness/shared/repository"
	"wellness/shared/timezone"
)

// ErrGuardRejected means the slot exists but the occupancy guard refused the change.
var ErrGuardRejected = errors.New("occupancy guard rejected the change")

type Slot interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.TimeSlot, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.TimeSlot, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	GetTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (model.TimeSlot, error)
	FindOrCreateTx(ctx context.Context, sqltx *sqlx.Tx, candidate model.TimeSlot) (model.TimeSlot, error)
	AdjustOccupancyTx(ctx context.Context, sqltx *sqlx.Tx, id string, delta int, mode model.Mode, user string) (model.TimeSlot, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.TimeSlot]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Slot {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.TimeSlot](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// FindOrCreateTx inserts candidate unless its (date, time, service) key exists, then returns the
// stored row locked for the rest of the transaction.
func (r *repositoryImpl) FindOrCreateTx(ctx context.Context, sqltx *sqlx.Tx, candidate model.TimeSlot) (res model.TimeSlot, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".slot.FindOrCreateTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	day := candidate.SlotDate.Format(constant.DayFormat)

	insert, args, err := gRepo.SQL.Insert(model.TableName).
		SetMap(map[string]any{
			model.FieldID:            candidate.ID,
			model.FieldSlotDate:      day,
			model.FieldSlotTime:      candidate.SlotTime,
			model.FieldServiceType:   candidate.ServiceType,
			model.FieldCapacity:      candidate.Capacity,
			model.FieldBookedCount:   0,
			model.FieldIsPrivate:     false,
			model.FieldIsAvailable:   true,
			constant.FieldCreatedAt:  candidate.CreatedAt,
			constant.FieldModifiedAt: candidate.ModifiedAt,
			constant.FieldCreatedBy:  candidate.CreatedBy,
			constant.FieldModifiedBy: candidate.ModifiedBy,
		}).
		Suffix("ON CONFLICT (slot_date, slot_time, service_type) DO NOTHING").
		ToSql()
	if err != nil {
		return res, fmt.Errorf("failed to build slot insert: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, insert)

	if _, err = sqltx.ExecContext(ctx, insert, args...); err != nil {
		logger.ErrorWithStack(err)

		return res, fmt.Errorf("failed to insert slot: %w", err)
	}

	query, args, err := gRepo.SQL.Select(r.Columns()...).
		From(model.TableName).
		Where(squirrel.Eq{
			model.FieldSlotDate:    day,
			model.FieldSlotTime:    candidate.SlotTime,
			model.FieldServiceType: candidate.ServiceType,
		}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return res, fmt.Errorf("failed to build slot select: %w", err)
	}

	if err = sqltx.QueryRowxContext(ctx, query, args...).StructScan(&res); err != nil {
		logger.ErrorWithStack(err)

		return res, fmt.Errorf("failed to lock slot: %w", err)
	}

	return res, nil
}

// AdjustOccupancyTx applies delta to booked_count in one guarded UPDATE. ErrGuardRejected is
// returned when the row exists but the guard for mode does not hold; a missing row also yields it,
// callers re-read to tell the two apart.
func (r *repositoryImpl) AdjustOccupancyTx(ctx context.Context, sqltx *sqlx.Tx, id string, delta int, mode model.Mode, user string) (res model.TimeSlot, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".slot.AdjustOccupancyTx")
	defer scope.End()

	builder := gRepo.SQL.Update(model.TableName).
		Set(model.FieldBookedCount, squirrel.Expr("booked_count + ?", delta)).
		Set(constant.FieldModifiedAt, timezone.Now()).
		Set(constant.FieldModifiedBy, user)

	switch mode {
	case model.ModeClaimPrivate:
		builder = builder.
			Set(model.FieldIsPrivate, true).
			Set(model.FieldIsAvailable, false).
			Where(squirrel.Eq{model.FieldID: id}).
			Where("booked_count = 0 AND NOT is_private")
	case model.ModeReleasePrivate:
		builder = builder.
			Set(model.FieldIsPrivate, false).
			Set(model.FieldIsAvailable, squirrel.Expr("booked_count + ? < capacity", delta)).
			Where(squirrel.Eq{model.FieldID: id}).
			Where(squirrel.Expr("is_private AND booked_count + ? >= 0", delta))
	case model.ModeResizePrivate:
		builder = builder.
			Where(squirrel.Eq{model.FieldID: id}).
			Where(squirrel.Expr("is_private AND booked_count + ? >= 1", delta))
	default:
		builder = builder.
			Set(model.FieldIsAvailable, squirrel.Expr("NOT is_private AND booked_count + ? < capacity", delta)).
			Where(squirrel.Eq{model.FieldID: id})

		if delta > 0 {
			builder = builder.Where(squirrel.Expr("NOT is_private AND booked_count + ? <= capacity", delta))
		} else {
			builder = builder.Where(squirrel.Expr("booked_count + ? >= 0", delta))
		}
	}

	query, args, err := builder.Suffix("RETURNING " + strings.Join(r.Columns(), ", ")).ToSql()
	if err != nil {
		return res, fmt.Errorf("failed to build occupancy update: %w", err)
	}

	scope.SetAttributes(map[string]any{
		constant.OtelQueryAttributeKey: query,
		"slot.id":                      id,
		"slot.delta":                   delta,
		"slot.mode":                    mode.String(),
	})

	err = sqltx.QueryRowxContext(ctx, query, args...).StructScan(&res)
	if errors.Is(err, sql.ErrNoRows) {
		return res, ErrGuardRejected
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return res, fmt.Errorf("failed to adjust slot occupancy: %w", err)
	}

	return res, nil
}
