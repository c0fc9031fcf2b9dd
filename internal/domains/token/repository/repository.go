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
	"wellness/internal/domains/token/model"
	"wellness/shared"
	"wellness/shared/constant"
	gDto "wellness/shared/dto"
	"wellness/shared/logger"
	gRepo "wellness/shared/repository"
	"wellness/shared/timezone"
)

type Token interface {
	InsertBalance(ctx context.Context, balance model.TokenBalance) error
	InsertBalanceTx(ctx context.Context, sqltx *sqlx.Tx, balance model.TokenBalance) error
	GetBalances(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.TokenBalance, error)
	GetUsable(ctx context.Context, email string, asOf time.Time) ([]model.TokenBalance, error)
	GetBalanceTx(ctx context.Context, sqltx *sqlx.Tx, balanceID string) (model.TokenBalance, error)
	GetCatchAllTx(ctx context.Context, sqltx *sqlx.Tx, email string) (model.TokenBalance, error)
	DeductTx(ctx context.Context, sqltx *sqlx.Tx, balanceID string, amount int, asOf time.Time, user string) (bool, error)
	CreditTx(ctx context.Context, sqltx *sqlx.Tx, balanceID string, amount int, user string) error
	InsertAllocationsTx(ctx context.Context, sqltx *sqlx.Tx, allocations []model.TokenAllocation) error
	GetAllocationsTx(ctx context.Context, sqltx *sqlx.Tx, bookingID string) ([]model.TokenAllocation, error)
	RefundAllocationTx(ctx context.Context, sqltx *sqlx.Tx, allocationID string, amount int, user string) error
}

type repositoryImpl struct {
	balances    gRepo.Repository[model.TokenBalance]
	allocations gRepo.Repository[model.TokenAllocation]
	db          *postgres.Connection
	otel        otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Token {
	return &repositoryImpl{
		balances:    gRepo.NewRepository[model.TokenBalance](model.EntityName, model.TableName, model.FieldID, db, otel),
		allocations: gRepo.NewRepository[model.TokenAllocation](model.AllocationEntityName, model.AllocationTableName, model.FieldAllocationID, db, otel),
		db:          db,
		otel:        otel,
	}
}

func (r *repositoryImpl) InsertBalance(ctx context.Context, balance model.TokenBalance) error {
	return r.balances.Insert(ctx, balance) //nolint:wrapcheck
}

func (r *repositoryImpl) InsertBalanceTx(ctx context.Context, sqltx *sqlx.Tx, balance model.TokenBalance) error {
	return r.balances.InsertTx(ctx, sqltx, balance) //nolint:wrapcheck
}

func (r *repositoryImpl) GetBalances(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.TokenBalance, error) {
	return r.balances.GetAll(ctx, params, filter) //nolint:wrapcheck
}

// GetUsable lists balances that can still supply tokens at asOf, soonest expiry first and
// non-expiring balances last.
func (r *repositoryImpl) GetUsable(ctx context.Context, email string, asOf time.Time) (res []model.TokenBalance, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".token.GetUsable")
	defer scope.End()

	query, args, err := gRepo.SQL.Select(r.balances.Columns()...).
		From(model.TableName).
		Where(squirrel.Eq{model.FieldCustomerEmail: email}).
		Where(squirrel.Gt{model.FieldTokensRemaining: 0}).
		Where(squirrel.Or{squirrel.Eq{model.FieldExpiresAt: nil}, squirrel.Gt{model.FieldExpiresAt: asOf}}).
		OrderBy("expires_at ASC NULLS LAST", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build usable balances query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err = r.db.Read.SelectContext(ctx, &res, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get usable balances: %w", err)
	}

	return res, nil
}

func (r *repositoryImpl) GetBalanceTx(ctx context.Context, sqltx *sqlx.Tx, balanceID string) (model.TokenBalance, error) {
	return r.balances.GetForUpdateTx(ctx, sqltx, shared.FilterByID(balanceID, model.FieldID, model.TableName)) //nolint:wrapcheck
}

// GetCatchAllTx locks the customer's non-expiring refund balance, or returns the zero value when
// there is none yet.
func (r *repositoryImpl) GetCatchAllTx(ctx context.Context, sqltx *sqlx.Tx, email string) (model.TokenBalance, error) {
	filter := gDto.And(
		gDto.Eq(model.TableName, model.FieldCustomerEmail, email),
		gDto.Eq(model.TableName, model.FieldNotes, model.CatchAllNote),
		gDto.Where(model.TableName, model.FieldExpiresAt, gDto.FilterIsNull, nil),
	)

	return r.balances.GetForUpdateTx(ctx, sqltx, filter) //nolint:wrapcheck
}

// DeductTx takes amount tokens from a balance only if it still holds them and has not expired.
// It reports false when the guard did not match.
func (r *repositoryImpl) DeductTx(ctx context.Context, sqltx *sqlx.Tx, balanceID string, amount int, asOf time.Time, user string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".token.DeductTx")
	defer scope.End()

	query, args, err := gRepo.SQL.Update(model.TableName).
		Set(model.FieldTokensRemaining, squirrel.Expr("tokens_remaining - ?", amount)).
		Set(constant.FieldModifiedAt, timezone.Now()).
		Set(constant.FieldModifiedBy, user).
		Where(squirrel.Eq{model.FieldID: balanceID}).
		Where(squirrel.GtOrEq{model.FieldTokensRemaining: amount}).
		Where(squirrel.Or{squirrel.Eq{model.FieldExpiresAt: nil}, squirrel.Gt{model.FieldExpiresAt: asOf}}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build token deduction: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := sqltx.ExecContext(ctx, query, args...)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to deduct tokens: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read deducted rows: %w", err)
	}

	return affected == 1, nil
}

func (r *repositoryImpl) CreditTx(ctx context.Context, sqltx *sqlx.Tx, balanceID string, amount int, user string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".token.CreditTx")
	defer scope.End()

	query, args, err := gRepo.SQL.Update(model.TableName).
		Set(model.FieldTokensRemaining, squirrel.Expr("tokens_remaining + ?", amount)).
		Set(constant.FieldModifiedAt, timezone.Now()).
		Set(constant.FieldModifiedBy, user).
		Where(squirrel.Eq{model.FieldID: balanceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build token credit: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := sqltx.ExecContext(ctx, query, args...)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to credit tokens: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("failed to credit tokens: balance %s not found", balanceID)
	}

	return nil
}

func (r *repositoryImpl) InsertAllocationsTx(ctx context.Context, sqltx *sqlx.Tx, allocations []model.TokenAllocation) error {
	if len(allocations) == 0 {
		return nil
	}

	return r.allocations.InsertBulkTx(ctx, sqltx, allocations) //nolint:wrapcheck
}

// GetAllocationsTx returns the booking's allocations newest first.
func (r *repositoryImpl) GetAllocationsTx(ctx context.Context, sqltx *sqlx.Tx, bookingID string) (res []model.TokenAllocation, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".token.GetAllocationsTx")
	defer scope.End()

	query, args, err := gRepo.SQL.Select(r.allocations.Columns()...).
		From(model.AllocationTableName).
		Where(squirrel.Eq{model.FieldAllocationBookingID: bookingID}).
		OrderBy("created_at DESC").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build allocations query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err = sqltx.SelectContext(ctx, &res, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get allocations: %w", err)
	}

	return res, nil
}

func (r *repositoryImpl) RefundAllocationTx(ctx context.Context, sqltx *sqlx.Tx, allocationID string, amount int, user string) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".token.RefundAllocationTx")
	defer scope.End()

	query, args, err := gRepo.SQL.Update(model.AllocationTableName).
		Set(model.FieldAllocationRefundedAmount, squirrel.Expr("refunded_amount + ?", amount)).
		Set(constant.FieldModifiedAt, timezone.Now()).
		Set(constant.FieldModifiedBy, user).
		Where(squirrel.Eq{model.FieldAllocationID: allocationID}).
		Where(squirrel.Expr("refunded_amount + ? <= amount", amount)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build allocation refund: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := sqltx.ExecContext(ctx, query, args...)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to refund allocation: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("failed to refund allocation %s: more than was allocated", allocationID)
	}

	return nil
}
