package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Token=MockTokenService

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"wellness/infras/otel"
	"wellness/internal/domains/token/model"
	"wellness/internal/domains/token/model/dto"
	"wellness/internal/domains/token/repository"
	"wellness/shared"
	"wellness/shared/constant"
	"wellness/shared/failure"
	gModel "wellness/shared/model"
	"wellness/shared/timezone"
)

type Token interface {
	AvailableTokens(ctx context.Context, email string, asOf time.Time) (dto.AvailableTokensResponse, error)
	Allocate(ctx context.Context, email string, count int, asOf time.Time) (model.AllocationPlan, error)
	Commit(ctx context.Context, sqltx *sqlx.Tx, bookingID string, plan model.AllocationPlan) error
	Refund(ctx context.Context, sqltx *sqlx.Tx, email string, count int, bookingID string) error
	Grant(ctx context.Context, req dto.GrantTokensRequest) (dto.BalanceResponse, error)
}

type serviceImpl struct {
	repo repository.Token
	otel otel.Otel
}

func New(repo repository.Token, otel otel.Otel) Token {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

func (s *serviceImpl) AvailableTokens(ctx context.Context, email string, asOf time.Time) (res dto.AvailableTokensResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".token.AvailableTokens")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	email = model.NormalizeEmail(email)

	balances, err := s.usable(ctx, email, asOf)
	if err != nil {
		return res, err
	}

	res.FromModels(email, balances)

	return res, nil
}

// Allocate plans a draw of count tokens, soonest-expiring balances first. Nothing is written.
func (s *serviceImpl) Allocate(ctx context.Context, email string, count int, asOf time.Time) (plan model.AllocationPlan, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".token.Allocate")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	email = model.NormalizeEmail(email)

	balances, err := s.usable(ctx, email, asOf)
	if err != nil {
		return plan, err
	}

	total := 0
	for _, b := range balances {
		total += b.TokensRemaining
	}

	if total < count {
		log.Warn().Str("email", email).Int("available", total).Int("requested", count).Msg("insufficient session tokens")

		return plan, failure.InsufficientTokens(total, count) // nolint:wrapcheck
	}

	plan = model.AllocationPlan{Email: email, AsOf: asOf}
	need := count

	for _, b := range balances {
		if need == 0 {
			break
		}

		take := min(b.TokensRemaining, need)
		plan.Entries = append(plan.Entries, model.PlanEntry{BalanceID: b.ID, Amount: take, ExpiresAt: b.ExpiresAt})
		need -= take
	}

	return plan, nil
}

// Commit applies plan inside sqltx. Each deduction is conditional, so a balance drained or expired
// since planning fails the whole commit with InsufficientTokens.
func (s *serviceImpl) Commit(ctx context.Context, sqltx *sqlx.Tx, bookingID string, plan model.AllocationPlan) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".token.Commit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user := shared.ActingUser(ctx)
	allocations := make([]model.TokenAllocation, 0, len(plan.Entries))

	for _, entry := range plan.Entries {
		ok, err := s.repo.DeductTx(ctx, sqltx, entry.BalanceID, entry.Amount, plan.AsOf, user)
		if err != nil {
			log.Error().Err(err).Str("balance_id", entry.BalanceID).Str("booking_id", bookingID).Msg("failed to deduct tokens")

			return fmt.Errorf("failed to deduct tokens: %w", err)
		}

		if !ok {
			available := 0
			if balances, err := s.repo.GetUsable(ctx, plan.Email, plan.AsOf); err == nil {
				for _, b := range balances {
					available += b.TokensRemaining
				}
			}

			log.Warn().Str("balance_id", entry.BalanceID).Str("booking_id", bookingID).Msg("token balance changed since allocation")

			return failure.InsufficientTokens(available, plan.Total()) // nolint:wrapcheck
		}

		allocations = append(allocations, model.TokenAllocation{
			ID:        uuid.NewString(),
			BookingID: bookingID,
			BalanceID: entry.BalanceID,
			Amount:    entry.Amount,
			Metadata:  gModel.NewMetadata(user),
		})
	}

	if err = s.repo.InsertAllocationsTx(ctx, sqltx, allocations); err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to record token allocations")

		return fmt.Errorf("failed to record token allocations: %w", err)
	}

	return nil
}

// Refund returns count tokens for a booking. Recorded allocations are reversed newest first,
// back into the balance that supplied them while it is still valid. Whatever cannot be traced
// that way lands in the customer's non-expiring catch-all balance.
func (s *serviceImpl) Refund(ctx context.Context, sqltx *sqlx.Tx, email string, count int, bookingID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".token.Refund")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if count <= 0 {
		return nil
	}

	email = model.NormalizeEmail(email)
	user := shared.ActingUser(ctx)

	allocations, err := s.repo.GetAllocationsTx(ctx, sqltx, bookingID)
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get token allocations")

		return fmt.Errorf("failed to get token allocations: %w", err)
	}

	now := timezone.Now()
	remaining := count
	orphaned := 0

	for _, a := range allocations {
		if remaining == 0 {
			break
		}

		n := min(a.Outstanding(), remaining)
		if n == 0 {
			continue
		}

		if err = s.repo.RefundAllocationTx(ctx, sqltx, a.ID, n, user); err != nil {
			log.Error().Err(err).Str("allocation_id", a.ID).Msg("failed to mark allocation refunded")

			return fmt.Errorf("failed to mark allocation refunded: %w", err)
		}

		remaining -= n

		balance, err := s.repo.GetBalanceTx(ctx, sqltx, a.BalanceID)
		if err != nil {
			log.Error().Err(err).Str("balance_id", a.BalanceID).Msg("failed to get token balance")

			return fmt.Errorf("failed to get token balance: %w", err)
		}

		if balance.ID == constant.Empty || (balance.ExpiresAt != nil && !balance.ExpiresAt.After(now)) {
			orphaned += n

			continue
		}

		if err = s.repo.CreditTx(ctx, sqltx, balance.ID, n, user); err != nil {
			log.Error().Err(err).Str("balance_id", balance.ID).Msg("failed to credit tokens")

			return fmt.Errorf("failed to credit tokens: %w", err)
		}
	}

	if leftover := remaining + orphaned; leftover > 0 {
		if err = s.creditCatchAll(ctx, sqltx, email, leftover, user); err != nil {
			return err
		}
	}

	log.Info().Str("booking_id", bookingID).Str("email", email).Int("tokens", count).Msg("session tokens refunded")

	return nil
}

func (s *serviceImpl) creditCatchAll(ctx context.Context, sqltx *sqlx.Tx, email string, amount int, user string) error {
	catchAll, err := s.repo.GetCatchAllTx(ctx, sqltx, email)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("failed to get catch-all token balance")

		return fmt.Errorf("failed to get catch-all token balance: %w", err)
	}

	if catchAll.ID != constant.Empty {
		if err = s.repo.CreditTx(ctx, sqltx, catchAll.ID, amount, user); err != nil {
			log.Error().Err(err).Str("balance_id", catchAll.ID).Msg("failed to credit catch-all balance")

			return fmt.Errorf("failed to credit catch-all balance: %w", err)
		}

		return nil
	}

	err = s.repo.InsertBalanceTx(ctx, sqltx, model.TokenBalance{
		ID:              uuid.NewString(),
		CustomerEmail:   email,
		TokensRemaining: amount,
		Notes:           model.CatchAllNote,
		Metadata:        gModel.NewMetadata(user),
	})
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("failed to create catch-all balance")

		return fmt.Errorf("failed to create catch-all balance: %w", err)
	}

	return nil
}

func (s *serviceImpl) Grant(ctx context.Context, req dto.GrantTokensRequest) (res dto.BalanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".token.Grant")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	balance, err := req.ToModel(shared.ActingUser(ctx))
	if err != nil {
		return res, failure.Validation("expires_at must be a date in 2006-01-02 format") // nolint:wrapcheck
	}

	if err = s.repo.InsertBalance(ctx, balance); err != nil {
		log.Error().Err(err).Str("email", balance.CustomerEmail).Msg("failed to grant tokens")

		return res, fmt.Errorf("failed to grant tokens: %w", err)
	}

	log.Info().Str("email", balance.CustomerEmail).Int("tokens", balance.TokensRemaining).Msg("session tokens granted")

	res.FromModel(balance)

	return res, nil
}

// usable orders balances soonest expiry first, non-expiring last, oldest first on ties.
func (s *serviceImpl) usable(ctx context.Context, email string, asOf time.Time) ([]model.TokenBalance, error) {
	balances, err := s.repo.GetUsable(ctx, email, asOf)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("failed to get token balances")

		return nil, fmt.Errorf("failed to get token balances: %w", err)
	}

	balances = slices.DeleteFunc(balances, func(b model.TokenBalance) bool { return !b.UsableAt(asOf) })

	slices.SortStableFunc(balances, func(a, b model.TokenBalance) int {
		switch {
		case a.ExpiresAt == nil && b.ExpiresAt == nil:
			return a.CreatedAt.Compare(b.CreatedAt)
		case a.ExpiresAt == nil:
			return 1
		case b.ExpiresAt == nil:
			return -1
		case !a.ExpiresAt.Equal(*b.ExpiresAt):
			return a.ExpiresAt.Compare(*b.ExpiresAt)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	})

	return balances, nil
}
