package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"wellness/internal/domains/token/model"
	gDto "wellness/shared/dto"
	"wellness/shared/timezone"
)

type tokenStore struct {
	*Store
}

func (r *tokenStore) InsertBalance(ctx context.Context, balance model.TokenBalance) error {
	return r.InsertBalanceTx(ctx, nil, balance)
}

func (r *tokenStore) InsertBalanceTx(_ context.Context, _ *sqlx.Tx, balance model.TokenBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("token.InsertBalance"); err != nil {
		return err
	}

	if _, ok := r.data.balances[balance.ID]; ok {
		return fmt.Errorf("token balance %s: %w", balance.ID, errDuplicateKey)
	}

	if balance.TokensRemaining < 0 {
		return fmt.Errorf("token balance %s: tokens_remaining must not be negative", balance.ID)
	}

	r.data.balances[balance.ID] = balance

	return nil
}

func (r *tokenStore) GetBalances(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.TokenBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return list(slices.Collect(maps.Values(r.data.balances)), params, filter), nil
}

func (r *tokenStore) GetUsable(_ context.Context, email string, asOf time.Time) ([]model.TokenBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("token.GetUsable"); err != nil {
		return nil, err
	}

	var res []model.TokenBalance

	for _, b := range r.data.balances {
		if b.CustomerEmail == email && b.UsableAt(asOf) {
			res = append(res, b)
		}
	}

	return res, nil
}

func (r *tokenStore) GetBalanceTx(_ context.Context, _ *sqlx.Tx, balanceID string) (model.TokenBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.data.balances[balanceID], nil
}

func (r *tokenStore) GetCatchAllTx(_ context.Context, _ *sqlx.Tx, email string) (model.TokenBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.data.balances {
		if b.CustomerEmail == email && b.Notes == model.CatchAllNote && b.ExpiresAt == nil {
			return b, nil
		}
	}

	return model.TokenBalance{}, nil
}

func (r *tokenStore) DeductTx(_ context.Context, _ *sqlx.Tx, balanceID string, amount int, asOf time.Time, user string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("token.DeductTx"); err != nil {
		return false, err
	}

	b, ok := r.data.balances[balanceID]
	if !ok || b.TokensRemaining < amount || (b.ExpiresAt != nil && !b.ExpiresAt.After(asOf)) {
		return false, nil
	}

	b.TokensRemaining -= amount
	b.ModifiedAt = timezone.Now()
	b.ModifiedBy = user
	r.data.balances[balanceID] = b

	return true, nil
}

func (r *tokenStore) CreditTx(_ context.Context, _ *sqlx.Tx, balanceID string, amount int, user string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("token.CreditTx"); err != nil {
		return err
	}

	b, ok := r.data.balances[balanceID]
	if !ok {
		return fmt.Errorf("failed to credit tokens: balance %s not found", balanceID)
	}

	b.TokensRemaining += amount
	b.ModifiedAt = timezone.Now()
	b.ModifiedBy = user
	r.data.balances[balanceID] = b

	return nil
}

func (r *tokenStore) InsertAllocationsTx(_ context.Context, _ *sqlx.Tx, allocations []model.TokenAllocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("token.InsertAllocationsTx"); err != nil {
		return err
	}

	r.data.allocations = append(r.data.allocations, allocations...)

	return nil
}

// GetAllocationsTx returns the booking's allocations newest first.
func (r *tokenStore) GetAllocationsTx(_ context.Context, _ *sqlx.Tx, bookingID string) ([]model.TokenAllocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("token.GetAllocationsTx"); err != nil {
		return nil, err
	}

	var res []model.TokenAllocation

	for _, a := range slices.Backward(r.data.allocations) {
		if a.BookingID == bookingID {
			res = append(res, a)
		}
	}

	return res, nil
}

func (r *tokenStore) RefundAllocationTx(_ context.Context, _ *sqlx.Tx, allocationID string, amount int, user string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("token.RefundAllocationTx"); err != nil {
		return err
	}

	for i, a := range r.data.allocations {
		if a.ID != allocationID {
			continue
		}

		if a.RefundedAmount+amount > a.Amount {
			return fmt.Errorf("failed to refund allocation %s: more than was allocated", allocationID)
		}

		a.RefundedAmount += amount
		a.ModifiedAt = timezone.Now()
		a.ModifiedBy = user
		r.data.allocations[i] = a

		return nil
	}

	return fmt.Errorf("failed to refund allocation %s: not found", allocationID)
}
