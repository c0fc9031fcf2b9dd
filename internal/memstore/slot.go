package memstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/jmoiron/sqlx"

	"wellness/internal/domains/slot/model"
	"wellness/internal/domains/slot/repository"
	gDto "wellness/shared/dto"
	"wellness/shared/timezone"
)

var errDuplicateKey = errors.New("duplicate key value violates unique constraint")

type slotStore struct {
	*Store
}

func (r *slotStore) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("slot.Get"); err != nil {
		return model.TimeSlot{}, err
	}

	return first(slices.Collect(maps.Values(r.data.slots)), filter), nil
}

func (r *slotStore) GetTx(ctx context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) (model.TimeSlot, error) {
	return r.Get(ctx, filter)
}

func (r *slotStore) GetAll(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("slot.GetAll"); err != nil {
		return nil, err
	}

	return list(slices.Collect(maps.Values(r.data.slots)), params, filter), nil
}

func (r *slotStore) Count(_ context.Context, filter gDto.FilterGroup) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(list(slices.Collect(maps.Values(r.data.slots)), gDto.QueryParams{}, filter)), nil
}

func (r *slotStore) FindOrCreateTx(_ context.Context, _ *sqlx.Tx, candidate model.TimeSlot) (model.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("slot.FindOrCreateTx"); err != nil {
		return model.TimeSlot{}, err
	}

	for _, slot := range r.data.slots {
		if slot.Key() == candidate.Key() {
			return slot, nil
		}
	}

	if _, ok := r.data.slots[candidate.ID]; ok {
		return model.TimeSlot{}, fmt.Errorf("slot %s: %w", candidate.ID, errDuplicateKey)
	}

	candidate.BookedCount = 0
	candidate.IsPrivate = false
	candidate.IsAvailable = true
	r.data.slots[candidate.ID] = candidate

	return candidate, nil
}

// AdjustOccupancyTx applies the same guards as the conditional UPDATE in the SQL repository.
func (r *slotStore) AdjustOccupancyTx(_ context.Context, _ *sqlx.Tx, id string, delta int, mode model.Mode, user string) (model.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("slot.AdjustOccupancyTx"); err != nil {
		return model.TimeSlot{}, err
	}

	slot, ok := r.data.slots[id]
	if !ok {
		return model.TimeSlot{}, repository.ErrGuardRejected
	}

	next := slot.BookedCount + delta

	switch mode {
	case model.ModeClaimPrivate:
		if slot.BookedCount != 0 || slot.IsPrivate {
			return model.TimeSlot{}, repository.ErrGuardRejected
		}

		slot.IsPrivate = true
		slot.IsAvailable = false
	case model.ModeReleasePrivate:
		if !slot.IsPrivate || next < 0 {
			return model.TimeSlot{}, repository.ErrGuardRejected
		}

		slot.IsPrivate = false
		slot.IsAvailable = next < slot.Capacity
	case model.ModeResizePrivate:
		if !slot.IsPrivate || next < 1 {
			return model.TimeSlot{}, repository.ErrGuardRejected
		}
	default:
		if delta > 0 && (slot.IsPrivate || next > slot.Capacity) {
			return model.TimeSlot{}, repository.ErrGuardRejected
		}

		if delta <= 0 && next < 0 {
			return model.TimeSlot{}, repository.ErrGuardRejected
		}

		slot.IsAvailable = !slot.IsPrivate && next < slot.Capacity
	}

	slot.BookedCount = next
	slot.ModifiedAt = timezone.Now()
	slot.ModifiedBy = user
	r.data.slots[id] = slot

	return slot, nil
}

func first[T any](rows []T, filter gDto.FilterGroup) T {
	var zero T

	for _, row := range rows {
		if matches(row, filter) {
			return row
		}
	}

	return zero
}
