package memstore

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"wellness/internal/domains/booking/model"
	gDto "wellness/shared/dto"
)

type bookingStore struct {
	*Store
}

func (r *bookingStore) InsertTx(_ context.Context, _ *sqlx.Tx, booking model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("booking.InsertTx"); err != nil {
		return err
	}

	if _, ok := r.data.bookings[booking.ID]; ok {
		return fmt.Errorf("booking %s: %w", booking.ID, errDuplicateKey)
	}

	r.data.bookings[booking.ID] = booking

	return nil
}

func (r *bookingStore) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("booking.Get"); err != nil {
		return model.Booking{}, err
	}

	return first(slices.Collect(maps.Values(r.data.bookings)), filter), nil
}

func (r *bookingStore) GetForUpdateTx(_ context.Context, _ *sqlx.Tx, id string) (model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("booking.GetForUpdateTx"); err != nil {
		return model.Booking{}, err
	}

	return r.data.bookings[id], nil
}

func (r *bookingStore) GetAll(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return list(slices.Collect(maps.Values(r.data.bookings)), params, filter), nil
}

func (r *bookingStore) Count(_ context.Context, filter gDto.FilterGroup) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(list(slices.Collect(maps.Values(r.data.bookings)), gDto.QueryParams{}, filter)), nil
}

// UpdateTx writes req into every booking matching filter. A row is only touched once all columns
// convert, so a bad map leaves the store unchanged.
func (r *bookingStore) UpdateTx(_ context.Context, _ *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("booking.UpdateTx"); err != nil {
		return 0, err
	}

	var affected int64

	for id, booking := range r.data.bookings {
		if !matches(booking, filter) {
			continue
		}

		row := reflect.ValueOf(&booking).Elem()

		for name, value := range req {
			if err := assign(row, name, value); err != nil {
				return affected, fmt.Errorf("failed to update booking: %w", err)
			}
		}

		r.data.bookings[id] = booking
		affected++
	}

	return affected, nil
}

func (r *bookingStore) CancelTx(_ context.Context, _ *sqlx.Tx, id string, at time.Time, user string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("booking.CancelTx"); err != nil {
		return false, err
	}

	booking, ok := r.data.bookings[id]
	if !ok || booking.BookingStatus == model.StatusCancelled {
		return false, nil
	}

	booking.BookingStatus = model.StatusCancelled
	booking.CancelledAt = &at
	booking.ModifiedAt = at
	booking.ModifiedBy = user
	r.data.bookings[id] = booking

	return true, nil
}

func (r *bookingStore) Delete(_ context.Context, filter gDto.FilterGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fault("booking.Delete"); err != nil {
		return err
	}

	maps.DeleteFunc(r.data.bookings, func(_ string, b model.Booking) bool { return matches(b, filter) })

	return nil
}
