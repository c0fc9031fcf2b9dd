package memstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingModel "wellness/internal/domains/booking/model"
	slotModel "wellness/internal/domains/slot/model"
	slotRepo "wellness/internal/domains/slot/repository"
	"wellness/internal/memstore"
	"wellness/shared"
	"wellness/shared/cache"
	gDto "wellness/shared/dto"
	"wellness/shared/timezone"
)

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	day, _ := timezone.Parse("2006-01-02", "2099-06-01")

	store.PutSlot(slotModel.TimeSlot{ID: "s-1", SlotDate: day, SlotTime: "10:00", ServiceType: "sauna", Capacity: 5, IsAvailable: true})

	boom := errors.New("boom")

	err := store.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := store.Slots().AdjustOccupancyTx(ctx, tx, "s-1", 3, slotModel.ModeCommunal, "tester"); err != nil {
			return err
		}

		return boom
	})
	require.ErrorIs(t, err, boom)

	slot, ok := store.Slot("s-1")
	require.True(t, ok)
	assert.Equal(t, 0, slot.BookedCount)
}

func TestAdjustOccupancyTx_Guards(t *testing.T) {
	tests := []struct {
		name     string
		slot     slotModel.TimeSlot
		delta    int
		mode     slotModel.Mode
		rejected bool
		booked   int
		private  bool
		open     bool
	}{
		{name: "communal fills the slot", slot: slotModel.TimeSlot{Capacity: 5, BookedCount: 4}, delta: 1, mode: slotModel.ModeCommunal, booked: 5},
		{name: "communal over capacity", slot: slotModel.TimeSlot{Capacity: 5, BookedCount: 4}, delta: 2, mode: slotModel.ModeCommunal, rejected: true, booked: 4},
		{name: "communal on private slot", slot: slotModel.TimeSlot{Capacity: 5, BookedCount: 1, IsPrivate: true}, delta: 1, mode: slotModel.ModeCommunal, rejected: true, booked: 1, private: true},
		{name: "claim empty slot", slot: slotModel.TimeSlot{Capacity: 5}, delta: 8, mode: slotModel.ModeClaimPrivate, booked: 8, private: true},
		{name: "claim occupied slot", slot: slotModel.TimeSlot{Capacity: 5, BookedCount: 1}, delta: 1, mode: slotModel.ModeClaimPrivate, rejected: true, booked: 1},
		{name: "release private", slot: slotModel.TimeSlot{Capacity: 5, BookedCount: 8, IsPrivate: true}, delta: -8, mode: slotModel.ModeReleasePrivate, booked: 0, open: true},
		{name: "release below zero", slot: slotModel.TimeSlot{Capacity: 5, BookedCount: 2}, delta: -3, mode: slotModel.ModeCommunal, rejected: true, booked: 2},
		{name: "resize private", slot: slotModel.TimeSlot{Capacity: 5, BookedCount: 2, IsPrivate: true}, delta: 4, mode: slotModel.ModeResizePrivate, booked: 6, private: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			tt.slot.ID = "s-1"
			tt.slot.IsAvailable = !tt.slot.IsPrivate && tt.slot.BookedCount < tt.slot.Capacity
			store.PutSlot(tt.slot)

			_, err := store.Slots().AdjustOccupancyTx(context.Background(), nil, "s-1", tt.delta, tt.mode, "tester")
			if tt.rejected {
				assert.ErrorIs(t, err, slotRepo.ErrGuardRejected)
			} else {
				require.NoError(t, err)
			}

			slot, _ := store.Slot("s-1")
			assert.Equal(t, tt.booked, slot.BookedCount)
			assert.Equal(t, tt.private, slot.IsPrivate)

			if tt.open {
				assert.True(t, slot.IsAvailable)
			}
		})
	}
}

func TestBookings_FilterAndUpdate(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	day, _ := timezone.Parse("2006-01-02", "2099-06-01")

	store.PutBooking(bookingModel.Booking{ID: "b-1", CustomerEmail: "ada@example.com", SessionDate: day, BookingStatus: bookingModel.StatusConfirmed, PaymentStatus: bookingModel.PaymentPending})
	store.PutBooking(bookingModel.Booking{ID: "b-2", CustomerEmail: "grace@example.com", SessionDate: day, BookingStatus: bookingModel.StatusCancelled, PaymentStatus: bookingModel.PaymentPaid})

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: bookingModel.FieldSessionDate, Value: "2099-06-01", Operator: gDto.FilterOperatorEq},
			gDto.Filter{Field: bookingModel.FieldCustomerEmail, Value: "ADA", Operator: gDto.FilterOperatorLike},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}

	rows, err := store.Bookings().GetAll(ctx, gDto.QueryParams{}, filter)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b-1", rows[0].ID)

	guarded := shared.FilterByID("b-1", bookingModel.FieldID, bookingModel.TableName)
	guarded.Filters = append(guarded.Filters, gDto.Filter{Field: bookingModel.FieldPaymentStatus, Value: bookingModel.PaymentPending, Operator: gDto.FilterOperatorEq})
	guarded.Operator = gDto.FilterGroupOperatorAnd

	affected, err := store.Bookings().UpdateTx(ctx, nil, map[string]any{
		bookingModel.FieldPaymentStatus:    bookingModel.PaymentPaid,
		bookingModel.FieldSessionDate:      "2099-06-02",
		bookingModel.FieldPaymentSessionID: "cs_test_1",
	}, guarded)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	booking, _ := store.Booking("b-1")
	assert.Equal(t, bookingModel.PaymentPaid, booking.PaymentStatus)
	assert.Equal(t, "2099-06-02", booking.SessionDate.Format("2006-01-02"))
	require.NotNil(t, booking.PaymentSessionID)
	assert.Equal(t, "cs_test_1", *booking.PaymentSessionID)

	affected, err = store.Bookings().UpdateTx(ctx, nil, map[string]any{bookingModel.FieldPaymentStatus: bookingModel.PaymentPaid}, guarded)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestCache_ClearByPrefix(t *testing.T) {
	c := memstore.NewCache()
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, "slot:get:1", map[string]int{"booked": 1}, 60))
	require.NoError(t, c.Save(ctx, "booking:get:1", "x", 60))
	require.NoError(t, c.Clear(ctx, "slot:*"))

	var got map[string]int
	assert.ErrorIs(t, c.Get(ctx, "slot:get:1", &got), cache.Nil)

	var raw string
	require.NoError(t, c.Get(ctx, "booking:get:1", &raw))
	assert.Equal(t, `"x"`, raw)
}

func TestCache_Incr(t *testing.T) {
	c := memstore.NewCache()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Incr(ctx, "limiter:10.0.0.1:curl", 60)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
