package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"wellness/config"
	metricsMocks "wellness/infras/metrics/mocks"
	otelMocks "wellness/infras/otel/mocks"
	"wellness/internal/domains/slot/mocks"
	"wellness/internal/domains/slot/model"
	"wellness/internal/domains/slot/model/dto"
	"wellness/internal/domains/slot/repository"
	"wellness/internal/domains/slot/service"
	"wellness/shared/cache"
	cacheMocks "wellness/shared/cache/mocks"
	gDto "wellness/shared/dto"
	"wellness/shared/failure"
)

type deps struct {
	repo    *mocks.MockSlot
	cache   *cacheMocks.MockRedisCache
	metrics *metricsMocks.MockMetrics
	svc     service.Slot
}

func newDeps(t *testing.T) deps {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Booking.DefaultCapacity = 5
	cfg.Booking.IceBathCapacity = 2
	cfg.Cache.TTL = 60

	d := deps{
		repo:    mocks.NewMockSlot(ctrl),
		cache:   cacheMocks.NewMockRedisCache(ctrl),
		metrics: metricsMocks.NewMockMetrics(ctrl),
	}

	d.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	d.svc = service.New(d.repo, cfg, d.cache, d.metrics, otelMocks.NewOtel())

	return d
}

func slot(booked int, private bool) model.TimeSlot {
	return model.TimeSlot{
		ID:          "slot-1",
		SlotDate:    time.Date(2099, 6, 1, 0, 0, 0, 0, time.UTC),
		SlotTime:    "10:00",
		ServiceType: model.ServiceCombined,
		Capacity:    5,
		BookedCount: booked,
		IsPrivate:   private,
		IsAvailable: !private && booked < 5,
	}
}

func TestCheckFits(t *testing.T) {
	tests := []struct {
		name    string
		slot    model.TimeSlot
		guests  int
		private bool
		kind    failure.Kind
	}{
		{name: "communal fits exactly", slot: slot(4, false), guests: 1},
		{name: "communal over capacity", slot: slot(4, false), guests: 2, kind: failure.KindCapacityExceeded},
		{name: "communal on private slot", slot: slot(1, true), guests: 1, kind: failure.KindSlotConflict},
		{name: "private on empty slot", slot: slot(0, false), guests: 8, private: true},
		{name: "private on occupied slot", slot: slot(1, false), guests: 1, private: true, kind: failure.KindSlotConflict},
		{name: "private on private slot", slot: slot(2, true), guests: 1, private: true, kind: failure.KindSlotConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps(t)

			if tt.kind != "" {
				d.metrics.EXPECT().SlotRejection(string(tt.kind))
			}

			err := d.svc.CheckFits(tt.slot, tt.guests, tt.private)
			if tt.kind == "" {
				assert.NoError(t, err)

				return
			}

			assert.Equal(t, tt.kind, failure.GetKind(err))
		})
	}
}

func TestCheckFits_ReportsRemainingSeats(t *testing.T) {
	d := newDeps(t)
	d.metrics.EXPECT().SlotRejection(string(failure.KindCapacityExceeded))

	err := d.svc.CheckFits(slot(4, false), 2, false)
	assert.EqualError(t, err, "slot has 1 place(s) left, 2 requested")
}

func TestAdjustOccupancy_ClassifiesRejections(t *testing.T) {
	tests := []struct {
		name    string
		current model.TimeSlot
		delta   int
		mode    model.Mode
		kind    failure.Kind
		want    error
	}{
		{name: "slot vanished", current: model.TimeSlot{}, delta: 1, mode: model.ModeCommunal, kind: failure.KindNotFound},
		{name: "full", current: slot(5, false), delta: 1, mode: model.ModeCommunal, kind: failure.KindCapacityExceeded},
		{name: "taken privately", current: slot(2, true), delta: 1, mode: model.ModeCommunal, kind: failure.KindSlotConflict},
		{name: "claim occupied", current: slot(1, false), delta: 2, mode: model.ModeClaimPrivate, kind: failure.KindSlotConflict},
		{name: "release more than held", current: slot(1, false), delta: -2, mode: model.ModeCommunal, want: service.ErrOccupancyUnderflow},
		{name: "resize non private", current: slot(1, false), delta: 1, mode: model.ModeResizePrivate, kind: failure.KindSlotConflict},
		{name: "release private below zero", current: slot(1, true), delta: -2, mode: model.ModeReleasePrivate, want: service.ErrOccupancyUnderflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps(t)
			ctx := context.Background()

			d.repo.EXPECT().AdjustOccupancyTx(gomock.Any(), gomock.Any(), "slot-1", tt.delta, tt.mode, gomock.Any()).
				Return(model.TimeSlot{}, repository.ErrGuardRejected)
			d.repo.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.current, nil)

			if tt.kind != "" {
				d.metrics.EXPECT().SlotRejection(string(tt.kind))
			}

			_, err := d.svc.AdjustOccupancy(ctx, nil, "slot-1", tt.delta, tt.mode)
			require.Error(t, err)

			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)

				return
			}

			assert.Equal(t, tt.kind, failure.GetKind(err))
		})
	}
}

func TestAcquireAndRelease_PickModes(t *testing.T) {
	d := newDeps(t)
	ctx := context.Background()

	gomock.InOrder(
		d.repo.EXPECT().AdjustOccupancyTx(gomock.Any(), gomock.Any(), "slot-1", 3, model.ModeClaimPrivate, gomock.Any()).Return(slot(3, true), nil),
		d.repo.EXPECT().AdjustOccupancyTx(gomock.Any(), gomock.Any(), "slot-1", -3, model.ModeReleasePrivate, gomock.Any()).Return(slot(0, false), nil),
		d.repo.EXPECT().AdjustOccupancyTx(gomock.Any(), gomock.Any(), "slot-1", 2, model.ModeCommunal, gomock.Any()).Return(slot(2, false), nil),
		d.repo.EXPECT().AdjustOccupancyTx(gomock.Any(), gomock.Any(), "slot-1", -2, model.ModeCommunal, gomock.Any()).Return(slot(0, false), nil),
	)

	got, err := d.svc.Acquire(ctx, nil, "slot-1", 3, true)
	require.NoError(t, err)
	assert.True(t, got.IsPrivate)

	_, err = d.svc.Release(ctx, nil, "slot-1", 3, true)
	require.NoError(t, err)

	_, err = d.svc.Acquire(ctx, nil, "slot-1", 2, false)
	require.NoError(t, err)

	got, err = d.svc.Release(ctx, nil, "slot-1", 2, false)
	require.NoError(t, err)
	assert.Zero(t, got.BookedCount)
}

func TestAdjustOccupancy_DatabaseError(t *testing.T) {
	d := newDeps(t)

	d.repo.EXPECT().AdjustOccupancyTx(gomock.Any(), gomock.Any(), "slot-1", 1, model.ModeCommunal, gomock.Any()).
		Return(model.TimeSlot{}, errors.New("connection reset"))

	_, err := d.svc.AdjustOccupancy(context.Background(), nil, "slot-1", 1, model.ModeCommunal)
	require.Error(t, err)
	assert.Equal(t, failure.KindInternal, failure.GetKind(err))
}

func TestFindOrCreate_UsesServiceCapacity(t *testing.T) {
	d := newDeps(t)

	d.repo.EXPECT().FindOrCreateTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, candidate model.TimeSlot) (model.TimeSlot, error) {
			assert.Equal(t, 2, candidate.Capacity)
			assert.Equal(t, "2099-06-01", candidate.SlotDate.Format("2006-01-02"))
			assert.NotEmpty(t, candidate.ID)

			return candidate, nil
		})

	got, err := d.svc.FindOrCreate(context.Background(), nil, model.Key{Date: "2099-06-01", Time: "07:30", ServiceType: model.ServiceIceBath})
	require.NoError(t, err)
	assert.Equal(t, "07:30", got.SlotTime)

	_, err = d.svc.FindOrCreate(context.Background(), nil, model.Key{Date: "01/06/2099", Time: "07:30", ServiceType: model.ServiceIceBath})
	assert.True(t, failure.Is(err, failure.KindValidation))
}

func TestGet(t *testing.T) {
	t.Run("cache hit", func(t *testing.T) {
		d := newDeps(t)

		d.cache.EXPECT().Get(gomock.Any(), "slot:get:slot-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any) error {
				res, _ := value.(*dto.SlotResponse)
				res.ID = "slot-1"
				res.BookedCount = 3

				return nil
			})

		res, err := d.svc.Get(context.Background(), "slot-1")
		require.NoError(t, err)
		assert.Equal(t, 3, res.BookedCount)
	})

	t.Run("cache miss reads the repository", func(t *testing.T) {
		d := newDeps(t)

		d.cache.EXPECT().Get(gomock.Any(), "slot:get:slot-1", gomock.Any()).Return(cache.Nil)
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(slot(3, false), nil)

		res, err := d.svc.Get(context.Background(), "slot-1")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Remaining)
		assert.Equal(t, "2099-06-01", res.SlotDate)
	})

	t.Run("not found", func(t *testing.T) {
		d := newDeps(t)

		d.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil)
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.TimeSlot{}, nil)

		_, err := d.svc.Get(context.Background(), "slot-1")
		assert.True(t, failure.Is(err, failure.KindNotFound))
	})
}

func TestAvailability(t *testing.T) {
	d := newDeps(t)

	private := slot(2, true)
	private.SlotTime = "11:00"

	d.cache.EXPECT().Get(gomock.Any(), "slot:availability:2099-06-01:combined", gomock.Any()).Return(cache.Nil)
	d.repo.EXPECT().GetAll(gomock.Any(), gDto.QueryParams{SortBy: model.FieldSlotTime, SortDir: gDto.SortDirAsc}, gomock.Any()).
		Return([]model.TimeSlot{slot(3, false), private}, nil)

	res, err := d.svc.Availability(context.Background(), dto.AvailabilityRequest{Date: "2099-06-01", ServiceType: model.ServiceCombined})
	require.NoError(t, err)
	assert.Equal(t, 5, res.DefaultCapacity)
	require.Len(t, res.Slots, 2)
	assert.Equal(t, dto.SlotAvailability{SlotTime: "10:00", Capacity: 5, Remaining: 2, Available: true}, res.Slots[0])
	assert.Equal(t, dto.SlotAvailability{SlotTime: "11:00", Capacity: 5, Remaining: 0, IsPrivate: true}, res.Slots[1])
}

func TestGetAll_RestrictsSortColumn(t *testing.T) {
	d := newDeps(t)

	d.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil).Times(2)
	d.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	d.repo.EXPECT().GetAll(gomock.Any(), gDto.QueryParams{Page: 1, Limit: 10}, gomock.Any()).Return([]model.TimeSlot{slot(1, false)}, nil)

	res, err := d.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10, SortBy: "1; DROP TABLE time_slots", SortDir: "ASC"}, dto.GetSlotsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Len(t, res.Slots, 1)
}
