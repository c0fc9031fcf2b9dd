package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Slot=MockSlotService

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"wellness/config"
	"wellness/infras/metrics"
	"wellness/infras/otel"
	"wellness/internal/domains/slot/model"
	"wellness/internal/domains/slot/model/dto"
	"wellness/internal/domains/slot/repository"
	"wellness/shared"
	"wellness/shared/cache"
	"wellness/shared/constant"
	gDto "wellness/shared/dto"
	"wellness/shared/failure"
	gModel "wellness/shared/model"
	"wellness/shared/timezone"
)

const (
	CachePrefix           = "slot"
	cacheGetSlot          = CachePrefix + ":get"
	cacheGetAllSlot       = CachePrefix + ":gets"
	cacheCountSlot        = CachePrefix + ":count"
	cacheSlotAvailability = CachePrefix + ":availability"
)

// ErrOccupancyUnderflow means a release asked for more guests than the slot holds.
var ErrOccupancyUnderflow = errors.New("slot occupancy would drop below zero")

type Slot interface {
	FindOrCreate(ctx context.Context, sqltx *sqlx.Tx, key model.Key) (model.TimeSlot, error)
	CheckFits(slot model.TimeSlot, guests int, private bool) error
	Acquire(ctx context.Context, sqltx *sqlx.Tx, slotID string, guests int, private bool) (model.TimeSlot, error)
	Release(ctx context.Context, sqltx *sqlx.Tx, slotID string, guests int, wasPrivate bool) (model.TimeSlot, error)
	AdjustOccupancy(ctx context.Context, sqltx *sqlx.Tx, slotID string, delta int, mode model.Mode) (model.TimeSlot, error)
	Get(ctx context.Context, id string) (dto.SlotResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, req dto.GetSlotsRequest) (dto.GetSlotsResponse, error)
	Availability(ctx context.Context, req dto.AvailabilityRequest) (dto.AvailabilityResponse, error)
	InvalidateCache(ctx context.Context)
}

type serviceImpl struct {
	repo    repository.Slot
	cfg     *config.Config
	cache   cache.RedisCache
	metrics metrics.Metrics
	otel    otel.Otel
}

func New(repo repository.Slot, cfg *config.Config, cache cache.RedisCache, metrics metrics.Metrics, otel otel.Otel) Slot {
	return &serviceImpl{
		repo:    repo,
		cfg:     cfg,
		cache:   cache,
		metrics: metrics,
		otel:    otel,
	}
}

func (s *serviceImpl) FindOrCreate(ctx context.Context, sqltx *sqlx.Tx, key model.Key) (res model.TimeSlot, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.FindOrCreate")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	day, err := timezone.Parse(constant.DayFormat, key.Date)
	if err != nil {
		return res, failure.Validation("session_date must be a date in 2006-01-02 format") // nolint:wrapcheck
	}

	candidate := model.TimeSlot{
		ID:          uuid.NewString(),
		SlotDate:    day,
		SlotTime:    key.Time,
		ServiceType: key.ServiceType,
		Capacity:    s.cfg.CapacityFor(key.ServiceType),
		IsAvailable: true,
		Metadata:    gModel.NewMetadata(shared.ActingUser(ctx)),
	}

	res, err = s.repo.FindOrCreateTx(ctx, sqltx, candidate)
	if err != nil {
		log.Error().Err(err).Str("date", key.Date).Str("time", key.Time).Str("service_type", key.ServiceType).Msg("failed to find or create slot")

		return res, fmt.Errorf("failed to find or create slot: %w", err)
	}

	return res, nil
}

// CheckFits is the pre-check against a slot row already locked by FindOrCreate.
func (s *serviceImpl) CheckFits(slot model.TimeSlot, guests int, private bool) error {
	var err error

	switch {
	case private && slot.IsPrivate:
		err = failure.SlotConflict("slot is already booked privately")
	case private && slot.BookedCount > 0:
		err = failure.SlotConflict("slot already has communal bookings, a private booking needs an empty slot")
	case !private && slot.IsPrivate:
		err = failure.SlotConflict("slot is booked privately")
	case !private && slot.BookedCount+guests > slot.Capacity:
		err = failure.CapacityExceeded(slot.Remaining(), guests)
	}

	if err != nil {
		s.metrics.SlotRejection(string(failure.GetKind(err)))
	}

	return err
}

// Acquire seats guests in a slot, claiming it exclusively when private.
func (s *serviceImpl) Acquire(ctx context.Context, sqltx *sqlx.Tx, slotID string, guests int, private bool) (model.TimeSlot, error) {
	mode := model.ModeCommunal
	if private {
		mode = model.ModeClaimPrivate
	}

	return s.AdjustOccupancy(ctx, sqltx, slotID, guests, mode)
}

// Release frees guests from a slot, dropping exclusivity when the booking was private.
func (s *serviceImpl) Release(ctx context.Context, sqltx *sqlx.Tx, slotID string, guests int, wasPrivate bool) (model.TimeSlot, error) {
	mode := model.ModeCommunal
	if wasPrivate {
		mode = model.ModeReleasePrivate
	}

	return s.AdjustOccupancy(ctx, sqltx, slotID, -guests, mode)
}

func (s *serviceImpl) AdjustOccupancy(ctx context.Context, sqltx *sqlx.Tx, slotID string, delta int, mode model.Mode) (res model.TimeSlot, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.AdjustOccupancy")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.repo.AdjustOccupancyTx(ctx, sqltx, slotID, delta, mode, shared.ActingUser(ctx))
	if err == nil {
		return res, nil
	}

	if !errors.Is(err, repository.ErrGuardRejected) {
		log.Error().Err(err).Str("slot_id", slotID).Int("delta", delta).Msg("failed to adjust slot occupancy")

		return res, fmt.Errorf("failed to adjust slot occupancy: %w", err)
	}

	current, err := s.repo.GetTx(ctx, sqltx, shared.FilterByID(slotID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("slot_id", slotID).Msg("failed to re-read slot after rejected change")

		return res, fmt.Errorf("failed to re-read slot: %w", err)
	}

	err = classify(current, delta, mode)

	if kind := failure.GetKind(err); kind != failure.KindInternal {
		s.metrics.SlotRejection(string(kind))
	}

	log.Warn().Err(err).Str("slot_id", slotID).Int("delta", delta).Str("mode", mode.String()).Msg("slot occupancy change rejected")

	return res, err
}

func classify(current model.TimeSlot, delta int, mode model.Mode) error {
	if current.ID == constant.Empty {
		return failure.NotFound("slot not found") // nolint:wrapcheck
	}

	switch mode {
	case model.ModeClaimPrivate:
		if current.IsPrivate {
			return failure.SlotConflict("slot is already booked privately") // nolint:wrapcheck
		}

		return failure.SlotConflict("slot already has communal bookings, a private booking needs an empty slot") // nolint:wrapcheck
	case model.ModeReleasePrivate, model.ModeResizePrivate:
		if !current.IsPrivate {
			return failure.SlotConflict("slot is not held privately") // nolint:wrapcheck
		}

		return ErrOccupancyUnderflow
	default:
		if delta < 0 {
			return ErrOccupancyUnderflow
		}

		if current.IsPrivate {
			return failure.SlotConflict("slot is booked privately") // nolint:wrapcheck
		}

		return failure.CapacityExceeded(current.Remaining(), delta) // nolint:wrapcheck
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.SlotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetSlot, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for slot")

		return res, nil
	}

	slot, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get slot")

		return res, fmt.Errorf("failed to get slot: %w", err)
	}

	if slot.ID == constant.Empty {
		return res, failure.NotFound("slot not found") // nolint:wrapcheck
	}

	res.FromModel(slot)

	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, req dto.GetSlotsRequest) (res dto.GetSlotsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	params.RestrictSort(model.FieldSlotDate, model.FieldSlotTime, model.FieldBookedCount, constant.FieldCreatedAt)

	filter := req.Filter()
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllSlot, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for slots")

		return res, nil
	}

	total, err := s.count(ctx, params, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get slots")

		return res, fmt.Errorf("failed to get slots: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountSlot, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count slots")

		return res, fmt.Errorf("failed to count slots: %w", err)
	}

	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) Availability(ctx context.Context, req dto.AvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slot.Availability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheSlotAvailability, req.Date, req.ServiceType)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for slot availability")

		return res, nil
	}

	filter := dto.GetSlotsRequest{Date: req.Date, ServiceType: req.ServiceType}.Filter()
	params := gDto.QueryParams{SortBy: model.FieldSlotTime, SortDir: gDto.SortDirAsc}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Str("date", req.Date).Msg("failed to get slot availability")

		return res, fmt.Errorf("failed to get slot availability: %w", err)
	}

	res.Date = req.Date
	res.ServiceType = req.ServiceType
	res.DefaultCapacity = s.cfg.CapacityFor(req.ServiceType)
	res.FromModels(models)

	s.save(ctx, cacheKey, res)

	return res, nil
}

// InvalidateCache drops every cached slot read. Call it after a transaction that moved occupancy
// has committed.
func (s *serviceImpl) InvalidateCache(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, CachePrefix)
	}()
}

func (s *serviceImpl) save(ctx context.Context, key string, value any) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, key, value, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Str("cacheKey", key).Msg("failed to save slot cache")
		}
	}()
}
