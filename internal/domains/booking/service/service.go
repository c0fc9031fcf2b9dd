package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"wellness/config"
	"wellness/infras/metrics"
	"wellness/infras/otel"
	"wellness/infras/postgres"
	"wellness/internal/domains/booking/model"
	"wellness/internal/domains/booking/model/dto"
	"wellness/internal/domains/booking/repository"
	slotModel "wellness/internal/domains/slot/model"
	slotService "wellness/internal/domains/slot/service"
	tokenModel "wellness/internal/domains/token/model"
	tokenService "wellness/internal/domains/token/service"
	"wellness/internal/events"
	"wellness/shared"
	"wellness/shared/cache"
	"wellness/shared/constant"
	gDto "wellness/shared/dto"
	"wellness/shared/failure"
	"wellness/shared/logger"
	"wellness/shared/timezone"
	"wellness/shared/validator"
)

const (
	CachePrefix        = "booking"
	cacheGetBooking    = CachePrefix + ":get"
	cacheGetAllBooking = CachePrefix + ":gets"
	cacheCountBooking  = CachePrefix + ":count"
)

const (
	opCreate = "create"
	opEdit   = "edit"
	opCancel = "cancel"
	opDelete = "delete"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Edit(ctx context.Context, id string, req dto.UpdateBookingRequest) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) (dto.CancelResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, req dto.GetBookingsRequest) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req dto.GetBookingsRequest) (int, error)
	Delete(ctx context.Context, id string) error
	InvalidateCache(ctx context.Context, id string)
}

type serviceImpl struct {
	repo    repository.Booking
	slots   slotService.Slot
	tokens  tokenService.Token
	tx      postgres.Transactor
	events  events.Publisher
	metrics metrics.Metrics
	cfg     *config.Config
	cache   cache.RedisCache
	otel    otel.Otel
}

func New(
	repo repository.Booking,
	slots slotService.Slot,
	tokens tokenService.Token,
	tx postgres.Transactor,
	events events.Publisher,
	metrics metrics.Metrics,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:    repo,
		slots:   slots,
		tokens:  tokens,
		tx:      tx,
		events:  events,
		metrics: metrics,
		cfg:     cfg,
		cache:   cache,
		otel:    otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	fields := map[string]any{
		"date":           req.SessionDate,
		"time":           req.SessionTime,
		"service_type":   req.ServiceType,
		"booking_type":   req.BookingType,
		"guest_count":    req.GuestCount,
		"payment_method": req.PaymentMethod,
		"email":          req.CustomerEmail,
	}
	defer func() { s.record(ctx, opCreate, err, fields) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	user := shared.ActingUser(ctx)

	booking, err := req.ToModel(user, s.cfg.Booking.DefaultDurationMinutes)
	if err != nil {
		return res, failure.Validation("session_date must be a date in 2006-01-02 format") // nolint:wrapcheck
	}

	fields["booking_id"] = booking.ID

	err = s.tx.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		slot, err := s.slots.FindOrCreate(ctx, tx, booking.SlotKey())
		if err != nil {
			return err
		}

		fields["slot_id"] = slot.ID

		if err = s.slots.CheckFits(slot, booking.GuestCount, booking.IsPrivate()); err != nil {
			return err
		}

		var plan tokenModel.AllocationPlan

		if booking.PaymentMethod == model.MethodToken {
			plan, err = s.tokens.Allocate(ctx, booking.CustomerEmail, booking.GuestCount, timezone.Now())
			if err != nil {
				return err
			}
		}

		booking.SlotID = slot.ID

		if err = s.repo.InsertTx(ctx, tx, booking); err != nil {
			log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to insert booking")

			return fmt.Errorf("failed to insert booking: %w", err)
		}

		if _, err = s.slots.Acquire(ctx, tx, slot.ID, booking.GuestCount, booking.IsPrivate()); err != nil {
			return partial(opCreate, err)
		}

		if booking.PaymentMethod == model.MethodToken {
			if err = s.tokens.Commit(ctx, tx, booking.ID, plan); err != nil {
				return partial(opCreate, err)
			}
		}

		return nil
	})
	if err != nil {
		return res, err
	}

	res.FromModel(booking)

	log.Info().Str("booking_id", booking.ID).Str("slot_id", booking.SlotID).Int("guests", booking.GuestCount).Msg("booking created")

	s.afterWrite(ctx, booking.ID)
	s.publish(ctx, events.TypeBookingCreated, res)

	return res, nil
}

func (s *serviceImpl) Edit(ctx context.Context, id string, req dto.UpdateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Edit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	fields := map[string]any{"booking_id": id}
	defer func() { s.record(ctx, opEdit, err, fields) }()

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	if req.Cancels() && req.MovesSlot() {
		return res, failure.Validation("a cancellation cannot be combined with a change of session or guests") // nolint:wrapcheck
	}

	user := shared.ActingUser(ctx)

	var (
		updated   model.Booking
		cancelled bool
	)

	err = s.tx.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		current, err := s.repo.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			log.Error().Err(err).Str("booking_id", id).Msg("failed to lock booking")

			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if current.ID == constant.Empty {
			return failure.NotFound("booking not found") // nolint:wrapcheck
		}

		fields["slot_id"] = current.SlotID
		fields["guest_count"] = current.GuestCount

		next, err := req.Apply(current)
		if err != nil {
			return failure.Validation("session_date must be a date in 2006-01-02 format") // nolint:wrapcheck
		}

		if err = checkEdit(current, next, req); err != nil {
			return err
		}

		if req.Cancels() {
			if current.HoldsSlot() {
				if _, err = s.cancelTx(ctx, tx, current); err != nil {
					return err
				}

				cancelled = true
				now := timezone.Now()
				next.BookingStatus = model.StatusCancelled
				next.CancelledAt = &now
			} else if req.BookingStatus != nil {
				return failure.AlreadyCancelled(current.ID) // nolint:wrapcheck
			}
		} else if current.HoldsSlot() {
			if err = s.moveOccupancy(ctx, tx, current, &next); err != nil {
				return err
			}
		}

		changes := dto.Changes(current, next, user)
		if len(changes) > 0 {
			if _, err = s.repo.UpdateTx(ctx, tx, changes, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
				log.Error().Err(err).Str("booking_id", id).Msg("failed to update booking")

				err = fmt.Errorf("failed to update booking: %w", err)
				if cancelled || occupancyChanged(current, next) {
					return partial(opEdit, err)
				}

				return err
			}
		}

		updated = next

		return nil
	})
	if err != nil {
		return res, err
	}

	res.FromModel(updated)

	log.Info().Str("booking_id", id).Bool("cancelled", cancelled).Msg("booking updated")

	s.afterWrite(ctx, id)

	if cancelled {
		s.publish(ctx, events.TypeBookingCancelled, res)
	} else {
		s.publish(ctx, events.TypeBookingUpdated, res)
	}

	return res, nil
}

// checkEdit rejects edits the booking's current state does not allow.
func checkEdit(current, next model.Booking, req dto.UpdateBookingRequest) error {
	if next.DiscountAmount > next.PriceAmount {
		return failure.Validation("discount_amount must not exceed price_amount") // nolint:wrapcheck
	}

	if req.BookingStatus != nil && *req.BookingStatus != current.BookingStatus &&
		!model.CanTransition(current.BookingStatus, *req.BookingStatus) {
		return failure.Conflict(fmt.Sprintf("booking cannot move from %s to %s", current.BookingStatus, *req.BookingStatus)) // nolint:wrapcheck
	}

	if current.BookingStatus == model.StatusCompleted && req.Cancels() {
		return failure.Conflict("a completed booking cannot be cancelled") // nolint:wrapcheck
	}

	terminal := current.BookingStatus == model.StatusCancelled || current.BookingStatus == model.StatusCompleted
	if terminal && occupancyChanged(current, next) {
		return failure.Conflict(fmt.Sprintf("a %s booking cannot change its session or guests", current.BookingStatus)) // nolint:wrapcheck
	}

	return nil
}

func occupancyChanged(current, next model.Booking) bool {
	return current.SlotKey() != next.SlotKey() ||
		current.BookingType != next.BookingType ||
		current.GuestCount != next.GuestCount
}

// moveOccupancy brings slot occupancy and token allocations in line with next. A move to another
// slot takes the new seats before the old ones are released, so a full target slot leaves the
// booking where it was.
func (s *serviceImpl) moveOccupancy(ctx context.Context, tx *sqlx.Tx, current model.Booking, next *model.Booking) error {
	if !occupancyChanged(current, *next) {
		return nil
	}

	diff := next.GuestCount - current.GuestCount
	tokenPaid := current.PaymentMethod == model.MethodToken

	var plan tokenModel.AllocationPlan

	if tokenPaid && diff > 0 {
		var err error

		plan, err = s.tokens.Allocate(ctx, current.CustomerEmail, diff, timezone.Now())
		if err != nil {
			return err
		}
	}

	switch {
	case current.SlotKey() != next.SlotKey():
		slot, err := s.slots.FindOrCreate(ctx, tx, next.SlotKey())
		if err != nil {
			return err
		}

		if err = s.slots.CheckFits(slot, next.GuestCount, next.IsPrivate()); err != nil {
			return err
		}

		if _, err = s.slots.Acquire(ctx, tx, slot.ID, next.GuestCount, next.IsPrivate()); err != nil {
			return err
		}

		if _, err = s.slots.Release(ctx, tx, current.SlotID, current.GuestCount, current.IsPrivate()); err != nil {
			return partial(opEdit, err)
		}

		next.SlotID = slot.ID
	case current.BookingType != next.BookingType:
		if _, err := s.slots.Release(ctx, tx, current.SlotID, current.GuestCount, current.IsPrivate()); err != nil {
			return err
		}

		if _, err := s.slots.AdjustOccupancy(ctx, tx, current.SlotID, next.GuestCount, next.SlotMode()); err != nil {
			return partial(opEdit, err)
		}
	default:
		mode := slotModel.ModeCommunal
		if current.IsPrivate() {
			mode = slotModel.ModeResizePrivate
		}

		if _, err := s.slots.AdjustOccupancy(ctx, tx, current.SlotID, diff, mode); err != nil {
			return err
		}
	}

	switch {
	case tokenPaid && diff > 0:
		if err := s.tokens.Commit(ctx, tx, current.ID, plan); err != nil {
			return partial(opEdit, err)
		}
	case tokenPaid && diff < 0:
		if err := s.tokens.Refund(ctx, tx, current.CustomerEmail, -diff, current.ID); err != nil {
			return partial(opEdit, err)
		}
	}

	return nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string) (res dto.CancelResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	fields := map[string]any{"booking_id": id}
	defer func() { s.record(ctx, opCancel, err, fields) }()

	var booking model.Booking

	err = s.tx.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		current, err := s.repo.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			log.Error().Err(err).Str("booking_id", id).Msg("failed to lock booking")

			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if current.ID == constant.Empty {
			return failure.NotFound("booking not found") // nolint:wrapcheck
		}

		if current.BookingStatus == model.StatusCompleted {
			return failure.Conflict("a completed booking cannot be cancelled") // nolint:wrapcheck
		}

		fields["slot_id"] = current.SlotID
		fields["guest_count"] = current.GuestCount
		fields["payment_method"] = current.PaymentMethod

		booking = current
		res, err = s.cancelTx(ctx, tx, current)

		return err
	})
	if failure.Is(err, failure.KindAlreadyCancelled) {
		log.Warn().Str("booking_id", id).Msg("booking already cancelled")

		return res, err
	}

	if err != nil {
		return res, err
	}

	log.Info().Str("booking_id", id).Int("slots_freed", res.SlotsFreed).Int("tokens_refunded", res.TokensRefunded).Msg("booking cancelled")

	now := timezone.Now()
	booking.BookingStatus = model.StatusCancelled
	booking.CancelledAt = &now

	var payload dto.BookingResponse
	payload.FromModel(booking)

	s.afterWrite(ctx, id)
	s.publish(ctx, events.TypeBookingCancelled, payload)

	return res, nil
}

// cancelTx marks the booking cancelled, frees its seats and returns any tokens it used. Payment
// status is left for the payment flow.
func (s *serviceImpl) cancelTx(ctx context.Context, tx *sqlx.Tx, booking model.Booking) (res dto.CancelResponse, err error) {
	ok, err := s.repo.CancelTx(ctx, tx, booking.ID, timezone.Now(), shared.ActingUser(ctx))
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to cancel booking")

		return res, fmt.Errorf("failed to cancel booking: %w", err)
	}

	if !ok {
		return res, failure.AlreadyCancelled(booking.ID) // nolint:wrapcheck
	}

	if _, err = s.slots.Release(ctx, tx, booking.SlotID, booking.GuestCount, booking.IsPrivate()); err != nil {
		return res, partial(opCancel, err)
	}

	res.BookingID = booking.ID
	res.SlotsFreed = booking.GuestCount

	if booking.PaymentMethod == model.MethodToken {
		if err = s.tokens.Refund(ctx, tx, booking.CustomerEmail, booking.GuestCount, booking.ID); err != nil {
			return res, partial(opCancel, err)
		}

		res.TokensRefunded = booking.GuestCount
		res.TokenRefunded = true
	}

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, req dto.GetBookingsRequest) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	params.RestrictSort(model.FieldSessionDate, model.FieldSessionTime, model.FieldCustomerName, constant.FieldCreatedAt)

	filter := req.Filter()
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req dto.GetBookingsRequest) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := req.Filter()
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, gDto.QueryParams{}, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	s.save(ctx, cacheKey, res)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	s.save(ctx, cacheKey, res)

	return res, nil
}

// Delete removes the row outright. It is an admin escape hatch: the slot keeps the seats and no
// tokens are returned, cancel first when those should be released.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	defer func() { s.record(ctx, opDelete, err, map[string]any{"booking_id": id}) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	booking, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if booking.HoldsSlot() {
		log.Warn().Str("booking_id", id).Str("slot_id", booking.SlotID).Int("guests", booking.GuestCount).
			Msg("active booking hard-deleted, slot occupancy left unchanged")
	}

	s.afterWrite(ctx, id)

	return nil
}

// InvalidateCache drops every cached read that may include the booking.
func (s *serviceImpl) InvalidateCache(ctx context.Context, id string) {
	s.afterWrite(ctx, id)
}

// partial marks an unexpected failure after the transaction already wrote something. Domain
// rejections pass through unchanged.
func partial(operation string, err error) error {
	if failure.GetKind(err) != failure.KindInternal {
		return err
	}

	return failure.InconsistentState("booking."+operation, err) // nolint:wrapcheck
}

func (s *serviceImpl) record(ctx context.Context, operation string, err error, fields map[string]any) {
	if err == nil {
		s.metrics.BookingOperation(operation, metrics.OutcomeSuccess)

		return
	}

	s.metrics.BookingOperation(operation, metrics.OutcomeFailure)

	if !failure.Is(err, failure.KindInconsistentState) {
		return
	}

	cause := errors.Unwrap(err)

	logger.ErrorWithFields(cause, fields)
	s.metrics.InconsistentState(operation)
	s.events.Alert(context.WithoutCancel(ctx), "booking."+operation, cause, fields)
}

func (s *serviceImpl) afterWrite(ctx context.Context, id string) {
	s.slots.InvalidateCache(ctx)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()
}

func (s *serviceImpl) publish(ctx context.Context, eventType string, booking dto.BookingResponse) {
	actor := shared.ActingUser(ctx)

	go s.events.Publish(context.WithoutCancel(ctx), eventType, booking.ID, actor, booking)
}

func (s *serviceImpl) save(ctx context.Context, key string, value any) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, key, value, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Str("cacheKey", key).Msg("failed to save booking cache")
		}
	}()
}
