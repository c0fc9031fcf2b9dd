package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Payment=MockPaymentService

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"wellness/infras/metrics"
	"wellness/infras/otel"
	"wellness/infras/postgres"
	"wellness/infras/stripe"
	bookingModel "wellness/internal/domains/booking/model"
	bookingRepo "wellness/internal/domains/booking/repository"
	bookingService "wellness/internal/domains/booking/service"
	"wellness/internal/domains/payment/model"
	"wellness/internal/domains/payment/model/dto"
	"wellness/internal/events"
	"wellness/shared"
	"wellness/shared/constant"
	gDto "wellness/shared/dto"
	"wellness/shared/failure"
	"wellness/shared/logger"
	"wellness/shared/timezone"
	"wellness/shared/validator"
)

const (
	opCheckout = "checkout"
	opVerify   = "verify_payment"
	opRefund   = "refund"
	opWebhook  = "webhook"
)

type Payment interface {
	CreateCheckout(ctx context.Context, bookingID string) (dto.CheckoutResponse, error)
	VerifyPayment(ctx context.Context, bookingID string) (dto.VerifyPaymentResponse, error)
	RefundPayment(ctx context.Context, bookingID string, req dto.RefundRequest) (dto.RefundResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (dto.WebhookResponse, error)
}

type serviceImpl struct {
	repo     bookingRepo.Booking
	bookings bookingService.Booking
	gateway  stripe.Gateway
	tx       postgres.Transactor
	events   events.Publisher
	metrics  metrics.Metrics
	otel     otel.Otel
}

func New(
	repo bookingRepo.Booking,
	bookings bookingService.Booking,
	gateway stripe.Gateway,
	tx postgres.Transactor,
	events events.Publisher,
	metrics metrics.Metrics,
	otel otel.Otel,
) Payment {
	return &serviceImpl{
		repo:     repo,
		bookings: bookings,
		gateway:  gateway,
		tx:       tx,
		events:   events,
		metrics:  metrics,
		otel:     otel,
	}
}

// CreateCheckout opens a provider checkout for a card booking that is still waiting for payment.
// An open session that was already issued for the booking is handed back instead of a new one.
func (s *serviceImpl) CreateCheckout(ctx context.Context, bookingID string) (res dto.CheckoutResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.CreateCheckout")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	defer func() { s.record(ctx, opCheckout, err, map[string]any{"booking_id": bookingID}) }()

	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return res, err
	}

	switch {
	case booking.PaymentMethod != bookingModel.MethodCard:
		return res, failure.Conflict("checkout is only available for card payments") // nolint:wrapcheck
	case booking.BookingStatus == bookingModel.StatusCancelled:
		return res, failure.Conflict("booking is cancelled") // nolint:wrapcheck
	case booking.PaymentStatus != bookingModel.PaymentPending:
		return res, failure.Conflict("booking payment is already " + booking.PaymentStatus) // nolint:wrapcheck
	case booking.FinalAmount <= 0:
		return res, failure.Conflict("booking has nothing to charge") // nolint:wrapcheck
	}

	res.BookingID = booking.ID
	res.Amount = booking.FinalAmount

	if booking.PaymentSessionID != nil {
		session, err := s.gateway.GetSession(ctx, *booking.PaymentSessionID)
		if err != nil {
			return res, failure.PaymentGateway(err) // nolint:wrapcheck
		}

		if session.Status == stripe.SessionStatusOpen {
			res.SessionID = session.ID
			res.URL = session.URL

			return res, nil
		}
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, stripe.CheckoutRequest{
		BookingID:     booking.ID,
		CustomerEmail: booking.CustomerEmail,
		Description:   fmt.Sprintf("%s session %s %s", booking.ServiceType, booking.SessionDate.Format(constant.DayFormat), booking.SessionTime),
		Amount:        booking.FinalAmount,
	})
	if err != nil {
		return res, failure.PaymentGateway(err) // nolint:wrapcheck
	}

	affected, err := s.update(ctx, booking.ID, bookingModel.PaymentPending, map[string]any{
		bookingModel.FieldPaymentSessionID: session.ID,
	})
	if err != nil {
		return res, err
	}

	if affected == 0 {
		return res, failure.Conflict("booking payment changed while the checkout was created") // nolint:wrapcheck
	}

	log.Info().Str("booking_id", booking.ID).Str("session_id", session.ID).Int64("amount", booking.FinalAmount).Msg("checkout session created")

	s.bookings.InvalidateCache(ctx, booking.ID)

	res.SessionID = session.ID
	res.URL = session.URL

	return res, nil
}

// VerifyPayment compares the booking with the provider. A charge the provider completed but the
// booking never heard about is recorded as paid. Occupancy is never touched.
func (s *serviceImpl) VerifyPayment(ctx context.Context, bookingID string) (res dto.VerifyPaymentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.VerifyPayment")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	defer func() { s.record(ctx, opVerify, err, map[string]any{"booking_id": bookingID}) }()

	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return res, err
	}

	res.BookingID = booking.ID
	res.PaymentStatus = booking.PaymentStatus

	if booking.PaymentStatus != bookingModel.PaymentPending {
		res.Message = "payment is already " + booking.PaymentStatus + ", nothing to reconcile"

		return res, nil
	}

	if booking.PaymentSessionID == nil {
		res.Message = "no payment session has been started for this booking"

		return res, nil
	}

	session, err := s.gateway.GetSession(ctx, *booking.PaymentSessionID)
	if err != nil {
		return res, failure.PaymentGateway(err) // nolint:wrapcheck
	}

	res.SessionStatus = session.Status

	if !session.IsPaid() {
		switch session.Status {
		case stripe.SessionStatusExpired:
			res.Message = "checkout session expired without payment, the booking stays pending"
		case stripe.SessionStatusOpen:
			res.Message = "checkout session is still open and awaiting payment"
		default:
			res.Message = fmt.Sprintf("payment has not completed (session %s, payment %s)", session.Status, session.PaymentStatus)
		}

		return res, nil
	}

	marked, err := s.markPaid(ctx, booking.ID, session.ID)
	if err != nil {
		return res, err
	}

	res.PaymentStatus = bookingModel.PaymentPaid
	res.Reconciled = marked

	if !marked {
		res.Message = "payment was recorded while verifying"

		return res, nil
	}

	log.Warn().Str("booking_id", booking.ID).Str("session_id", session.ID).Msg("completed payment was missing locally, booking marked as paid")

	res.Message = "payment completed at the provider but was not recorded, the booking is now marked as paid"

	return res, nil
}

// RefundPayment returns all or half of a paid charge. Card refunds go through the provider before
// anything changes locally. Token bookings get their tokens back by cancelling instead.
func (s *serviceImpl) RefundPayment(ctx context.Context, bookingID string, req dto.RefundRequest) (res dto.RefundResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.RefundPayment")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	fields := map[string]any{"booking_id": bookingID, "kind": req.Kind}
	defer func() { s.record(ctx, opRefund, err, fields) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	booking, err := s.get(ctx, bookingID)
	if err != nil {
		return res, err
	}

	if booking.PaymentMethod == bookingModel.MethodToken {
		return res, failure.Conflict("token bookings are refunded by cancelling the booking") // nolint:wrapcheck
	}

	if booking.PaymentStatus != bookingModel.PaymentPaid {
		return res, failure.Conflict("only paid bookings can be refunded, payment is " + booking.PaymentStatus) // nolint:wrapcheck
	}

	res.BookingID = booking.ID
	res.Kind = req.Kind
	res.Amount = model.RefundAmount(req.Kind, booking.FinalAmount)
	res.PaymentStatus = model.RefundedStatus(req.Kind)
	fields["amount"] = res.Amount
	fields["payment_method"] = booking.PaymentMethod

	viaGateway := model.ThroughGateway(booking.PaymentMethod) && res.Amount > 0

	if viaGateway {
		if res.RefundID, err = s.refundAtGateway(ctx, booking, req.Kind, res.Amount); err != nil {
			return res, err
		}

		fields["refund_id"] = res.RefundID
	}

	affected, err := s.update(ctx, booking.ID, bookingModel.PaymentPaid, map[string]any{
		bookingModel.FieldPaymentStatus:  res.PaymentStatus,
		bookingModel.FieldRefundedAmount: res.Amount,
	})

	switch {
	case err != nil && viaGateway:
		return res, failure.InconsistentState("payment."+opRefund, err) // nolint:wrapcheck
	case err != nil:
		return res, err
	case affected == 0 && viaGateway:
		return res, failure.InconsistentState("payment."+opRefund, errors.New("booking payment changed while the refund was issued")) // nolint:wrapcheck
	case affected == 0:
		return res, failure.Conflict("booking payment changed while the refund was recorded") // nolint:wrapcheck
	}

	log.Info().Str("booking_id", booking.ID).Str("kind", req.Kind).Int64("amount", res.Amount).Msg("payment refunded")

	s.bookings.InvalidateCache(ctx, booking.ID)
	s.publish(ctx, events.TypePaymentRefunded, booking.ID, res)

	return res, nil
}

func (s *serviceImpl) refundAtGateway(ctx context.Context, booking bookingModel.Booking, kind string, amount int64) (string, error) {
	if booking.PaymentSessionID == nil {
		return "", failure.Conflict("booking has no payment session to refund") // nolint:wrapcheck
	}

	session, err := s.gateway.GetSession(ctx, *booking.PaymentSessionID)
	if err != nil {
		return "", failure.PaymentGateway(err) // nolint:wrapcheck
	}

	if session.PaymentIntentID == "" {
		return "", failure.Conflict("payment session has no captured charge") // nolint:wrapcheck
	}

	refund, err := s.gateway.Refund(ctx, session.PaymentIntentID, amount, "refund-"+booking.ID+"-"+kind)
	if err != nil {
		return "", failure.PaymentGateway(err) // nolint:wrapcheck
	}

	return refund.ID, nil
}

// HandleWebhook applies a signed provider notification. Only completed checkouts change anything,
// and a booking that is already paid is left alone, so redelivered events are harmless.
func (s *serviceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) (res dto.WebhookResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.HandleWebhook")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	fields := map[string]any{}
	defer func() { s.record(ctx, opWebhook, err, fields) }()

	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		log.Warn().Err(err).Msg("rejected payment webhook")

		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	res.EventID = event.ID
	fields["event_id"] = event.ID
	fields["event_type"] = event.Type

	if event.Session == nil || !event.Session.IsPaid() {
		log.Debug().Str("event_id", event.ID).Str("event_type", event.Type).Msg("payment webhook ignored")

		return res, nil
	}

	res.BookingID = event.Session.BookingID
	fields["booking_id"] = res.BookingID

	if res.BookingID == constant.Empty {
		log.Warn().Str("event_id", event.ID).Str("session_id", event.Session.ID).Msg("paid checkout session carries no booking id")

		return res, nil
	}

	res.Reconciled, err = s.markPaid(ctx, res.BookingID, event.Session.ID)
	if err != nil {
		return res, err
	}

	if !res.Reconciled {
		log.Info().Str("event_id", event.ID).Str("booking_id", res.BookingID).Msg("payment webhook already applied")
	}

	return res, nil
}

// markPaid flips a pending booking to paid. False means it was not pending any more.
func (s *serviceImpl) markPaid(ctx context.Context, bookingID, sessionID string) (bool, error) {
	affected, err := s.update(ctx, bookingID, bookingModel.PaymentPending, map[string]any{
		bookingModel.FieldPaymentStatus:    bookingModel.PaymentPaid,
		bookingModel.FieldPaymentSessionID: sessionID,
	})
	if err != nil {
		return false, err
	}

	if affected == 0 {
		return false, nil
	}

	s.bookings.InvalidateCache(ctx, bookingID)
	s.publish(ctx, events.TypePaymentReconciled, bookingID, map[string]any{
		"payment_status": bookingModel.PaymentPaid,
		"session_id":     sessionID,
	})

	return true, nil
}

// update writes fields only while the booking's payment status is still from.
func (s *serviceImpl) update(ctx context.Context, bookingID, from string, fields map[string]any) (affected int64, err error) {
	fields[constant.FieldModifiedAt] = timezone.Now()
	fields[constant.FieldModifiedBy] = shared.ActingUser(ctx)

	filter := shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName)
	filter.Filters = append(filter.Filters, gDto.Eq(bookingModel.TableName, bookingModel.FieldPaymentStatus, from))

	err = s.tx.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		affected, err = s.repo.UpdateTx(ctx, tx, fields, filter)

		return err //nolint:wrapcheck
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to update booking payment")

		return 0, fmt.Errorf("failed to update booking payment: %w", err)
	}

	return affected, nil
}

func (s *serviceImpl) get(ctx context.Context, bookingID string) (bookingModel.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	return booking, nil
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
	s.events.Alert(context.WithoutCancel(ctx), "payment."+operation, cause, fields)
}

func (s *serviceImpl) publish(ctx context.Context, eventType, bookingID string, payload any) {
	actor := shared.ActingUser(ctx)

	go s.events.Publish(context.WithoutCancel(ctx), eventType, bookingID, actor, payload)
}
