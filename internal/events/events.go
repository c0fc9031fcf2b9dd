// Package events publishes booking outcomes for downstream consumers such as notification
// delivery, and raises operator alerts. Publishing is best effort: a failure is logged and never
// undoes the booking change that triggered it.
package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"wellness/config"
	"wellness/infras/kafka"
	"wellness/infras/otel"
	"wellness/shared/constant"
	"wellness/shared/timezone"
)

const (
	TypeBookingCreated    = "booking.created"
	TypeBookingUpdated    = "booking.updated"
	TypeBookingCancelled  = "booking.cancelled"
	TypePaymentReconciled = "payment.reconciled"
	TypePaymentRefunded   = "payment.refunded"
	TypeInconsistentState = "booking.inconsistent_state"
)

type Event struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Actor      string    `json:"actor"`
	Payload    any       `json:"payload,omitempty"`
}

// Alert tells an operator that a multi-step write failed midway and may need a manual look.
type Alert struct {
	Type       string         `json:"type"`
	Operation  string         `json:"operation"`
	Error      string         `json:"error"`
	Context    map[string]any `json:"context"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType, bookingID, actor string, payload any)
	Alert(ctx context.Context, operation string, err error, fields map[string]any)
}

type publisherImpl struct {
	client kafka.Client
	cfg    *config.Config
	otel   otel.Otel
}

func New(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &publisherImpl{
		client: client,
		cfg:    cfg,
		otel:   otel,
	}
}

func (p *publisherImpl) Publish(ctx context.Context, eventType, bookingID, actor string, payload any) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()

	scope.SetAttribute("event.type", eventType)

	event := Event{
		Type:       eventType,
		BookingID:  bookingID,
		OccurredAt: timezone.Now(),
		Actor:      actor,
		Payload:    payload,
	}

	err := p.client.SendMessages(ctx, p.cfg.Kafka.Topics.BookingEvents, kafka.Message{Key: bookingID, Value: event})
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("event", eventType).Str("booking_id", bookingID).Msg("failed to publish booking event")

		return
	}

	log.Debug().Str("event", eventType).Str("booking_id", bookingID).Msg("booking event published")
}

func (p *publisherImpl) Alert(ctx context.Context, operation string, cause error, fields map[string]any) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Alert")
	defer scope.End()

	alert := Alert{
		Type:       TypeInconsistentState,
		Operation:  operation,
		Context:    fields,
		OccurredAt: timezone.Now(),
	}

	if cause != nil {
		alert.Error = cause.Error()
	}

	err := p.client.SendMessages(ctx, p.cfg.Kafka.Topics.OperatorAlerts, kafka.Message{Key: operation, Value: alert})
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("operation", operation).Msg("failed to publish operator alert")
	}
}
