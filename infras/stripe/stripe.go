package stripe

//go:generate go run go.uber.org/mock/mockgen -source=./stripe.go -destination=./mocks/stripe_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	stripeGo "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"wellness/config"
	"wellness/infras/metrics"
	"wellness/infras/otel"
	"wellness/shared/constant"
)

const (
	SessionStatusOpen     = "open"
	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"

	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"

	EventCheckoutCompleted      = "checkout.session.completed"
	EventCheckoutAsyncSucceeded = "checkout.session.async_payment_succeeded"

	MetadataBookingID = "booking_id"

	maxAttempts = 2
)

var ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

type CheckoutRequest struct {
	BookingID     string
	CustomerEmail string
	Description   string
	Amount        int64
}

type Session struct {
	ID              string
	URL             string
	Status          string
	PaymentStatus   string
	PaymentIntentID string
	AmountTotal     int64
	BookingID       string
}

func (s Session) IsPaid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

type Refund struct {
	ID     string
	Status string
	Amount int64
}

type Event struct {
	ID      string
	Type    string
	Session *Session
}

// Gateway is the payment provider boundary used for checkout, verification and refunds.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (Session, error)
	GetSession(ctx context.Context, sessionID string) (Session, error)
	Refund(ctx context.Context, paymentIntentID string, amount int64, idempotencyKey string) (Refund, error)
	ParseWebhook(payload []byte, signature string) (Event, error)
}

type gatewayImpl struct {
	client  *stripeGo.Client
	cfg     *config.Config
	metrics metrics.Metrics
	otel    otel.Otel
	timeout time.Duration
	backoff time.Duration
}

func New(cfg *config.Config, m metrics.Metrics, o otel.Otel) Gateway {
	// Retries are owned by call so each attempt gets its own timeout.
	backends := stripeGo.NewBackendsWithConfig(&stripeGo.BackendConfig{
		MaxNetworkRetries: stripeGo.Int64(0),
	})

	if cfg.Payment.Stripe.SecretKey == "" {
		log.Warn().Msg("No Stripe secret key configured, card payments will fail")
	}

	return &gatewayImpl{
		client:  stripeGo.NewClient(cfg.Payment.Stripe.SecretKey, stripeGo.WithBackends(backends)),
		cfg:     cfg,
		metrics: m,
		otel:    o,
		timeout: time.Duration(cfg.Payment.TimeoutSeconds) * time.Second,
		backoff: time.Duration(cfg.Payment.RetryBackoffMsec) * time.Millisecond,
	}
}

func (g *gatewayImpl) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (Session, error) {
	if g.cfg.Payment.Stripe.SecretKey == "" {
		return Session{}, ErrGatewayNotConfigured
	}

	params := &stripeGo.CheckoutSessionCreateParams{
		Mode:              stripeGo.String(string(stripeGo.CheckoutSessionModePayment)),
		SuccessURL:        stripeGo.String(g.cfg.Payment.SuccessURL),
		CancelURL:         stripeGo.String(g.cfg.Payment.CancelURL),
		CustomerEmail:     stripeGo.String(req.CustomerEmail),
		ClientReferenceID: stripeGo.String(req.BookingID),
		LineItems: []*stripeGo.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripeGo.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripeGo.String(g.cfg.Payment.Currency),
					UnitAmount: stripeGo.Int64(req.Amount),
					ProductData: &stripeGo.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripeGo.String(req.Description),
					},
				},
				Quantity: stripeGo.Int64(1),
			},
		},
		Metadata: map[string]string{MetadataBookingID: req.BookingID},
	}
	params.SetIdempotencyKey("checkout-" + req.BookingID + "-" + fmt.Sprint(req.Amount))

	return call(ctx, g, "create_checkout", func(ctx context.Context) (Session, error) {
		cs, err := g.client.V1CheckoutSessions.Create(ctx, params)
		if err != nil {
			return Session{}, err //nolint:wrapcheck
		}

		return toSession(cs), nil
	})
}

func (g *gatewayImpl) GetSession(ctx context.Context, sessionID string) (Session, error) {
	if g.cfg.Payment.Stripe.SecretKey == "" {
		return Session{}, ErrGatewayNotConfigured
	}

	return call(ctx, g, "get_session", func(ctx context.Context) (Session, error) {
		cs, err := g.client.V1CheckoutSessions.Retrieve(ctx, sessionID, &stripeGo.CheckoutSessionRetrieveParams{})
		if err != nil {
			return Session{}, err //nolint:wrapcheck
		}

		return toSession(cs), nil
	})
}

func (g *gatewayImpl) Refund(ctx context.Context, paymentIntentID string, amount int64, idempotencyKey string) (Refund, error) {
	if g.cfg.Payment.Stripe.SecretKey == "" {
		return Refund{}, ErrGatewayNotConfigured
	}

	params := &stripeGo.RefundCreateParams{
		PaymentIntent: stripeGo.String(paymentIntentID),
		Amount:        stripeGo.Int64(amount),
	}
	params.SetIdempotencyKey(idempotencyKey)

	return call(ctx, g, "refund", func(ctx context.Context) (Refund, error) {
		refund, err := g.client.V1Refunds.Create(ctx, params)
		if err != nil {
			return Refund{}, err //nolint:wrapcheck
		}

		return Refund{ID: refund.ID, Status: string(refund.Status), Amount: refund.Amount}, nil
	})
}

func (g *gatewayImpl) ParseWebhook(payload []byte, signature string) (Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.Payment.Stripe.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("failed to verify webhook signature: %w", err)
	}

	res := Event{ID: event.ID, Type: string(event.Type)}

	switch res.Type {
	case EventCheckoutCompleted, EventCheckoutAsyncSucceeded:
		var cs stripeGo.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return Event{}, fmt.Errorf("failed to decode checkout session: %w", err)
		}

		session := toSession(&cs)
		res.Session = &session
	}

	return res, nil
}

// call runs fn with a per-attempt timeout, retrying once after the configured backoff when the
// failure is transient.
func call[T any](ctx context.Context, g *gatewayImpl, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".stripe."+operation)
	defer scope.End()

	attempt := 0

	res, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		if attempt > 1 {
			g.metrics.GatewayCall(operation, metrics.OutcomeRetry)
		}

		attemptCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc

			attemptCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}

		res, err := fn(attemptCtx)
		if err != nil && !retryable(err) {
			return res, backoff.Permanent(err)
		}

		return res, err
	}, backoff.WithBackOff(backoff.NewConstantBackOff(g.backoff)), backoff.WithMaxTries(maxAttempts))
	if err != nil {
		g.metrics.GatewayCall(operation, metrics.OutcomeFailure)
		scope.SetAttribute("attempts", attempt)
		scope.TraceError(err)
		log.Error().Err(err).Str("operation", operation).Int("attempts", attempt).Msg("payment gateway call failed")

		return res, fmt.Errorf("payment gateway %s: %w", operation, err)
	}

	g.metrics.GatewayCall(operation, metrics.OutcomeSuccess)

	return res, nil
}

func retryable(err error) bool {
	var stripeErr *stripeGo.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode == 0 ||
			stripeErr.HTTPStatusCode == http.StatusTooManyRequests ||
			stripeErr.HTTPStatusCode >= http.StatusInternalServerError
	}

	return true
}

func toSession(cs *stripeGo.CheckoutSession) Session {
	session := Session{
		ID:            cs.ID,
		URL:           cs.URL,
		Status:        string(cs.Status),
		PaymentStatus: string(cs.PaymentStatus),
		AmountTotal:   cs.AmountTotal,
		BookingID:     cs.ClientReferenceID,
	}

	if cs.PaymentIntent != nil {
		session.PaymentIntentID = cs.PaymentIntent.ID
	}

	if id, ok := cs.Metadata[MetadataBookingID]; ok && id != "" {
		session.BookingID = id
	}

	return session
}
