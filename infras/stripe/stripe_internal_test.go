package stripe

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripeGo "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"wellness/config"
	"wellness/infras/metrics"
	"wellness/infras/otel/mocks"
)

func newTestGateway() *gatewayImpl {
	cfg := &config.Config{}
	cfg.Payment.Stripe.SecretKey = "sk_test_123"
	cfg.Payment.Stripe.WebhookSecret = "whsec_test"
	cfg.Payment.Currency = "gbp"

	return &gatewayImpl{
		client:  stripeGo.NewClient(cfg.Payment.Stripe.SecretKey),
		cfg:     cfg,
		metrics: metrics.New(),
		otel:    mocks.NewOtel(),
		timeout: time.Second,
		backoff: time.Millisecond,
	}
}

func TestCall_RetriesTransientFailureOnce(t *testing.T) {
	g := newTestGateway()
	attempts := 0

	res, err := call(context.Background(), g, "get_session", func(_ context.Context) (Session, error) {
		attempts++
		if attempts == 1 {
			return Session{}, errors.New("connection reset by peer")
		}

		return Session{ID: "cs_1", PaymentStatus: PaymentStatusPaid}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.True(t, res.IsPaid())
}

func TestCall_GivesUpAfterSecondAttempt(t *testing.T) {
	g := newTestGateway()
	attempts := 0

	_, err := call(context.Background(), g, "refund", func(_ context.Context) (Refund, error) {
		attempts++

		return Refund{}, &stripeGo.Error{HTTPStatusCode: http.StatusServiceUnavailable, Msg: "unavailable"}
	})

	assert.Error(t, err)
	assert.Equal(t, maxAttempts, attempts)
}

func TestCall_DoesNotRetryClientErrors(t *testing.T) {
	g := newTestGateway()
	attempts := 0

	_, err := call(context.Background(), g, "refund", func(_ context.Context) (Refund, error) {
		attempts++

		return Refund{}, &stripeGo.Error{HTTPStatusCode: http.StatusBadRequest, Msg: "charge already refunded"}
	})

	var stripeErr *stripeGo.Error
	require.ErrorAs(t, err, &stripeErr)
	assert.Equal(t, 1, attempts)
}

func TestCall_AppliesPerAttemptTimeout(t *testing.T) {
	g := newTestGateway()
	g.timeout = 10 * time.Millisecond

	_, err := call(context.Background(), g, "get_session", func(ctx context.Context) (Session, error) {
		<-ctx.Done()

		return Session{}, ctx.Err()
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseWebhook(t *testing.T) {
	g := newTestGateway()

	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"object": "checkout.session",
			"status": "complete",
			"payment_status": "paid",
			"client_reference_id": "b-1",
			"payment_intent": "pi_1",
			"amount_total": 4500,
			"metadata": {"booking_id": "b-1"}
		}}
	}`)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    "whsec_test",
		Timestamp: time.Now(),
	})

	event, err := g.ParseWebhook(payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	require.NotNil(t, event.Session)
	assert.Equal(t, "b-1", event.Session.BookingID)
	assert.Equal(t, "pi_1", event.Session.PaymentIntentID)
	assert.True(t, event.Session.IsPaid())

	_, err = g.ParseWebhook(payload, "t=1,v1=bogus")
	assert.Error(t, err)
}

func TestGateway_NotConfigured(t *testing.T) {
	g := newTestGateway()
	g.cfg.Payment.Stripe.SecretKey = ""

	_, err := g.GetSession(context.Background(), "cs_1")
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}
