package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"wellness/infras/metrics"
	otelMocks "wellness/infras/otel/mocks"
	"wellness/infras/stripe"
	stripeMocks "wellness/infras/stripe/mocks"
	bookingMocks "wellness/internal/domains/booking/mocks"
	bookingModel "wellness/internal/domains/booking/model"
	"wellness/internal/domains/payment/model"
	"wellness/internal/domains/payment/model/dto"
	"wellness/internal/domains/payment/service"
	eventMocks "wellness/internal/events/mocks"
	"wellness/internal/memstore"
	"wellness/shared/failure"
)

type fixture struct {
	store   *memstore.Store
	gateway *stripeMocks.MockGateway
	events  *eventMocks.MockPublisher
	svc     service.Payment
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		store:   memstore.New(),
		gateway: stripeMocks.NewMockGateway(ctrl),
		events:  eventMocks.NewMockPublisher(ctrl),
	}

	bookings := bookingMocks.NewMockBookingService(ctrl)
	bookings.EXPECT().InvalidateCache(gomock.Any(), gomock.Any()).AnyTimes()
	f.events.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	f.svc = service.New(f.store.Bookings(), bookings, f.gateway, f.store, f.events, metrics.New(), otelMocks.NewOtel())

	return f
}

func (f fixture) booking(method, payment string, sessionID string) bookingModel.Booking {
	b := bookingModel.Booking{
		ID:            "b-1",
		CustomerEmail: "ada@example.com",
		SessionDate:   time.Date(2099, 6, 1, 0, 0, 0, 0, time.UTC),
		SessionTime:   "10:00",
		ServiceType:   "sauna",
		GuestCount:    2,
		PriceAmount:   4500,
		FinalAmount:   4500,
		PaymentMethod: method,
		PaymentStatus: payment,
		BookingStatus: bookingModel.StatusConfirmed,
	}

	if method == bookingModel.MethodToken {
		b.FinalAmount = 0
	}

	if sessionID != "" {
		b.PaymentSessionID = &sessionID
	}

	f.store.PutBooking(b)

	return b
}

func (f fixture) current(t *testing.T) bookingModel.Booking {
	t.Helper()

	b, ok := f.store.Booking("b-1")
	require.True(t, ok)

	return b
}

func TestCreateCheckout(t *testing.T) {
	t.Run("stores the new session", func(t *testing.T) {
		f := newFixture(t)
		f.booking(bookingModel.MethodCard, bookingModel.PaymentPending, "")

		f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req stripe.CheckoutRequest) (stripe.Session, error) {
				assert.Equal(t, "b-1", req.BookingID)
				assert.Equal(t, int64(4500), req.Amount)

				return stripe.Session{ID: "cs_1", URL: "https://checkout.example/cs_1", Status: stripe.SessionStatusOpen}, nil
			})

		res, err := f.svc.CreateCheckout(context.Background(), "b-1")
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.example/cs_1", res.URL)

		b := f.current(t)
		require.NotNil(t, b.PaymentSessionID)
		assert.Equal(t, "cs_1", *b.PaymentSessionID)
		assert.Equal(t, bookingModel.PaymentPending, b.PaymentStatus)
	})

	t.Run("reuses an open session", func(t *testing.T) {
		f := newFixture(t)
		f.booking(bookingModel.MethodCard, bookingModel.PaymentPending, "cs_1")

		f.gateway.EXPECT().GetSession(gomock.Any(), "cs_1").
			Return(stripe.Session{ID: "cs_1", URL: "https://checkout.example/cs_1", Status: stripe.SessionStatusOpen}, nil)

		res, err := f.svc.CreateCheckout(context.Background(), "b-1")
		require.NoError(t, err)
		assert.Equal(t, "cs_1", res.SessionID)
	})

	t.Run("gateway down leaves the booking alone", func(t *testing.T) {
		f := newFixture(t)
		f.booking(bookingModel.MethodCard, bookingModel.PaymentPending, "")

		f.gateway.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).Return(stripe.Session{}, errors.New("timeout"))

		_, err := f.svc.CreateCheckout(context.Background(), "b-1")
		assert.True(t, failure.Is(err, failure.KindPaymentGateway))
		assert.Nil(t, f.current(t).PaymentSessionID)
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name    string
			method  string
			payment string
			kind    failure.Kind
		}{
			{name: "cash booking", method: bookingModel.MethodCash, payment: bookingModel.PaymentPaid, kind: failure.KindConflict},
			{name: "already paid", method: bookingModel.MethodCard, payment: bookingModel.PaymentPaid, kind: failure.KindConflict},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				f.booking(tt.method, tt.payment, "")

				_, err := f.svc.CreateCheckout(context.Background(), "b-1")
				assert.True(t, failure.Is(err, tt.kind))
			})
		}

		f := newFixture(t)
		_, err := f.svc.CreateCheckout(context.Background(), "missing")
		assert.True(t, failure.Is(err, failure.KindNotFound))
	})
}

func TestVerifyPayment(t *testing.T) {
	tests := []struct {
		name       string
		session    stripe.Session
		reconciled bool
		status     string
		message    string
	}{
		{
			name:       "paid but never recorded",
			session:    stripe.Session{ID: "cs_1", Status: stripe.SessionStatusComplete, PaymentStatus: stripe.PaymentStatusPaid},
			reconciled: true,
			status:     bookingModel.PaymentPaid,
			message:    "not recorded",
		},
		{
			name:    "expired",
			session: stripe.Session{ID: "cs_1", Status: stripe.SessionStatusExpired, PaymentStatus: stripe.PaymentStatusUnpaid},
			status:  bookingModel.PaymentPending,
			message: "expired",
		},
		{
			name:    "still open",
			session: stripe.Session{ID: "cs_1", Status: stripe.SessionStatusOpen, PaymentStatus: stripe.PaymentStatusUnpaid},
			status:  bookingModel.PaymentPending,
			message: "awaiting payment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.booking(bookingModel.MethodCard, bookingModel.PaymentPending, "cs_1")

			f.gateway.EXPECT().GetSession(gomock.Any(), "cs_1").Return(tt.session, nil)

			res, err := f.svc.VerifyPayment(context.Background(), "b-1")
			require.NoError(t, err)
			assert.Equal(t, tt.reconciled, res.Reconciled)
			assert.Equal(t, tt.status, res.PaymentStatus)
			assert.Contains(t, res.Message, tt.message)
			assert.Equal(t, tt.status, f.current(t).PaymentStatus)
		})
	}
}

func TestVerifyPayment_NoGatewayCall(t *testing.T) {
	f := newFixture(t)
	f.booking(bookingModel.MethodCard, bookingModel.PaymentPending, "")

	res, err := f.svc.VerifyPayment(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Contains(t, res.Message, "no payment session")

	f = newFixture(t)
	f.booking(bookingModel.MethodCash, bookingModel.PaymentPaid, "")

	res, err = f.svc.VerifyPayment(context.Background(), "b-1")
	require.NoError(t, err)
	assert.False(t, res.Reconciled)
	assert.Equal(t, bookingModel.PaymentPaid, res.PaymentStatus)
}

func TestVerifyPayment_GatewayError(t *testing.T) {
	f := newFixture(t)
	f.booking(bookingModel.MethodCard, bookingModel.PaymentPending, "cs_1")

	f.gateway.EXPECT().GetSession(gomock.Any(), "cs_1").Return(stripe.Session{}, errors.New("timeout"))

	_, err := f.svc.VerifyPayment(context.Background(), "b-1")
	assert.True(t, failure.Is(err, failure.KindPaymentGateway))
	assert.Equal(t, bookingModel.PaymentPending, f.current(t).PaymentStatus)
}

func TestRefundPayment_Card(t *testing.T) {
	tests := []struct {
		kind   string
		amount int64
		status string
	}{
		{kind: model.RefundFull, amount: 4500, status: bookingModel.PaymentRefunded},
		{kind: model.RefundPartial, amount: 2250, status: bookingModel.PaymentPartialRefund},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			f := newFixture(t)
			f.booking(bookingModel.MethodCard, bookingModel.PaymentPaid, "cs_1")

			gomock.InOrder(
				f.gateway.EXPECT().GetSession(gomock.Any(), "cs_1").Return(stripe.Session{ID: "cs_1", PaymentIntentID: "pi_1"}, nil),
				f.gateway.EXPECT().Refund(gomock.Any(), "pi_1", tt.amount, "refund-b-1-"+tt.kind).Return(stripe.Refund{ID: "re_1"}, nil),
			)

			res, err := f.svc.RefundPayment(context.Background(), "b-1", dto.RefundRequest{Kind: tt.kind})
			require.NoError(t, err)
			assert.Equal(t, "re_1", res.RefundID)
			assert.Equal(t, tt.amount, res.Amount)

			b := f.current(t)
			assert.Equal(t, tt.status, b.PaymentStatus)
			assert.Equal(t, tt.amount, b.RefundedAmount)
			assert.Equal(t, bookingModel.StatusConfirmed, b.BookingStatus)
		})
	}
}

func TestRefundPayment_GatewayFailureChangesNothing(t *testing.T) {
	f := newFixture(t)
	f.booking(bookingModel.MethodCard, bookingModel.PaymentPaid, "cs_1")

	f.gateway.EXPECT().GetSession(gomock.Any(), "cs_1").Return(stripe.Session{ID: "cs_1", PaymentIntentID: "pi_1"}, nil)
	f.gateway.EXPECT().Refund(gomock.Any(), "pi_1", int64(4500), gomock.Any()).Return(stripe.Refund{}, errors.New("card declined"))

	_, err := f.svc.RefundPayment(context.Background(), "b-1", dto.RefundRequest{Kind: model.RefundFull})
	assert.True(t, failure.Is(err, failure.KindPaymentGateway))

	b := f.current(t)
	assert.Equal(t, bookingModel.PaymentPaid, b.PaymentStatus)
	assert.Zero(t, b.RefundedAmount)
}

func TestRefundPayment_LocalWriteAfterGatewayRaisesAlert(t *testing.T) {
	f := newFixture(t)
	f.booking(bookingModel.MethodCard, bookingModel.PaymentPaid, "cs_1")

	f.gateway.EXPECT().GetSession(gomock.Any(), "cs_1").Return(stripe.Session{ID: "cs_1", PaymentIntentID: "pi_1"}, nil)
	f.gateway.EXPECT().Refund(gomock.Any(), "pi_1", int64(4500), gomock.Any()).Return(stripe.Refund{ID: "re_1"}, nil)
	f.events.EXPECT().Alert(gomock.Any(), "payment.refund", gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, _ string, _ error, fields map[string]any) {
			assert.Equal(t, "re_1", fields["refund_id"])
		})

	f.store.FailNext("booking.UpdateTx", errors.New("connection reset"))

	_, err := f.svc.RefundPayment(context.Background(), "b-1", dto.RefundRequest{Kind: model.RefundFull})
	assert.True(t, failure.Is(err, failure.KindInconsistentState))
}

func TestRefundPayment_LocalMethods(t *testing.T) {
	for _, method := range []string{bookingModel.MethodCash, bookingModel.MethodGiftVoucher, bookingModel.MethodComp} {
		t.Run(method, func(t *testing.T) {
			f := newFixture(t)
			f.booking(method, bookingModel.PaymentPaid, "")

			res, err := f.svc.RefundPayment(context.Background(), "b-1", dto.RefundRequest{Kind: model.RefundPartial})
			require.NoError(t, err)
			assert.Empty(t, res.RefundID)
			assert.Equal(t, bookingModel.PaymentPartialRefund, f.current(t).PaymentStatus)
		})
	}
}

func TestRefundPayment_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		payment string
		kind    string
		want    failure.Kind
	}{
		{name: "token booking", method: bookingModel.MethodToken, payment: bookingModel.PaymentPaid, kind: model.RefundFull, want: failure.KindConflict},
		{name: "not paid", method: bookingModel.MethodCard, payment: bookingModel.PaymentPending, kind: model.RefundFull, want: failure.KindConflict},
		{name: "already refunded", method: bookingModel.MethodCash, payment: bookingModel.PaymentRefunded, kind: model.RefundPartial, want: failure.KindConflict},
		{name: "unknown kind", method: bookingModel.MethodCash, payment: bookingModel.PaymentPaid, kind: "most", want: failure.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.booking(tt.method, tt.payment, "")

			_, err := f.svc.RefundPayment(context.Background(), "b-1", dto.RefundRequest{Kind: tt.kind})
			assert.True(t, failure.Is(err, tt.want))
			assert.Equal(t, tt.payment, f.current(t).PaymentStatus)
		})
	}
}

func TestHandleWebhook(t *testing.T) {
	paid := stripe.Event{
		ID:      "evt_1",
		Type:    stripe.EventCheckoutCompleted,
		Session: &stripe.Session{ID: "cs_1", BookingID: "b-1", Status: stripe.SessionStatusComplete, PaymentStatus: stripe.PaymentStatusPaid},
	}

	t.Run("marks paid once", func(t *testing.T) {
		f := newFixture(t)
		f.booking(bookingModel.MethodCard, bookingModel.PaymentPending, "cs_1")

		f.gateway.EXPECT().ParseWebhook([]byte("payload"), "sig").Return(paid, nil).Times(2)

		res, err := f.svc.HandleWebhook(context.Background(), []byte("payload"), "sig")
		require.NoError(t, err)
		assert.True(t, res.Reconciled)
		assert.Equal(t, bookingModel.PaymentPaid, f.current(t).PaymentStatus)

		res, err = f.svc.HandleWebhook(context.Background(), []byte("payload"), "sig")
		require.NoError(t, err)
		assert.False(t, res.Reconciled)
	})

	t.Run("bad signature", func(t *testing.T) {
		f := newFixture(t)

		f.gateway.EXPECT().ParseWebhook(gomock.Any(), gomock.Any()).Return(stripe.Event{}, errors.New("signature mismatch"))

		_, err := f.svc.HandleWebhook(context.Background(), []byte("payload"), "sig")
		assert.True(t, failure.Is(err, failure.KindBadRequest))
	})

	t.Run("other events are ignored", func(t *testing.T) {
		f := newFixture(t)
		f.booking(bookingModel.MethodCard, bookingModel.PaymentPending, "cs_1")

		f.gateway.EXPECT().ParseWebhook(gomock.Any(), gomock.Any()).Return(stripe.Event{ID: "evt_2", Type: "charge.refunded"}, nil)

		res, err := f.svc.HandleWebhook(context.Background(), []byte("payload"), "sig")
		require.NoError(t, err)
		assert.False(t, res.Reconciled)
		assert.Equal(t, bookingModel.PaymentPending, f.current(t).PaymentStatus)
	})
}

func TestRefundAmount(t *testing.T) {
	assert.Equal(t, int64(4500), model.RefundAmount(model.RefundFull, 4500))
	assert.Equal(t, int64(2249), model.RefundAmount(model.RefundPartial, 4499))
}
