package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"wellness/config"
	"wellness/infras/jwt"
	jwtMocks "wellness/infras/jwt/mocks"
	"wellness/infras/metrics"
	otelMocks "wellness/infras/otel/mocks"
	bookingMocks "wellness/internal/domains/booking/mocks"
	bookingDto "wellness/internal/domains/booking/model/dto"
	paymentMocks "wellness/internal/domains/payment/mocks"
	paymentDto "wellness/internal/domains/payment/model/dto"
	slotMocks "wellness/internal/domains/slot/mocks"
	slotDto "wellness/internal/domains/slot/model/dto"
	tokenMocks "wellness/internal/domains/token/mocks"
	bookingHandler "wellness/internal/handlers/booking"
	paymentHandler "wellness/internal/handlers/payment"
	slotHandler "wellness/internal/handlers/slot"
	tokenHandler "wellness/internal/handlers/token"
	"wellness/permissions"
	cacheMocks "wellness/shared/cache/mocks"
	"wellness/shared/constant"
	"wellness/shared/failure"
	transport "wellness/transport/http"
	"wellness/transport/http/middleware"
	"wellness/transport/http/response"
	"wellness/transport/http/router"
)

type fixture struct {
	bookings *bookingMocks.MockBookingService
	payments *paymentMocks.MockPaymentService
	slots    *slotMocks.MockSlotService
	tokens   *tokenMocks.MockTokenService
	server   *transport.HTTP
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	otel := otelMocks.NewOtel()
	cfg := &config.Config{}

	f := fixture{
		bookings: bookingMocks.NewMockBookingService(ctrl),
		payments: paymentMocks.NewMockPaymentService(ctrl),
		slots:    slotMocks.NewMockSlotService(ctrl),
		tokens:   tokenMocks.NewMockTokenService(ctrl),
	}

	identities := map[string]*jwt.Claims{
		"staff": {UserID: "u-staff", Email: "staff@studio.test", Role: constant.RoleStaff},
		"admin": {UserID: "u-admin", Email: "admin@studio.test", Role: constant.RoleAdmin},
	}

	validator := jwtMocks.NewMockJWT(ctrl)
	validator.EXPECT().ValidateToken(gomock.Any(), gomock.Any(), jwt.AccessToken).AnyTimes().
		DoAndReturn(func(_ context.Context, token string, _ jwt.TokenType) (*jwt.Claims, error) {
			if claims, ok := identities[token]; ok {
				return claims, nil
			}

			return nil, jwt.ErrInvalidToken
		})

	handlers := router.DomainHandlers{
		Booking: bookingHandler.New(f.bookings, f.payments, otel),
		Slot:    slotHandler.New(f.slots, otel),
		Token:   tokenHandler.New(f.tokens, otel),
		Payment: paymentHandler.New(f.payments, otel),
	}

	r := router.New(
		handlers,
		middleware.NewAppMiddleware(otel, cfg, cacheMocks.NewMockRedisCache(ctrl)),
		middleware.NewAuthRoleMiddleware(validator, otel, permissions.Get(), cfg),
		metrics.New(),
	)

	f.server = transport.New(cfg, r)

	return f
}

func (f fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	return rec
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) failure.Kind {
	t.Helper()

	var body response.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Kind
}

const validBooking = `{
	"customer_name": "Ada Lovelace",
	"customer_email": "ada@example.com",
	"session_date": "2099-06-01",
	"session_time": "10:00",
	"service_type": "sauna",
	"booking_type": "communal",
	"guest_count": 2,
	"price_amount": 4500,
	"payment_method": "cash"
}`

func TestServer_Health(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, transport.ServerStateReady, f.server.State())
	assert.NotEmpty(t, rec.Header().Get(constant.RequestHeaderRequestID))
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/metrics", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CreateBookingIsPublic(t *testing.T) {
	f := newFixture(t)

	f.bookings.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req bookingDto.CreateBookingRequest) (bookingDto.BookingResponse, error) {
			assert.Equal(t, "ada@example.com", req.CustomerEmail)
			assert.Equal(t, 2, req.GuestCount)

			return bookingDto.BookingResponse{ID: "b-1", GuestCount: req.GuestCount}, nil
		})

	rec := f.do(http.MethodPost, "/v1/bookings", "", validBooking)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body response.Data[bookingDto.BookingResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "b-1", body.Data.ID)
}

func TestServer_CreateBookingErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantKind   failure.Kind
	}{
		{
			name:       "too many guests",
			body:       strings.Replace(validBooking, `"guest_count": 2`, `"guest_count": 11`, 1),
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   failure.KindValidation,
		},
		{
			name:       "slot full",
			body:       validBooking,
			serviceErr: failure.CapacityExceeded(1, 2),
			wantStatus: http.StatusConflict,
			wantKind:   failure.KindCapacityExceeded,
		},
		{
			name:       "not enough tokens",
			body:       strings.Replace(validBooking, `"cash"`, `"token"`, 1),
			serviceErr: failure.InsufficientTokens(1, 2),
			wantStatus: http.StatusConflict,
			wantKind:   failure.KindInsufficientTokens,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			if tt.serviceErr != nil {
				f.bookings.EXPECT().Create(gomock.Any(), gomock.Any()).Return(bookingDto.BookingResponse{}, tt.serviceErr)
			}

			rec := f.do(http.MethodPost, "/v1/bookings", "", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantKind, errorKind(t, rec))
		})
	}
}

func TestServer_StaffRoutes(t *testing.T) {
	f := newFixture(t)

	t.Run("token required", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/bookings/b-1", "", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("staff reads a booking", func(t *testing.T) {
		f.bookings.EXPECT().Get(gomock.Any(), "b-1").Return(bookingDto.BookingResponse{ID: "b-1"}, nil)

		rec := f.do(http.MethodGet, "/v1/bookings/b-1", "staff", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("second cancel is a conflict", func(t *testing.T) {
		f.bookings.EXPECT().Cancel(gomock.Any(), "b-1").Return(bookingDto.CancelResponse{}, failure.AlreadyCancelled("b-1"))

		rec := f.do(http.MethodPost, "/v1/bookings/b-1/cancel", "staff", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, failure.KindAlreadyCancelled, errorKind(t, rec))
	})

	t.Run("staff cannot refund", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/v1/bookings/b-1/refund", "staff", `{"kind":"full"}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin refunds", func(t *testing.T) {
		f.payments.EXPECT().RefundPayment(gomock.Any(), "b-1", paymentDto.RefundRequest{Kind: "partial"}).
			Return(paymentDto.RefundResponse{BookingID: "b-1", Amount: 2250}, nil)

		rec := f.do(http.MethodPost, "/v1/bookings/b-1/refund", "admin", `{"kind":"partial"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("gateway outage surfaces as bad gateway", func(t *testing.T) {
		f.payments.EXPECT().RefundPayment(gomock.Any(), "b-2", gomock.Any()).
			Return(paymentDto.RefundResponse{}, failure.PaymentGateway(assert.AnError))

		rec := f.do(http.MethodPost, "/v1/bookings/b-2/refund", "admin", `{"kind":"full"}`)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("inconsistent state hides the cause", func(t *testing.T) {
		f.bookings.EXPECT().Cancel(gomock.Any(), "b-3").
			Return(bookingDto.CancelResponse{}, failure.InconsistentState("booking.cancel", assert.AnError))

		rec := f.do(http.MethodPost, "/v1/bookings/b-3/cancel", "staff", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	})
}

func TestServer_Availability(t *testing.T) {
	f := newFixture(t)

	f.slots.EXPECT().Availability(gomock.Any(), slotDto.AvailabilityRequest{Date: "2099-06-01", ServiceType: "sauna"}).
		Return(slotDto.AvailabilityResponse{Date: "2099-06-01", ServiceType: "sauna", DefaultCapacity: 5}, nil)

	rec := f.do(http.MethodGet, "/v1/slots/availability?date=2099-06-01&service_type=sauna", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/v1/slots/availability?date=tomorrow&service_type=sauna", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_Tokens(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/v1/tokens/not-an-email", "staff", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(http.MethodPost, "/v1/tokens", "staff", `{"customer_email":"ada@example.com","tokens":5}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_Webhook(t *testing.T) {
	f := newFixture(t)

	payload := `{"type":"checkout.session.completed"}`

	f.payments.EXPECT().HandleWebhook(gomock.Any(), []byte(payload), "t=1,v1=sig").
		Return(paymentDto.WebhookResponse{EventID: "evt_1", BookingID: "b-1", Reconciled: true}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", strings.NewReader(payload))
	req.Header.Set(constant.RequestHeaderStripeSignature, "t=1,v1=sig")

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
