package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"wellness/config"
	"wellness/infras/jwt"
	jwtMocks "wellness/infras/jwt/mocks"
	otelMocks "wellness/infras/otel/mocks"
	"wellness/permissions"
	cacheMocks "wellness/shared/cache/mocks"
	"wellness/shared/constant"
	"wellness/shared/failure"
	"wellness/transport/http/middleware"
	"wellness/transport/http/response"
)

const apiKey = "internal-key"

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.APIKey = apiKey
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60

	return cfg
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	user, _ := r.Context().Value(constant.ContextKeyUserID).(string)
	response.WithMessage(w, http.StatusOK, user)
}

func newAuthRouter(t *testing.T, validator jwt.JWT) http.Handler {
	t.Helper()

	perms := &permissions.PermissionData{Endpoints: []permissions.Permission{
		{Path: "/v1/slots/availability", Method: http.MethodGet, Skip: true},
		{Path: "/v1/bookings/{id}", Method: http.MethodGet, Permissions: []string{constant.RoleAdmin, constant.RoleStaff}},
		{Path: "/v1/bookings/{id}", Method: http.MethodDelete, Permissions: []string{constant.RoleAdmin}},
	}}

	mw := middleware.NewAuthRoleMiddleware(validator, otelMocks.NewOtel(), perms, newConfig())

	router := chi.NewRouter()
	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(mw.APIKey, mw.Auth, mw.RBAC)
		routerGroup.Get("/slots/availability", whoAmI)
		routerGroup.Route("/bookings", func(bookings chi.Router) {
			bookings.Get("/{id}", whoAmI)
			bookings.Delete("/{id}", whoAmI)
			bookings.Patch("/{id}", whoAmI)
		})
	})

	return router
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var body T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestAuthRole(t *testing.T) {
	staff := &jwt.Claims{UserID: "u-1", Email: "staff@studio.test", Role: constant.RoleStaff, TokenID: "t-1"}

	tests := []struct {
		name       string
		method     string
		path       string
		header     map[string]string
		setup      func(m *jwtMocks.MockJWT)
		wantStatus int
		wantUser   string
		wantKind   failure.Kind
	}{
		{
			name:       "public route needs no token",
			method:     http.MethodGet,
			path:       "/v1/slots/availability",
			wantStatus: http.StatusOK,
			wantUser:   "",
		},
		{
			name:       "missing token",
			method:     http.MethodGet,
			path:       "/v1/bookings/b-1",
			wantStatus: http.StatusUnauthorized,
			wantKind:   failure.KindUnauthorized,
		},
		{
			name:   "staff reads a booking",
			method: http.MethodGet,
			path:   "/v1/bookings/b-1",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer good"},
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(staff, nil)
			},
			wantStatus: http.StatusOK,
			wantUser:   "u-1",
		},
		{
			name:   "staff cannot delete",
			method: http.MethodDelete,
			path:   "/v1/bookings/b-1",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer good"},
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(staff, nil)
			},
			wantStatus: http.StatusForbidden,
			wantKind:   failure.KindForbidden,
		},
		{
			name:   "expired token",
			method: http.MethodGet,
			path:   "/v1/bookings/b-1",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer old"},
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "old", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			wantStatus: http.StatusUnauthorized,
			wantKind:   failure.KindUnauthorized,
		},
		{
			name:   "claims without email",
			method: http.MethodGet,
			path:   "/v1/bookings/b-1",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer partial"},
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "partial", jwt.AccessToken).
					Return(&jwt.Claims{UserID: "u-2", Role: constant.RoleAdmin}, nil)
			},
			wantStatus: http.StatusUnauthorized,
			wantKind:   failure.KindUnauthorized,
		},
		{
			name:   "route missing from permissions",
			method: http.MethodPatch,
			path:   "/v1/bookings/b-1",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer good"},
			setup: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(staff, nil)
			},
			wantStatus: http.StatusForbidden,
			wantKind:   failure.KindForbidden,
		},
		{
			name:       "internal caller with api key",
			method:     http.MethodDelete,
			path:       "/v1/bookings/b-1",
			header:     map[string]string{constant.RequestHeaderAPIKey: apiKey},
			wantStatus: http.StatusOK,
			wantUser:   constant.ContextSystem,
		},
		{
			name:       "wrong api key",
			method:     http.MethodGet,
			path:       "/v1/bookings/b-1",
			header:     map[string]string{constant.RequestHeaderAPIKey: "nope"},
			wantStatus: http.StatusForbidden,
			wantKind:   failure.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			validator := jwtMocks.NewMockJWT(ctrl)

			if tt.setup != nil {
				tt.setup(validator)
			}

			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			rec := httptest.NewRecorder()
			newAuthRouter(t, validator).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, decode[response.Error](t, rec).Kind)

				return
			}

			body := decode[response.Message](t, rec)
			require.NotNil(t, body.Message)
			assert.Equal(t, tt.wantUser, *body.Message)
		})
	}
}

func TestRateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := cacheMocks.NewMockRedisCache(ctrl)

	mw := middleware.NewAppMiddleware(otelMocks.NewOtel(), newConfig(), redisCache)
	handler := mw.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	key := "limiter:192.0.2.1:curl"

	sendTo := func(method, path string, header map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "192.0.2.1:5555"
		req.Header.Set(constant.RequestHeaderUserAgent, "curl")

		for k, v := range header {
			req.Header.Set(k, v)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		return rec
	}

	send := func(header map[string]string) *httptest.ResponseRecorder {
		return sendTo(http.MethodGet, "/v1/slots/availability", header)
	}

	t.Run("first request opens the window", func(t *testing.T) {
		redisCache.EXPECT().Incr(gomock.Any(), key, 60).Return(int64(1), nil)

		rec := send(nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "1", rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
	})

	t.Run("over the limit", func(t *testing.T) {
		redisCache.EXPECT().Incr(gomock.Any(), key, 60).Return(int64(3), nil)

		rec := send(nil)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("cache outage lets traffic through", func(t *testing.T) {
		redisCache.EXPECT().Incr(gomock.Any(), key, 60).Return(int64(0), errors.New("connection refused"))

		rec := send(nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("signature header does not bypass the limit", func(t *testing.T) {
		redisCache.EXPECT().Incr(gomock.Any(), key, 60).Return(int64(999), nil)

		rec := sendTo(http.MethodPost, "/v1/bookings", map[string]string{constant.RequestHeaderStripeSignature: "anything"})

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("payment webhook route is not counted", func(t *testing.T) {
		rec := sendTo(http.MethodPost, constant.PathPaymentWebhook, map[string]string{constant.RequestHeaderStripeSignature: "t=1,v1=abc"})

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
