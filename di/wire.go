//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"wellness/config"
	"wellness/infras/kafka"
	"wellness/infras/metrics"
	"wellness/infras/otel"
	"wellness/infras/postgres"
	"wellness/infras/redis"
	"wellness/infras/stripe"
	bookingRepository "wellness/internal/domains/booking/repository"
	bookingService "wellness/internal/domains/booking/service"
	paymentService "wellness/internal/domains/payment/service"
	slotRepository "wellness/internal/domains/slot/repository"
	slotService "wellness/internal/domains/slot/service"
	tokenRepository "wellness/internal/domains/token/repository"
	tokenService "wellness/internal/domains/token/service"
	"wellness/internal/events"
	bookingHandler "wellness/internal/handlers/booking"
	paymentHandler "wellness/internal/handlers/payment"
	slotHandler "wellness/internal/handlers/slot"
	tokenHandler "wellness/internal/handlers/token"
	"wellness/permissions"
	"wellness/shared/cache"
	"wellness/transport/http"
	"wellness/transport/http/middleware"
	"wellness/transport/http/router"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	metrics.New,
	kafka.New,
	stripe.New,
	provideJWT,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	events.New,
)

var slotDomain = wire.NewSet(
	slotRepository.New,
	slotService.New,
)

var tokenDomain = wire.NewSet(
	tokenRepository.New,
	tokenService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var paymentDomain = wire.NewSet(
	paymentService.New,
)

var domains = wire.NewSet(
	slotDomain,
	tokenDomain,
	bookingDomain,
	paymentDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	slotHandler.New,
	tokenHandler.New,
	paymentHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
