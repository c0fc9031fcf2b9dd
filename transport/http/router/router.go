package router

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"wellness/infras/metrics"
	"wellness/internal/handlers/booking"
	"wellness/internal/handlers/payment"
	"wellness/internal/handlers/slot"
	"wellness/internal/handlers/token"
	"wellness/transport/http/middleware"

	_ "wellness/docs"
)

type DomainHandlers struct {
	Booking booking.Handler
	Slot    slot.Handler
	Token   token.Handler
	Payment payment.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	App            middleware.AppMiddleware
	AuthRole       middleware.AuthRole
	Metrics        metrics.Metrics
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(chiMiddleware.RequestID, chiMiddleware.RealIP, chiMiddleware.Recoverer, r.App.Tracing)

	router.Handle("/metrics", r.Metrics.Handler())
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.App.RateLimit(), r.AuthRole.APIKey, r.AuthRole.Auth, r.AuthRole.RBAC)

		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Slot.Router(routerGroup)
		r.DomainHandlers.Token.Router(routerGroup)
		r.DomainHandlers.Payment.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, authRole middleware.AuthRole, metrics metrics.Metrics) Router {
	return Router{
		DomainHandlers: domainHandlers,
		App:            app,
		AuthRole:       authRole,
		Metrics:        metrics,
	}
}
