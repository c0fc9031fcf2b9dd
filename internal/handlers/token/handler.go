package token

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"wellness/infras/otel"
	"wellness/internal/domains/token/model/dto"
	"wellness/internal/domains/token/service"
	"wellness/shared/constant"
	"wellness/shared/timezone"
	"wellness/shared/validator"
	"wellness/transport/http/response"
)

type Handler struct {
	service service.Token
	otel    otel.Otel
}

func New(service service.Token, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/tokens", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.GrantTokens)
		routerGroup.Get("/{email}", handler.GetTokens)
	})
}

// GetTokens lists the usable session token balances of a customer.
// @Summary Get a customer's session tokens
// @Tags Token
// @Produce json
// @Param email path string true "Customer email"
// @Success 200 {object} response.Data[dto.AvailableTokensResponse] "Usable balances, soonest expiry first"
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tokens/{email} [get]
// @Security BearerAuth
func (handler *Handler) GetTokens(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTokens")
	defer scope.End()

	email := chi.URLParam(r, constant.RequestParamEmail)

	if err := validator.ValidateVar(email, "required,email"); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	res, err := handler.service.AvailableTokens(ctx, email, timezone.Now())
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("email", email).Msg("failed to get session tokens")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GrantTokens credits a customer with prepaid session tokens.
// @Summary Grant session tokens
// @Tags Token
// @Accept json
// @Produce json
// @Param request body dto.GrantTokensRequest true "Grant Tokens Request"
// @Success 201 {object} response.Data[dto.BalanceResponse] "New balance"
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/tokens [post]
// @Security BearerAuth
func (handler *Handler) GrantTokens(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GrantTokens")
	defer scope.End()

	req := dto.GrantTokensRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Grant(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("email", req.CustomerEmail).Msg("failed to grant session tokens")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Session tokens granted by user " + user)

	response.WithJSON(w, http.StatusCreated, res)
}
