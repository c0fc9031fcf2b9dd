package payment

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"wellness/infras/otel"
	"wellness/internal/domains/payment/model/dto"
	"wellness/internal/domains/payment/service"
	"wellness/shared/constant"
	"wellness/shared/failure"
	"wellness/transport/http/response"
)

// maxWebhookBytes matches the payload ceiling the payment provider documents for webhooks.
const maxWebhookBytes = 65536

type Handler struct {
	service service.Payment
	otel    otel.Otel
}

func New(service service.Payment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payments", func(routerGroup chi.Router) {
		routerGroup.Post("/webhook", handler.Webhook)
	})
}

// Webhook receives signed checkout events from the payment provider.
// @Summary Payment provider webhook
// @Description Verifies the signature and marks the booking paid. Replays are acknowledged without effect.
// @Tags Payment
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} response.Data[dto.WebhookResponse] "Event handled"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/payments/webhook [post]
func (handler *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".PaymentWebhook")
	defer scope.End()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		err = failure.BadRequestFromString("unreadable webhook body")
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	var res dto.WebhookResponse

	res, err = handler.service.HandleWebhook(ctx, payload, r.Header.Get(constant.RequestHeaderStripeSignature))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to handle payment webhook")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
