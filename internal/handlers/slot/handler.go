package slot

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"wellness/infras/otel"
	"wellness/internal/domains/slot/model"
	"wellness/internal/domains/slot/model/dto"
	"wellness/internal/domains/slot/service"
	"wellness/shared/constant"
	gDto "wellness/shared/dto"
	"wellness/shared/failure"
	"wellness/shared/validator"
	"wellness/transport/http/response"
)

const queryParamAvailable = "available"

type Handler struct {
	service service.Slot
	otel    otel.Otel
}

func New(service service.Slot, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/slots", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetSlots)
		routerGroup.Get("/availability", handler.GetAvailability)
	})
}

// GetSlots lists materialised session slots.
// @Summary Get session slots
// @Tags Slot
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param service_type query string false "Filter by service (sauna, ice_bath, combined)"
// @Param available query bool false "Only slots still open for booking"
// @Success 200 {object} response.Data[dto.GetSlotsResponse] "List of slots"
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/slots [get]
// @Security BearerAuth
func (handler *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSlots")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := r.URL.Query()
	req := dto.GetSlotsRequest{
		Date:        query.Get(constant.RequestParamDate),
		ServiceType: query.Get(model.FieldServiceType),
	}

	if raw := query.Get(queryParamAvailable); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			err = failure.Validation(queryParamAvailable + " must be true or false")
			scope.TraceError(err)

			response.WithError(w, err)

			return
		}

		req.Available = &available
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate slot filters")

		response.WithError(w, err)

		return
	}

	slots, err := handler.service.GetAll(ctx, queryParams, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get slots")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, slots)
}

// GetAvailability reports remaining seats for every slot of a service on a day.
// @Summary Get availability for a day
// @Description Public. Slots nobody has booked yet are not listed; they are open at the default capacity.
// @Tags Slot
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param service_type query string true "Service (sauna, ice_bath, combined)"
// @Success 200 {object} response.Data[dto.AvailabilityResponse] "Availability"
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/slots/availability [get]
func (handler *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailability")
	defer scope.End()

	query := r.URL.Query()
	req := dto.AvailabilityRequest{
		Date:        query.Get(constant.RequestParamDate),
		ServiceType: query.Get(model.FieldServiceType),
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Availability(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("date", req.Date).Str("service_type", req.ServiceType).Msg("failed to get availability")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
