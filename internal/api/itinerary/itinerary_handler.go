package itinerary

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/voyagehq/go-trip-planner/internal/api"
	"github.com/voyagehq/go-trip-planner/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// PlanTrip handles POST /itineraries/plan.
func (h *HandlerImpl) PlanTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "PlanTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/plan"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "PlanTrip"))
	l.DebugContext(ctx, "Plan trip handler invoked")

	var req types.PlanTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid plan request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.RequestText == "" && req.City == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "request_text or city is required")
		return
	}

	response, err := h.service.PlanTrip(ctx, req)
	if err != nil {
		var supplyErr *types.InsufficientSupplyError
		switch {
		case errors.As(err, &supplyErr):
			l.WarnContext(ctx, "Region under-supplied",
				slog.String("region", supplyErr.Region),
				slog.Int("found", supplyErr.Found),
				slog.Int("required", supplyErr.Required))
			api.ErrorResponse(w, r, http.StatusUnprocessableEntity, supplyErr.Error())
		case errors.Is(err, types.ErrNoDestination):
			l.WarnContext(ctx, "Destination unresolved", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadRequest, "destination could not be resolved")
		default:
			l.ErrorContext(ctx, "Trip planning failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to plan trip")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, response)
}
