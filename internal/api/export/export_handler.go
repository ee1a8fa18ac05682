package export

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/voyagehq/go-trip-planner/internal/api"
	"github.com/voyagehq/go-trip-planner/internal/types"
)

type HandlerImpl struct {
	logger *slog.Logger
}

func NewHandlerImpl(logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{logger: logger}
}

// ExportMarkdown handles POST /itineraries/export: a plan response in,
// a markdown document out.
func (h *HandlerImpl) ExportMarkdown(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ExportHandler").Start(r.Context(), "ExportMarkdown", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/export"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ExportMarkdown"))

	var plan types.PlanTripResponse
	if err := api.DecodeJSONBody(w, r, &plan); err != nil {
		l.WarnContext(ctx, "Invalid export request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(plan.Schedule) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "schedule is empty, nothing to export")
		return
	}

	document := Markdown(&plan)
	l.DebugContext(ctx, "Rendered itinerary markdown",
		slog.String("city", plan.City), slog.Int("bytes", len(document)))

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(document)); err != nil {
		l.ErrorContext(ctx, "Failed to write export response", slog.Any("error", err))
	}
}
