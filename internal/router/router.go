package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appMiddleware "github.com/voyagehq/go-trip-planner/app/middleware"
	"github.com/voyagehq/go-trip-planner/internal/api/export"
	"github.com/voyagehq/go-trip-planner/internal/api/itinerary"
	"github.com/voyagehq/go-trip-planner/internal/cache"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	ItineraryHandler *itinerary.HandlerImpl
	ExportHandler    *export.HandlerImpl
	CacheGateway     *cache.Gateway
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to
// be applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(appMiddleware.RequireJSON)

		r.Route("/itineraries", func(r chi.Router) {
			r.Post("/plan", cfg.ItineraryHandler.PlanTrip)
			r.Post("/export", cfg.ExportHandler.ExportMarkdown)
		})

		// Operational: bulk-drop a cache category. Off the planning
		// hot path; handy when a provider served bad data.
		r.Delete("/cache/{category}", func(w http.ResponseWriter, r *http.Request) {
			category := cache.Category(chi.URLParam(r, "category"))
			deleted, err := cfg.CacheGateway.Invalidate(r.Context(), category)
			if err != nil {
				http.Error(w, "failed to invalidate cache", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `{"deleted":%d}`, deleted)
		})
	})

	return r
}
