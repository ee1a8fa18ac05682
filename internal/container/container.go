package container

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/genai"

	database "github.com/voyagehq/go-trip-planner/app/db"
	"github.com/voyagehq/go-trip-planner/app/observability/metrics"
	"github.com/voyagehq/go-trip-planner/config"
	"github.com/voyagehq/go-trip-planner/internal/api/export"
	"github.com/voyagehq/go-trip-planner/internal/api/frame"
	generativeAI "github.com/voyagehq/go-trip-planner/internal/api/generative_ai"
	"github.com/voyagehq/go-trip-planner/internal/api/itinerary"
	"github.com/voyagehq/go-trip-planner/internal/api/location"
	"github.com/voyagehq/go-trip-planner/internal/api/meal"
	"github.com/voyagehq/go-trip-planner/internal/api/places"
	"github.com/voyagehq/go-trip-planner/internal/api/region"
	"github.com/voyagehq/go-trip-planner/internal/api/style"
	"github.com/voyagehq/go-trip-planner/internal/cache"
	"github.com/voyagehq/go-trip-planner/internal/geo"
)

// Container wires the planner's dependency graph once per process.
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	CacheGateway     *cache.Gateway
	ItineraryHandler *itinerary.HandlerImpl
	ExportHandler    *export.HandlerImpl
}

// aiGenerator is the one-shot generation contract every AI-backed
// service consumes.
type aiGenerator interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// unavailableAI stands in when no API key is configured. Every call
// errors, which lands each service on its deterministic fallback.
type unavailableAI struct{}

func (unavailableAI) GenerateResponse(context.Context, string, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return nil, errors.New("generative AI client is not configured")
}

// NewContainer builds the full dependency graph. The AI client is
// optional: without an API key every AI-backed service degrades to its
// deterministic fallback, which keeps local development keyless.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	store, err := c.buildCacheStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.CacheGateway = cache.NewGateway(store, logger)

	var ai aiGenerator = unavailableAI{}
	if client, err := generativeAI.NewAIClient(ctx, cfg.AI.Model); err != nil {
		logger.Warn("AI client unavailable, deterministic fallbacks will serve all AI paths",
			slog.Any("error", err))
	} else {
		ai = client
	}

	provider, geocoder := c.buildSearchProvider(cfg, logger)

	bounds := geo.DefaultBounds
	if cfg.Planner.Bounds.MaxLat != 0 || cfg.Planner.Bounds.MinLat != 0 {
		bounds = geo.Bounds{
			MinLat: cfg.Planner.Bounds.MinLat,
			MaxLat: cfg.Planner.Bounds.MaxLat,
			MinLng: cfg.Planner.Bounds.MinLng,
			MaxLng: cfg.Planner.Bounds.MaxLng,
		}
	}
	tuning := c.buildTuning(cfg)

	locationService := location.NewServiceImpl(ai, geocoder, c.CacheGateway, bounds, logger)
	styleService := style.NewServiceImpl(ai, c.CacheGateway, logger)
	frameService := frame.NewServiceImpl(ai, c.CacheGateway, logger)
	regionService := region.NewServiceImpl(ai, locationService, c.CacheGateway, logger)
	validator := meal.NewValidator(nil, nil, logger)
	enricher := places.NewRatingEnricher(provider, logger)

	appMetrics := metrics.Get()
	filler := itinerary.NewFiller(provider, c.CacheGateway, regionService, bounds, tuning, appMetrics, logger)
	itineraryService := itinerary.NewServiceImpl(
		locationService, styleService, frameService, filler, regionService,
		validator, enricher, provider, bounds, tuning, appMetrics, logger,
	)

	c.ItineraryHandler = itinerary.NewHandlerImpl(itineraryService, logger)
	c.ExportHandler = export.NewHandlerImpl(logger)
	return c, nil
}

// buildCacheStore selects the cache backend. Postgres runs migrations
// and keeps a connection pool; memory needs nothing.
func (c *Container) buildCacheStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, error) {
	if cfg.Cache.Store != "postgres" {
		logger.Info("Using in-memory cache store")
		return cache.NewMemoryStore(), nil
	}

	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		return nil, err
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}
	c.Pool = pool

	store := cache.NewPostgresStore(pool, logger)
	interval := cfg.Cache.JanitorInterval
	if interval <= 0 {
		interval = time.Hour
	}
	store.StartJanitor(ctx, interval)
	logger.Info("Using postgres cache store", slog.Duration("janitor_interval", interval))
	return store, nil
}

// buildSearchProvider picks the configured provider, falling back to
// the deterministic mock when keys are missing so the planner still
// runs end to end.
func (c *Container) buildSearchProvider(cfg *config.Config, logger *slog.Logger) (places.Provider, places.Geocoder) {
	switch cfg.Providers.Search {
	case "google":
		apiKey := os.Getenv("GOOGLE_PLACES_API_KEY")
		if apiKey != "" {
			client := places.NewGooglePlacesClient(apiKey, logger)
			return client, client
		}
		logger.Warn("GOOGLE_PLACES_API_KEY not set, using mock search provider")
	case "naver":
		clientID := os.Getenv("NAVER_CLIENT_ID")
		clientSecret := os.Getenv("NAVER_CLIENT_SECRET")
		if clientID != "" && clientSecret != "" {
			// Naver's local search has no geocoding endpoint; Google
			// (or the mock) supplies coordinates.
			var geocoder places.Geocoder
			if apiKey := os.Getenv("GOOGLE_PLACES_API_KEY"); apiKey != "" {
				geocoder = places.NewGooglePlacesClient(apiKey, logger)
			} else {
				geocoder = places.NewMockProvider(logger)
			}
			return places.NewNaverLocalClient(clientID, clientSecret, logger), geocoder
		}
		logger.Warn("Naver credentials not set, using mock search provider")
	}
	mockProvider := places.NewMockProvider(logger)
	return mockProvider, mockProvider
}

func (c *Container) buildTuning(cfg *config.Config) itinerary.Tuning {
	tuning := itinerary.DefaultTuning()
	if cfg.Planner.MinPlacesPerDay > 0 {
		tuning.MinPlacesPerDay = cfg.Planner.MinPlacesPerDay
	}
	if cfg.Planner.DailyPlaceTarget > 0 {
		tuning.DailyPlaceTarget = cfg.Planner.DailyPlaceTarget
	}
	if cfg.Planner.RefreshThreshold > 0 {
		tuning.RefreshThreshold = cfg.Planner.RefreshThreshold
	}
	if cfg.Planner.EscalationThreshold > 0 {
		tuning.EscalationThreshold = cfg.Planner.EscalationThreshold
	}
	if cfg.Planner.RadiusMultiplier > 1 {
		tuning.RadiusMultiplier = cfg.Planner.RadiusMultiplier
	}
	if cfg.Planner.MaxKeywordsPerSlot > 0 {
		tuning.MaxKeywordsPerSlot = cfg.Planner.MaxKeywordsPerSlot
	}
	return tuning
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
