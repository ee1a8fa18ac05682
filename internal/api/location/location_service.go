package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	generativeAI "github.com/voyagehq/go-trip-planner/internal/api/generative_ai"
	"github.com/voyagehq/go-trip-planner/internal/api/places"
	"github.com/voyagehq/go-trip-planner/internal/cache"
	"github.com/voyagehq/go-trip-planner/internal/geo"
	"github.com/voyagehq/go-trip-planner/internal/types"
)

const defaultTemperature = 0.2

// Search radii by how precisely the destination resolved.
const (
	radiusCityKm         = 5.0
	radiusDistrictKm     = 3.0
	radiusNeighborhoodKm = 1.5
)

// AIClient is the slice of the generative client this service uses.
type AIClient interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Service resolves free-text destinations into a canonical city plus
// anchor coordinates.
type Service interface {
	Resolve(ctx context.Context, text string) (*types.LocationHierarchy, error)
	ResolveCity(ctx context.Context, city string) (*types.LocationHierarchy, error)
}

var _ Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	ai       AIClient
	geocoder places.Geocoder
	cache    *cache.Gateway
	bounds   geo.Bounds
	logger   *slog.Logger
}

func NewServiceImpl(ai AIClient, geocoder places.Geocoder, cacheGateway *cache.Gateway, bounds geo.Bounds, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		ai:       ai,
		geocoder: geocoder,
		cache:    cacheGateway,
		bounds:   bounds,
		logger:   logger,
	}
}

// aiExtraction is the structured output the extraction prompt asks for.
type aiExtraction struct {
	City         string   `json:"city"`
	District     string   `json:"district"`
	Neighborhood string   `json:"neighborhood"`
	Country      string   `json:"country"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

// Resolve extracts the destination from free text. The AI-supplied
// coordinate wins when it is inside the sane bounding box; otherwise
// the geocoder supplies the anchor. Results are cached by the source
// text under the location_info TTL.
func (s *ServiceImpl) Resolve(ctx context.Context, text string) (*types.LocationHierarchy, error) {
	ctx, span := otel.Tracer("LocationService").Start(ctx, "Resolve", trace.WithAttributes(
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Resolve"))

	cacheKey := cache.KeyFor(cache.CategoryLocationInfo, "extract", text)
	var cached types.LocationHierarchy
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		l.DebugContext(ctx, "Location cache hit", slog.String("city", cached.City))
		span.AddEvent("cache hit")
		return &cached, nil
	}

	extraction := s.extractWithAI(ctx, text)

	city := strings.TrimSpace(extraction.City)
	if city == "" {
		// Nothing to name the destination with; a geocoder hit on the
		// raw text is the last chance.
		geocoded, err := s.geocoder.Geocode(ctx, text)
		if err != nil {
			span.SetStatus(codes.Error, "destination unresolvable")
			return nil, fmt.Errorf("resolving destination from text: %w", types.ErrNoDestination)
		}
		hierarchy := &types.LocationHierarchy{
			City:           geocoded.FormattedAddress,
			Latitude:       geocoded.Latitude,
			Longitude:      geocoded.Longitude,
			SearchRadiusKm: radiusCityKm,
			Specificity:    types.SpecificityLow,
			LocationText:   text,
		}
		s.cacheHierarchy(ctx, cacheKey, hierarchy)
		return hierarchy, nil
	}

	hierarchy := &types.LocationHierarchy{
		City:         city,
		District:     strings.TrimSpace(extraction.District),
		Neighborhood: strings.TrimSpace(extraction.Neighborhood),
		LocationText: text,
	}

	switch {
	case hierarchy.Neighborhood != "":
		hierarchy.Specificity = types.SpecificityHigh
		hierarchy.SearchRadiusKm = radiusNeighborhoodKm
	case hierarchy.District != "":
		hierarchy.Specificity = types.SpecificityMedium
		hierarchy.SearchRadiusKm = radiusDistrictKm
	default:
		hierarchy.Specificity = types.SpecificityMedium
		hierarchy.SearchRadiusKm = radiusCityKm
	}

	if extraction.Lat != nil && extraction.Lng != nil && s.bounds.Contains(*extraction.Lat, *extraction.Lng) {
		hierarchy.Latitude = *extraction.Lat
		hierarchy.Longitude = *extraction.Lng
	} else {
		geocoded, err := s.geocoder.Geocode(ctx, s.geocodeQuery(hierarchy))
		if err != nil {
			l.WarnContext(ctx, "Geocoding fallback failed", slog.String("city", city), slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "no usable coordinates")
			return nil, fmt.Errorf("resolving coordinates for %q: %w", city, types.ErrNoDestination)
		}
		hierarchy.Latitude = geocoded.Latitude
		hierarchy.Longitude = geocoded.Longitude
	}

	l.InfoContext(ctx, "Destination resolved",
		slog.String("city", hierarchy.City),
		slog.String("specificity", string(hierarchy.Specificity)),
		slog.Float64("lat", hierarchy.Latitude),
		slog.Float64("lng", hierarchy.Longitude))
	span.SetAttributes(attribute.String("city", hierarchy.City))
	span.SetStatus(codes.Ok, "resolved")

	s.cacheHierarchy(ctx, cacheKey, hierarchy)
	return hierarchy, nil
}

// ResolveCity resolves a bare city name, the path region expansion uses
// for its candidate regions. Geocoder only, cached like Resolve.
func (s *ServiceImpl) ResolveCity(ctx context.Context, city string) (*types.LocationHierarchy, error) {
	ctx, span := otel.Tracer("LocationService").Start(ctx, "ResolveCity", trace.WithAttributes(
		attribute.String("city", city),
	))
	defer span.End()

	cacheKey := cache.KeyFor(cache.CategoryLocationInfo, "city", city)
	var cached types.LocationHierarchy
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		span.AddEvent("cache hit")
		return &cached, nil
	}

	geocoded, err := s.geocoder.Geocode(ctx, city)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocoding failed")
		return nil, fmt.Errorf("failed to resolve city %q: %w", city, err)
	}
	if !s.bounds.Contains(geocoded.Latitude, geocoded.Longitude) {
		span.SetStatus(codes.Error, "coordinates out of bounds")
		return nil, fmt.Errorf("resolved coordinates for %q fall outside the supported area: %w", city, types.ErrNoDestination)
	}

	hierarchy := &types.LocationHierarchy{
		City:           city,
		Latitude:       geocoded.Latitude,
		Longitude:      geocoded.Longitude,
		SearchRadiusKm: radiusCityKm,
		Specificity:    types.SpecificityMedium,
		LocationText:   city,
	}
	s.cacheHierarchy(ctx, cacheKey, hierarchy)
	span.SetStatus(codes.Ok, "resolved")
	return hierarchy, nil
}

// extractWithAI runs the extraction prompt. Every failure mode (call
// error, empty content, truncation, bad JSON) degrades to an empty
// extraction; the geocoder path then carries the request.
func (s *ServiceImpl) extractWithAI(ctx context.Context, text string) aiExtraction {
	var extraction aiExtraction

	response, err := s.ai.GenerateResponse(ctx, extractionPrompt(text), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](defaultTemperature),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "AI extraction call failed", slog.Any("error", err))
		return extraction
	}
	if generativeAI.IsTruncated(response) {
		s.logger.WarnContext(ctx, "AI extraction truncated, discarding")
		return extraction
	}

	raw := generativeAI.CleanJSONResponse(generativeAI.ResponseText(response))
	if raw == "" {
		return extraction
	}
	if err := json.Unmarshal([]byte(raw), &extraction); err != nil {
		s.logger.WarnContext(ctx, "AI extraction returned malformed JSON", slog.Any("error", err))
		return aiExtraction{}
	}
	return extraction
}

func (s *ServiceImpl) geocodeQuery(h *types.LocationHierarchy) string {
	parts := make([]string, 0, 3)
	parts = append(parts, h.City)
	if h.District != "" {
		parts = append(parts, h.District)
	}
	if h.Neighborhood != "" {
		parts = append(parts, h.Neighborhood)
	}
	return strings.Join(parts, " ")
}

func (s *ServiceImpl) cacheHierarchy(ctx context.Context, key string, h *types.LocationHierarchy) {
	if err := s.cache.SetJSON(ctx, key, h, cache.CategoryLocationInfo); err != nil {
		s.logger.WarnContext(ctx, "Failed to cache resolved location", slog.Any("error", err))
	}
}
