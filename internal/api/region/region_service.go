// Package region widens a trip's search area when the origin city
// cannot supply enough places. The model names up to three nearby
// regions; the first one that resolves to coordinates is adopted.
package region

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	generativeAI "github.com/voyagehq/go-trip-planner/internal/api/generative_ai"
	"github.com/voyagehq/go-trip-planner/internal/cache"
	"github.com/voyagehq/go-trip-planner/internal/types"
)

const (
	defaultTemperature  = 0.3
	maxSuggestionTokens = 500
	maxRegions          = 3
)

// AIClient is the slice of the generative client this service uses.
type AIClient interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Resolver vets a candidate region by resolving it to coordinates.
type Resolver interface {
	ResolveCity(ctx context.Context, city string) (*types.LocationHierarchy, error)
}

// Service suggests and adopts nearby regions. Every degraded path is a
// quiet no-op; expansion never fails a trip that was otherwise fine.
type Service interface {
	NearbyRegions(ctx context.Context, city string, daysCount int) []string
	Expand(ctx context.Context, city string, daysCount int, exclude []string) *types.LocationHierarchy
}

var _ Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	ai       AIClient
	resolver Resolver
	cache    *cache.Gateway
	logger   *slog.Logger
}

func NewServiceImpl(ai AIClient, resolver Resolver, cacheGateway *cache.Gateway, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{ai: ai, resolver: resolver, cache: cacheGateway, logger: logger}
}

// suggestion is the model's verdict, cached whole so the reason
// survives for debugging.
type suggestion struct {
	NearbyCities []string `json:"nearby_cities"`
	Reason       string   `json:"reason"`
}

// NearbyRegions returns up to three regions worth folding into a
// daysCount-day trip around city. Results are cached by (city, days);
// model failure returns an empty list.
func (s *ServiceImpl) NearbyRegions(ctx context.Context, city string, daysCount int) []string {
	ctx, span := otel.Tracer("RegionService").Start(ctx, "NearbyRegions", trace.WithAttributes(
		attribute.String("city", city),
		attribute.Int("days", daysCount),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "NearbyRegions"), slog.String("city", city))

	cacheKey := cache.KeyFor(cache.CategoryNearbyRegions, city, strconv.Itoa(daysCount))
	var cached suggestion
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		span.AddEvent("cache hit")
		return normalizeRegions(cached.NearbyCities, city)
	}

	result, ok := s.suggestWithAI(ctx, city, daysCount)
	if !ok {
		span.SetStatus(codes.Ok, "no suggestions")
		return nil
	}

	regions := normalizeRegions(result.NearbyCities, city)
	l.InfoContext(ctx, "Nearby regions suggested",
		slog.Any("regions", regions), slog.String("reason", result.Reason))
	span.SetAttributes(attribute.Int("regions", len(regions)))
	span.SetStatus(codes.Ok, "suggested")

	if err := s.cache.SetJSON(ctx, cacheKey, result, cache.CategoryNearbyRegions); err != nil {
		l.WarnContext(ctx, "Failed to cache nearby regions", slog.Any("error", err))
	}
	return regions
}

// Expand adopts the first suggested region that is not excluded and
// resolves to coordinates. Returns nil when nothing can be adopted.
func (s *ServiceImpl) Expand(ctx context.Context, city string, daysCount int, exclude []string) *types.LocationHierarchy {
	ctx, span := otel.Tracer("RegionService").Start(ctx, "Expand", trace.WithAttributes(
		attribute.String("city", city),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Expand"), slog.String("city", city))

	excluded := make(map[string]bool, len(exclude)+1)
	excluded[strings.ToLower(strings.TrimSpace(city))] = true
	for _, name := range exclude {
		excluded[strings.ToLower(strings.TrimSpace(name))] = true
	}

	for _, candidate := range s.NearbyRegions(ctx, city, daysCount) {
		if excluded[strings.ToLower(candidate)] {
			continue
		}
		resolved, err := s.resolver.ResolveCity(ctx, candidate)
		if err != nil {
			l.DebugContext(ctx, "Candidate region did not resolve",
				slog.String("region", candidate), slog.Any("error", err))
			continue
		}
		l.InfoContext(ctx, "Adopted nearby region", slog.String("region", candidate))
		span.SetAttributes(attribute.String("adopted", candidate))
		span.SetStatus(codes.Ok, "expanded")
		return resolved
	}

	span.SetStatus(codes.Ok, "no region adopted")
	return nil
}

func (s *ServiceImpl) suggestWithAI(ctx context.Context, city string, daysCount int) (suggestion, bool) {
	var result suggestion

	response, err := s.ai.GenerateResponse(ctx, suggestionPrompt(city, daysCount), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](defaultTemperature),
		MaxOutputTokens: maxSuggestionTokens,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "AI nearby-region suggestion failed", slog.Any("error", err))
		return result, false
	}
	if generativeAI.IsTruncated(response) {
		s.logger.WarnContext(ctx, "AI nearby-region suggestion truncated, discarding")
		return result, false
	}

	raw := generativeAI.CleanJSONResponse(generativeAI.ResponseText(response))
	if raw == "" {
		return result, false
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.logger.WarnContext(ctx, "AI nearby-region suggestion returned malformed JSON", slog.Any("error", err))
		return result, false
	}
	return result, true
}

// normalizeRegions trims, dedupes, drops the origin city and caps the
// list at maxRegions, preserving the model's near-to-far order.
func normalizeRegions(regions []string, origin string) []string {
	seen := map[string]bool{strings.ToLower(strings.TrimSpace(origin)): true}
	out := make([]string, 0, maxRegions)
	for _, name := range regions {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
		if len(out) == maxRegions {
			break
		}
	}
	return out
}
