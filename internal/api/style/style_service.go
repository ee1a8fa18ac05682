// Package style classifies free-text trip requests into one of the
// planner's travel styles. Classification prefers the model; a keyword
// table keeps the pipeline alive when the model is unreachable.
package style

import (
	"context"
	"encoding/json"
	"log/slog"
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

const defaultTemperature = 0.3

// AIClient is the slice of the generative client this service uses.
type AIClient interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Service analyzes request text into a travel style. Analysis cannot
// fail: every degraded path lands on the keyword fallback.
type Service interface {
	Analyze(ctx context.Context, text string) types.TravelStyle
}

var _ Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	ai     AIClient
	cache  *cache.Gateway
	logger *slog.Logger
}

func NewServiceImpl(ai AIClient, cacheGateway *cache.Gateway, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{ai: ai, cache: cacheGateway, logger: logger}
}

// analysis is the model's verdict, cached as-is so the confidence and
// reason survive for debugging.
type analysis struct {
	TravelStyle types.TravelStyle `json:"travel_style"`
	Confidence  float64           `json:"confidence"`
	Reason      string            `json:"reason"`
}

// fallbackRules is checked top to bottom; the first matching rule wins.
// Family and food outrank the date styles so that mixed requests lean
// toward the more specific intent.
var fallbackRules = []struct {
	style    types.TravelStyle
	keywords []string
}{
	{types.StyleFamilyTour, []string{"가족", "아이", "어린이", "유아", "키즈"}},
	{types.StyleFoodTour, []string{"맛집", "음식", "먹방", "식당", "레스토랑", "먹거리"}},
	{types.StyleOutdoorDate, []string{"실외", "야외", "산책", "공원", "한강", "해변"}},
	{types.StyleIndoorDate, []string{"실내", "비", "카페", "박물관", "미술관"}},
	{types.StyleOutdoorDate, []string{"데이트", "연인", "커플", "애인"}},
	{types.StyleCultureTour, []string{"문화", "역사", "궁궐", "전통", "한옥"}},
	{types.StyleShoppingTour, []string{"쇼핑", "쇼핑몰", "백화점", "시장"}},
	{types.StyleHealingTour, []string{"힐링", "휴식", "온천", "스파", "명상"}},
	{types.StyleAdventureTour, []string{"놀이공원", "체험", "액티비티", "어드벤처"}},
	{types.StyleNightTour, []string{"야경", "밤", "야시장", "나이트", "루프톱"}},
}

// Analyze returns the travel style for the request text. Model verdicts
// are cached for a week; fallback verdicts are not cached so the model
// gets another chance once it recovers.
func (s *ServiceImpl) Analyze(ctx context.Context, text string) types.TravelStyle {
	ctx, span := otel.Tracer("StyleService").Start(ctx, "Analyze", trace.WithAttributes(
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Analyze"))

	cacheKey := cache.KeyFor(cache.CategoryTravelStyle, "analyze", text)
	var cached analysis
	if s.cache.GetJSON(ctx, cacheKey, &cached) && cached.TravelStyle.IsValid() {
		span.AddEvent("cache hit")
		return cached.TravelStyle
	}

	result, ok := s.analyzeWithAI(ctx, text)
	if !ok {
		fallback := FallbackStyle(text)
		l.DebugContext(ctx, "Style analysis fell back to keywords",
			slog.String("style", string(fallback)))
		span.SetAttributes(attribute.String("style", string(fallback)), attribute.Bool("fallback", true))
		span.SetStatus(codes.Ok, "fallback")
		return fallback
	}

	l.InfoContext(ctx, "Travel style analyzed",
		slog.String("style", string(result.TravelStyle)),
		slog.Float64("confidence", result.Confidence))
	span.SetAttributes(attribute.String("style", string(result.TravelStyle)))
	span.SetStatus(codes.Ok, "analyzed")

	if err := s.cache.SetJSON(ctx, cacheKey, result, cache.CategoryTravelStyle); err != nil {
		l.WarnContext(ctx, "Failed to cache style analysis", slog.Any("error", err))
	}
	return result.TravelStyle
}

func (s *ServiceImpl) analyzeWithAI(ctx context.Context, text string) (analysis, bool) {
	var result analysis

	response, err := s.ai.GenerateResponse(ctx, analysisPrompt(text), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](defaultTemperature),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "AI style analysis failed", slog.Any("error", err))
		return result, false
	}
	if generativeAI.IsTruncated(response) {
		s.logger.WarnContext(ctx, "AI style analysis truncated, discarding")
		return result, false
	}

	raw := generativeAI.CleanJSONResponse(generativeAI.ResponseText(response))
	if raw == "" {
		return result, false
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.logger.WarnContext(ctx, "AI style analysis returned malformed JSON", slog.Any("error", err))
		return result, false
	}
	if !result.TravelStyle.IsValid() {
		s.logger.WarnContext(ctx, "AI style analysis returned unknown style",
			slog.String("style", string(result.TravelStyle)))
		return result, false
	}
	return result, true
}

// FallbackStyle classifies by keyword alone. Deterministic: the same
// text always yields the same style.
func FallbackStyle(text string) types.TravelStyle {
	lower := strings.ToLower(text)
	for _, rule := range fallbackRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.style
			}
		}
	}
	return types.StyleCustom
}
