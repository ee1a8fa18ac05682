// Package frame turns a trip request into the abstract slot plan the
// filler walks: which kind of place to visit in which time window, with
// no real place names attached yet.
package frame

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
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
	defaultTemperature = 0.5
	maxFrameTokens     = 20000

	defaultStartTime = "09:00"
	defaultEndTime   = "18:00"
	defaultRadiusKm  = 3.0
)

// AIClient is the slice of the generative client this service uses.
type AIClient interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Service builds the slot frame for a trip. Generate cannot fail: every
// degraded model outcome lands on the deterministic fallback pattern.
type Service interface {
	Generate(ctx context.Context, req types.FrameRequest) []types.FrameItem
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

// aiFrame mirrors the JSON envelope the prompt asks the model for.
type aiFrame struct {
	ScheduleFrame []aiFrameItem `json:"schedule_frame"`
}

type aiFrameItem struct {
	Day                     int      `json:"day"`
	TimeSlot                string   `json:"time_slot"`
	PlaceType               string   `json:"place_type"`
	Purpose                 string   `json:"purpose"`
	SearchKeywords          []string `json:"search_keywords"`
	SearchRadiusKm          float64  `json:"search_radius_km"`
	Priority                string   `json:"priority"`
	ExpectedDurationMinutes int      `json:"expected_duration_minutes"`
}

// Generate returns the frame for req, model-built when possible and the
// fallback pattern otherwise. Frames are cached by city, day count,
// style and daily hours, so the same trip shape reuses the same frame.
func (s *ServiceImpl) Generate(ctx context.Context, req types.FrameRequest) []types.FrameItem {
	ctx, span := otel.Tracer("FrameService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("city", req.City),
		attribute.Int("days", req.DaysCount),
		attribute.String("style", req.TravelStyle),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Generate"), slog.String("city", req.City))

	if req.DailyStartTime == "" {
		req.DailyStartTime = defaultStartTime
	}
	if req.DailyEndTime == "" {
		req.DailyEndTime = defaultEndTime
	}
	// Regional enrichment for the prompt. Caller-supplied values win.
	if rc, ok := lookupRegionalContext(req.City); ok {
		if len(req.Cuisines) == 0 {
			req.Cuisines = rc.Cuisines
		}
		if req.WeatherHint == "" {
			req.WeatherHint = rc.ClimateHint
		}
	}

	cacheKey := cache.KeyFor(cache.CategoryScheduleFrame, req.City,
		fmt.Sprintf("%d|%s|%s|%s", req.DaysCount, req.TravelStyle, req.DailyStartTime, req.DailyEndTime))

	var cached []types.FrameItem
	if s.cache.GetJSON(ctx, cacheKey, &cached) && len(cached) > 0 {
		l.DebugContext(ctx, "Schedule frame cache hit", slog.Int("slots", len(cached)))
		span.AddEvent("cache hit")
		return cached
	}

	items, ok := s.generateWithAI(ctx, req)
	if !ok {
		items = FallbackFrame(req.DaysCount, req.DailyStartTime, req.DailyEndTime)
		l.InfoContext(ctx, "Schedule frame fell back to the fixed daily pattern",
			slog.Int("days", req.DaysCount), slog.Int("slots", len(items)))
		span.SetAttributes(attribute.Bool("fallback", true))
		span.SetStatus(codes.Ok, "fallback frame")
		return items
	}

	l.InfoContext(ctx, "Schedule frame generated", slog.Int("slots", len(items)))
	span.SetAttributes(attribute.Int("slots", len(items)))
	span.SetStatus(codes.Ok, "frame generated")

	if err := s.cache.SetJSON(ctx, cacheKey, items, cache.CategoryScheduleFrame); err != nil {
		l.WarnContext(ctx, "Failed to cache schedule frame", slog.Any("error", err))
	}
	return items
}

func (s *ServiceImpl) generateWithAI(ctx context.Context, req types.FrameRequest) ([]types.FrameItem, bool) {
	response, err := s.ai.GenerateResponse(ctx, framePrompt(req), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](defaultTemperature),
		MaxOutputTokens: maxFrameTokens,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "AI frame generation failed", slog.Any("error", err))
		return nil, false
	}
	if generativeAI.IsTruncated(response) {
		s.logger.WarnContext(ctx, "AI frame response truncated, discarding")
		return nil, false
	}

	raw := generativeAI.CleanJSONResponse(generativeAI.ResponseText(response))
	if raw == "" {
		s.logger.WarnContext(ctx, "AI frame response empty")
		return nil, false
	}

	var parsed aiFrame
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.logger.WarnContext(ctx, "AI frame response is not valid JSON", slog.Any("error", err))
		return nil, false
	}
	if len(parsed.ScheduleFrame) == 0 {
		s.logger.WarnContext(ctx, "AI frame response has no slots")
		return nil, false
	}

	items, err := convertFrame(parsed.ScheduleFrame, req.DaysCount)
	if err != nil {
		s.logger.WarnContext(ctx, "AI frame rejected", slog.Any("error", err))
		return nil, false
	}
	return items, true
}

// convertFrame validates and normalizes the model's slots. A single bad
// slot rejects the whole frame; a frame that skips a day does too.
func convertFrame(raw []aiFrameItem, daysCount int) ([]types.FrameItem, error) {
	items := make([]types.FrameItem, 0, len(raw))
	daysSeen := make(map[int]bool, daysCount)

	for i, slot := range raw {
		if slot.Day < 1 || slot.Day > daysCount {
			return nil, fmt.Errorf("slot %d: day %d out of range 1..%d", i, slot.Day, daysCount)
		}
		start, end, err := splitTimeSlot(slot.TimeSlot)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		placeType := strings.TrimSpace(slot.PlaceType)
		if placeType == "" {
			return nil, fmt.Errorf("slot %d: empty place type", i)
		}

		radius := slot.SearchRadiusKm
		if radius <= 0 {
			radius = defaultRadiusKm
		}
		priority := slot.Priority
		if priority == "" {
			priority = "medium"
		}
		duration := slot.ExpectedDurationMinutes
		if duration <= 0 {
			duration = slotMinutes(start, end)
		}

		daysSeen[slot.Day] = true
		items = append(items, types.FrameItem{
			Day:             slot.Day,
			StartTime:       start,
			EndTime:         end,
			PlaceCategory:   placeType,
			Purpose:         slot.Purpose,
			SearchKeywords:  slot.SearchKeywords,
			SearchRadiusKm:  radius,
			Priority:        priority,
			DurationMinutes: duration,
		})
	}

	for day := 1; day <= daysCount; day++ {
		if !daysSeen[day] {
			return nil, fmt.Errorf("frame has no slots for day %d", day)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Day != items[j].Day {
			return items[i].Day < items[j].Day
		}
		return items[i].StartTime < items[j].StartTime
	})
	return items, nil
}

// splitTimeSlot parses "09:00-11:00" into its clock endpoints.
func splitTimeSlot(slot string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(slot), "-", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed time slot %q", slot)
	}
	start, end := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if _, err := parseClock(start); err != nil {
		return "", "", fmt.Errorf("malformed time slot %q: %w", slot, err)
	}
	if _, err := parseClock(end); err != nil {
		return "", "", fmt.Errorf("malformed time slot %q: %w", slot, err)
	}
	return start, end, nil
}

func slotMinutes(start, end string) int {
	s, err1 := parseClock(start)
	e, err2 := parseClock(end)
	if err1 != nil || err2 != nil || e <= s {
		return 60
	}
	return e - s
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(clock string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	return h*60 + m, nil
}
