package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/voyagehq/go-trip-planner/app/observability/metrics"
	"github.com/voyagehq/go-trip-planner/internal/api/places"
	"github.com/voyagehq/go-trip-planner/internal/geo"
	"github.com/voyagehq/go-trip-planner/internal/types"
)

// probeKeywords are the generic queries the pre-assembly supply probe
// issues around the anchor. Between them they cover the two place
// families every trip needs.
var probeKeywords = []string{"관광지", "맛집"}

// probeRadiusKm is how far the supply probe looks. Wider than any
// single slot so a thin anchor neighborhood does not fail a city with
// plenty of supply.
const probeRadiusKm = 10.0

// Probe ranking weights: proximity matters, but a well-rated place a
// little further out is a better supply signal than a close unrated one.
const (
	probeDistanceWeight = 0.4
	probeRatingWeight   = 0.6
)

// LocationResolver turns destination text into a canonical city plus
// anchor coordinates.
type LocationResolver interface {
	Resolve(ctx context.Context, text string) (*types.LocationHierarchy, error)
	ResolveCity(ctx context.Context, city string) (*types.LocationHierarchy, error)
}

// StyleAnalyzer classifies request text into a travel style.
type StyleAnalyzer interface {
	Analyze(ctx context.Context, text string) types.TravelStyle
}

// FrameGenerator produces the slot frame. It cannot fail; degraded
// paths land on the deterministic fallback pattern.
type FrameGenerator interface {
	Generate(ctx context.Context, req types.FrameRequest) []types.FrameItem
}

// ScheduleValidator is the meal-rule post-pass.
type ScheduleValidator interface {
	Validate(ctx context.Context, schedule []types.ScheduleItem) []types.ScheduleItem
}

// Enricher back-fills ratings onto the finished schedule.
type Enricher interface {
	EnrichSchedule(ctx context.Context, schedule []types.ScheduleItem)
}

// Service is the caller-facing planning pipeline.
type Service interface {
	PlanTrip(ctx context.Context, req types.PlanTripRequest) (*types.PlanTripResponse, error)
}

var _ Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	location  LocationResolver
	style     StyleAnalyzer
	frame     FrameGenerator
	filler    *Filler
	region    RegionPlanner
	validator ScheduleValidator
	enricher  Enricher
	provider  places.Provider
	bounds    geo.Bounds
	tuning    Tuning
	metrics   *metrics.AppMetrics
	logger    *slog.Logger
}

func NewServiceImpl(
	location LocationResolver,
	style StyleAnalyzer,
	frame FrameGenerator,
	filler *Filler,
	region RegionPlanner,
	validator ScheduleValidator,
	enricher Enricher,
	provider places.Provider,
	bounds geo.Bounds,
	tuning Tuning,
	appMetrics *metrics.AppMetrics,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		location:  location,
		style:     style,
		frame:     frame,
		filler:    filler,
		region:    region,
		validator: validator,
		enricher:  enricher,
		provider:  provider,
		bounds:    bounds,
		tuning:    tuning,
		metrics:   appMetrics,
		logger:    logger,
	}
}

// PlanTrip runs the whole pipeline: resolve the destination, analyze
// the style, probe supply, generate the frame, fill it sequentially,
// enforce the meal rules and enrich the result. Partial fulfilment is
// a success with observable counts; only an unresolvable destination,
// a zero-supply region or ctx cancellation produce errors.
func (s *ServiceImpl) PlanTrip(ctx context.Context, req types.PlanTripRequest) (*types.PlanTripResponse, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "PlanTrip", trace.WithAttributes(
		attribute.String("city", req.City),
		attribute.Int("days", req.DaysCount),
	))
	defer span.End()

	start := time.Now()
	l := s.logger.With(slog.String("method", "PlanTrip"))

	if req.DaysCount < 1 {
		req.DaysCount = 1
	}

	anchor, err := s.resolveDestination(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "destination unresolved")
		return nil, err
	}
	l = l.With(slog.String("city", anchor.City))

	travelStyle := types.TravelStyle(req.TravelStyle)
	if !travelStyle.IsValid() {
		travelStyle = s.style.Analyze(ctx, req.RequestText)
	}

	// Supply pre-check: a region with zero usable places must fail
	// loudly instead of returning an empty itinerary, and a weak one
	// pre-seeds a nearby region before assembly starts.
	anchor, preExpanded, err := s.precheckSupply(ctx, anchor, req.DaysCount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insufficient supply")
		return nil, err
	}

	frame := s.frame.Generate(ctx, types.FrameRequest{
		RequestText:    req.RequestText,
		City:           anchor.City,
		DaysCount:      req.DaysCount,
		DailyStartTime: req.DailyStartTime,
		DailyEndTime:   req.DailyEndTime,
		TravelStyle:    string(travelStyle),
	})

	result, err := s.filler.Fill(ctx, frame, anchor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assembly aborted")
		return nil, fmt.Errorf("failed to assemble itinerary for %q: %w", anchor.City, err)
	}

	schedule := s.validator.Validate(ctx, result.Schedule)
	s.enricher.EnrichSchedule(ctx, schedule)

	expanded := append(preExpanded, result.ExpandedRegions...)

	response := &types.PlanTripResponse{
		ItineraryID: uuid.New(),
		City:        anchor.City,
		TravelStyle: string(travelStyle),
		DaysCount:   req.DaysCount,
		Schedule:    schedule,
		Route:       BuildRoute(schedule),
		Metadata: types.PlanMetadata{
			TotalPlaces:     len(schedule),
			RequiredPlaces:  len(frame),
			DaysCount:       req.DaysCount,
			ExpandedRegions: expanded,
			CacheHitCount:   result.CacheHits,
			CacheMissCount:  result.CacheMisses,
		},
	}

	s.metrics.Add(ctx, s.metrics.TripsPlannedTotal, 1)
	s.metrics.Observe(ctx, s.metrics.TripPlanDurationSecs, time.Since(start).Seconds())

	l.InfoContext(ctx, "Trip planned",
		slog.String("itinerary_id", response.ItineraryID.String()),
		slog.Int("places", len(schedule)),
		slog.Int("required", len(frame)),
		slog.Any("expanded_regions", expanded),
		slog.Duration("took", time.Since(start)))
	span.SetAttributes(
		attribute.Int("places", len(schedule)),
		attribute.Int("required", len(frame)),
	)
	span.SetStatus(codes.Ok, "planned")
	return response, nil
}

func (s *ServiceImpl) resolveDestination(ctx context.Context, req types.PlanTripRequest) (*types.LocationHierarchy, error) {
	if req.City != "" {
		anchor, err := s.location.ResolveCity(ctx, req.City)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve city %q: %w", req.City, err)
		}
		return anchor, nil
	}
	anchor, err := s.location.Resolve(ctx, req.RequestText)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination: %w", err)
	}
	return anchor, nil
}

// precheckSupply probes the anchor area before assembly. Zero supply
// is an explicit error naming the region; supply below days*target
// pre-seeds a region expansion (best effort); healthy supply passes the
// anchor through unchanged.
func (s *ServiceImpl) precheckSupply(ctx context.Context, anchor *types.LocationHierarchy, daysCount int) (*types.LocationHierarchy, []string, error) {
	required := daysCount * s.tuning.DailyPlaceTarget

	found := 0
	var topPick string
	for _, keyword := range probeKeywords {
		results, err := s.provider.Search(ctx, providerQuery(anchor.City, keyword), anchor.Latitude, anchor.Longitude, probeRadiusKm)
		if err != nil {
			s.logger.WarnContext(ctx, "Supply probe search failed",
				slog.String("keyword", keyword), slog.Any("error", err))
			continue
		}
		// Same pre-assembly chain the discovery path applies: radius,
		// then district match when the anchor has one, then the
		// distance/rating composite.
		usable := geo.FilterByDistance(results, anchor.Latitude, anchor.Longitude, probeRadiusKm, s.bounds)
		usable = geo.FilterByAddress(usable, anchor.District, anchor.Neighborhood)
		usable = geo.Rerank(usable, probeDistanceWeight, probeRatingWeight)
		if topPick == "" && len(usable) > 0 {
			topPick = usable[0].Name
		}
		found += len(usable)
	}

	if found == 0 {
		return nil, nil, &types.InsufficientSupplyError{
			Region:   anchor.City,
			Found:    0,
			Required: required,
		}
	}
	if found >= required {
		s.logger.DebugContext(ctx, "Supply probe passed",
			slog.String("city", anchor.City),
			slog.Int("found", found),
			slog.String("top_pick", topPick))
		return anchor, nil, nil
	}

	s.logger.InfoContext(ctx, "Trip-wide supply looks thin, pre-seeding region expansion",
		slog.String("city", anchor.City),
		slog.Int("found", found),
		slog.Int("required", required),
		slog.String("top_pick", topPick))
	if adopted := s.region.Expand(ctx, anchor.City, daysCount, nil); adopted != nil {
		s.metrics.Add(ctx, s.metrics.RegionExpansionsTotal, 1)
		return adopted, []string{adopted.City}, nil
	}
	return anchor, nil, nil
}
