// Package itinerary contains the planner's core: the sequential,
// geo-constrained filler that walks the slot frame and binds one real
// place to each slot, plus the service and HTTP handler around it.
package itinerary

import (
	"context"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/voyagehq/go-trip-planner/app/observability/metrics"
	"github.com/voyagehq/go-trip-planner/internal/api/places"
	"github.com/voyagehq/go-trip-planner/internal/cache"
	"github.com/voyagehq/go-trip-planner/internal/geo"
	"github.com/voyagehq/go-trip-planner/internal/types"
)

// fillPhase labels where the filler is inside one slot's lifecycle.
// The phases only drive logging and tests; control flow is the Fill
// loop itself.
type fillPhase string

const (
	phaseReady           fillPhase = "ready"
	phaseDayBoundary     fillPhase = "day_boundary_check"
	phaseSearchingSlot   fillPhase = "searching_slot"
	phaseRegionExpanding fillPhase = "region_expanding"
	phaseSlotFilled      fillPhase = "slot_filled"
	phaseSlotUnfilled    fillPhase = "slot_unfilled"
	phaseDone            fillPhase = "done"
)

// Tuning collects the heuristic constants of the assembly loop. The
// defaults reproduce the planner's production behavior; none of them
// carries a deeper justification than "observed to work", so they stay
// configurable rather than baked in.
type Tuning struct {
	// MinPlacesPerDay is the slot count under which a finished day
	// counts as under-supplied and triggers region expansion.
	MinPlacesPerDay int `mapstructure:"minPlacesPerDay"`
	// DailyPlaceTarget per day; days*target is the trip-wide supply
	// the pre-assembly probe checks for.
	DailyPlaceTarget int `mapstructure:"dailyPlaceTarget"`
	// RefreshThreshold is the filtered cached-result count below which
	// a fresh provider search is issued even on a cache hit.
	RefreshThreshold int `mapstructure:"refreshThreshold"`
	// EscalationThreshold is the filtered-result count below which the
	// search is reissued once with the radius doubled.
	EscalationThreshold int `mapstructure:"escalationThreshold"`
	// RadiusMultiplier scales the radius for the single escalation.
	RadiusMultiplier float64 `mapstructure:"radiusMultiplier"`
	// MaxKeywordsPerSlot bounds how many of a slot's search keywords
	// are queried.
	MaxKeywordsPerSlot int `mapstructure:"maxKeywordsPerSlot"`
}

// DefaultTuning returns the reference constants.
func DefaultTuning() Tuning {
	return Tuning{
		MinPlacesPerDay:     4,
		DailyPlaceTarget:    6,
		RefreshThreshold:    3,
		EscalationThreshold: 2,
		RadiusMultiplier:    2.0,
		MaxKeywordsPerSlot:  2,
	}
}

// RegionPlanner widens the search area when a day under-supplies.
// Expand returns the adopted region's location, or nil when nothing
// could be adopted.
type RegionPlanner interface {
	Expand(ctx context.Context, city string, daysCount int, exclude []string) *types.LocationHierarchy
}

// FillResult is everything one assembly run produced.
type FillResult struct {
	Schedule        []types.ScheduleItem
	ExpandedRegions []string
	SlotsUnfilled   int
	CacheHits       int
	CacheMisses     int
	// FinalCity and FinalLat/FinalLng are where the reference location
	// ended up, exposed for diagnostics.
	FinalCity          string
	FinalLat, FinalLng float64
}

// itineraryState is the single mutable value of a run. It is owned by
// Fill and never shared, so the filler needs no locks.
type itineraryState struct {
	lat, lng        float64
	city            string
	day             int
	dayPlaceCount   int
	usedPlaceKeys   map[string]struct{}
	schedule        []types.ScheduleItem
	expandedRegions []string
	cacheHits       int
	cacheMisses     int
	slotsUnfilled   int
}

// Filler assembles a schedule from a slot frame. One Filler is built
// per process and shared; all per-run state lives in itineraryState.
type Filler struct {
	provider places.Provider
	cache    *cache.Gateway
	region   RegionPlanner
	bounds   geo.Bounds
	tuning   Tuning
	metrics  *metrics.AppMetrics
	logger   *slog.Logger
}

func NewFiller(provider places.Provider, cacheGateway *cache.Gateway, region RegionPlanner, bounds geo.Bounds, tuning Tuning, appMetrics *metrics.AppMetrics, logger *slog.Logger) *Filler {
	return &Filler{
		provider: provider,
		cache:    cacheGateway,
		region:   region,
		bounds:   bounds,
		tuning:   tuning,
		metrics:  appMetrics,
		logger:   logger,
	}
}

// Fill walks the frame in order and fills each slot with a concrete,
// unused, distance-bounded place. Slots that cannot be filled are
// skipped, never fatal; the only abort path is ctx cancellation.
func (f *Filler) Fill(ctx context.Context, frame []types.FrameItem, anchor *types.LocationHierarchy) (*FillResult, error) {
	ctx, span := otel.Tracer("ItineraryFiller").Start(ctx, "Fill", trace.WithAttributes(
		attribute.String("city", anchor.City),
		attribute.Int("slots", len(frame)),
	))
	defer span.End()

	l := f.logger.With(slog.String("method", "Fill"), slog.String("city", anchor.City))

	daysCount := 0
	for _, item := range frame {
		if item.Day > daysCount {
			daysCount = item.Day
		}
	}

	st := &itineraryState{
		lat:           anchor.Latitude,
		lng:           anchor.Longitude,
		city:          anchor.City,
		usedPlaceKeys: make(map[string]struct{}),
		schedule:      make([]types.ScheduleItem, 0, len(frame)),
	}
	l.DebugContext(ctx, "Assembly starting", slog.String("phase", string(phaseReady)), slog.Int("days", daysCount))

	for _, item := range frame {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if item.Day != st.day {
			// Evaluate the just-completed day before moving on. The
			// first item only seeds the day counter.
			if st.day != 0 && st.dayPlaceCount < f.tuning.MinPlacesPerDay {
				l.InfoContext(ctx, "Day under-supplied, expanding region",
					slog.String("phase", string(phaseDayBoundary)),
					slog.Int("day", st.day),
					slog.Int("placed", st.dayPlaceCount))
				f.expandRegion(ctx, st, daysCount)
			}
			st.dayPlaceCount = 0
			st.day = item.Day
		}

		selected, ok := f.fillSlot(ctx, st, item)
		if !ok {
			st.slotsUnfilled++
			f.metrics.Add(ctx, f.metrics.SlotsUnfilledTotal, 1)
			l.DebugContext(ctx, "Slot left unfilled",
				slog.String("phase", string(phaseSlotUnfilled)),
				slog.Int("day", item.Day),
				slog.String("slot", item.StartTime+"-"+item.EndTime),
				slog.String("category", item.PlaceCategory))
			continue
		}

		st.schedule = append(st.schedule, selected)
		st.dayPlaceCount++
		f.metrics.Add(ctx, f.metrics.SlotsFilledTotal, 1)
		l.DebugContext(ctx, "Slot filled",
			slog.String("phase", string(phaseSlotFilled)),
			slog.Int("day", item.Day),
			slog.String("place", selected.PlaceName),
			slog.Float64("lat", selected.Latitude),
			slog.Float64("lng", selected.Longitude))
	}

	l.InfoContext(ctx, "Assembly finished",
		slog.String("phase", string(phaseDone)),
		slog.Int("placed", len(st.schedule)),
		slog.Int("unfilled", st.slotsUnfilled),
		slog.Int("cache_hits", st.cacheHits),
		slog.Int("cache_misses", st.cacheMisses))
	span.SetAttributes(
		attribute.Int("placed", len(st.schedule)),
		attribute.Int("unfilled", st.slotsUnfilled),
	)
	span.SetStatus(codes.Ok, "assembled")

	return &FillResult{
		Schedule:        st.schedule,
		ExpandedRegions: st.expandedRegions,
		SlotsUnfilled:   st.slotsUnfilled,
		CacheHits:       st.cacheHits,
		CacheMisses:     st.cacheMisses,
		FinalCity:       st.city,
		FinalLat:        st.lat,
		FinalLng:        st.lng,
	}, nil
}

// fillSlot runs the search, escalation and selection for one frame
// item. Returns the schedule item and whether the slot was filled. The
// reference location only advances on success.
func (f *Filler) fillSlot(ctx context.Context, st *itineraryState, item types.FrameItem) (types.ScheduleItem, bool) {
	radius := item.SearchRadiusKm

	candidates := f.searchSlot(ctx, st, item, radius)
	if len(candidates) < f.tuning.EscalationThreshold {
		// Single escalation: redo the provider search with the radius
		// doubled and filter against the doubled bound.
		radius = item.SearchRadiusKm * f.tuning.RadiusMultiplier
		f.metrics.Add(ctx, f.metrics.RadiusEscalationsTotal, 1)
		f.logger.DebugContext(ctx, "Escalating search radius",
			slog.String("phase", string(phaseSearchingSlot)),
			slog.Float64("radius_km", radius),
			slog.Int("found", len(candidates)))
		escalated := f.searchFresh(ctx, st, item, radius)
		candidates = append(candidates, escalated...)
	}

	candidates = geo.DedupeByName(geo.SortByDistance(candidates))
	for _, candidate := range candidates {
		key := geo.PlaceKey(candidate.Name, candidate.Address)
		if _, used := st.usedPlaceKeys[key]; used {
			continue
		}
		st.usedPlaceKeys[key] = struct{}{}
		st.lat = *candidate.Latitude
		st.lng = *candidate.Longitude
		return scheduleItemFrom(item, candidate), true
	}
	return types.ScheduleItem{}, false
}

// searchSlot gathers candidates for a slot from the cache and, when the
// cache under-delivers, from the provider. Everything is distance
// filtered against the active radius before it is returned.
func (f *Filler) searchSlot(ctx context.Context, st *itineraryState, item types.FrameItem, radiusKm float64) []types.PlaceCandidate {
	var filtered []types.PlaceCandidate
	for _, keyword := range f.slotKeywords(item) {
		key := cache.KeyFor(cache.CategoryGooglePlaces, st.city, keyword)

		var cached []types.PlaceCandidate
		hit := f.cache.GetJSON(ctx, key, &cached)
		if hit {
			st.cacheHits++
			f.metrics.Add(ctx, f.metrics.CacheHitsTotal, 1)
		} else {
			st.cacheMisses++
			f.metrics.Add(ctx, f.metrics.CacheMissesTotal, 1)
		}

		usable := geo.FilterByDistance(cached, st.lat, st.lng, radiusKm, f.bounds)
		if !hit || len(usable) < f.tuning.RefreshThreshold {
			fresh := f.search(ctx, providerQuery(st.city, keyword), st.lat, st.lng, radiusKm)
			if len(fresh) > 0 {
				// Raw results go into the cache before any distance
				// filtering, so the entry stays valid for searches
				// from other reference points.
				if err := f.cache.SetJSON(ctx, key, fresh, cache.CategoryGooglePlaces); err != nil {
					f.logger.WarnContext(ctx, "Failed to cache search results",
						slog.String("keyword", keyword), slog.Any("error", err))
				}
			}
			usable = append(usable, geo.FilterByDistance(fresh, st.lat, st.lng, radiusKm, f.bounds)...)
		}
		filtered = append(filtered, usable...)
	}
	return filtered
}

// searchFresh is the escalation pass: provider only, no cache reads, so
// the doubled radius actually reaches new ground.
func (f *Filler) searchFresh(ctx context.Context, st *itineraryState, item types.FrameItem, radiusKm float64) []types.PlaceCandidate {
	var filtered []types.PlaceCandidate
	for _, keyword := range f.slotKeywords(item) {
		fresh := f.search(ctx, providerQuery(st.city, keyword), st.lat, st.lng, radiusKm)
		filtered = append(filtered, geo.FilterByDistance(fresh, st.lat, st.lng, radiusKm, f.bounds)...)
	}
	return filtered
}

// providerQuery composes the text the provider searches. Queries are
// city-anchored ("서울 맛집") so providers without a location parameter
// still return geographically relevant results; the cache key carries
// the city separately.
func providerQuery(city, keyword string) string {
	if city == "" {
		return keyword
	}
	return city + " " + keyword
}

// search wraps the provider call. A failed or timed-out call is zero
// results for this attempt, never an abort.
func (f *Filler) search(ctx context.Context, query string, lat, lng, radiusKm float64) []types.PlaceCandidate {
	f.metrics.Add(ctx, f.metrics.ProviderCallsTotal, 1, attribute.String("provider", f.provider.Name()))
	results, err := f.provider.Search(ctx, query, lat, lng, radiusKm)
	if err != nil {
		f.logger.WarnContext(ctx, "Provider search failed, treating as zero results",
			slog.String("query", query), slog.Any("error", err))
		return nil
	}
	return results
}

// expandRegion adopts a nearby region when the current one starves.
// Failure to adopt is a quiet no-op: the run continues from where it
// was.
func (f *Filler) expandRegion(ctx context.Context, st *itineraryState, daysCount int) {
	f.logger.DebugContext(ctx, "Region expansion requested",
		slog.String("phase", string(phaseRegionExpanding)), slog.String("city", st.city))

	adopted := f.region.Expand(ctx, st.city, daysCount, st.expandedRegions)
	if adopted == nil {
		return
	}
	st.city = adopted.City
	st.lat = adopted.Latitude
	st.lng = adopted.Longitude
	st.expandedRegions = append(st.expandedRegions, adopted.City)
	f.metrics.Add(ctx, f.metrics.RegionExpansionsTotal, 1)
}

// slotKeywords returns the keywords to query for a slot, bounded by the
// tuning. A slot without keywords searches by its category.
func (f *Filler) slotKeywords(item types.FrameItem) []string {
	keywords := item.SearchKeywords
	if len(keywords) == 0 {
		return []string{item.PlaceCategory}
	}
	if len(keywords) > f.tuning.MaxKeywordsPerSlot {
		keywords = keywords[:f.tuning.MaxKeywordsPerSlot]
	}
	return keywords
}

func scheduleItemFrom(item types.FrameItem, candidate types.PlaceCandidate) types.ScheduleItem {
	address := candidate.Address
	if address == "" {
		address = candidate.RoadAddress
	}
	return types.ScheduleItem{
		Day:       item.Day,
		Time:      item.StartTime + "-" + item.EndTime,
		PlaceName: candidate.Name,
		PlaceType: item.PlaceCategory,
		Purpose:   item.Purpose,
		Address:   address,
		Latitude:  *candidate.Latitude,
		Longitude: *candidate.Longitude,
		Duration:  durationText(item.DurationMinutes),
		Rating:    candidate.Rating,
		Verified:  true,
	}
}

// durationText renders an expected duration the way the schedule
// displays it ("90분").
func durationText(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return strconv.Itoa(minutes) + "분"
}
