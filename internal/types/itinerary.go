package types

import (
	"github.com/google/uuid"
)

// FrameItem is one abstract time-slot requirement produced by the frame
// generator before any real place is attached. Items are immutable and
// consumed strictly in order.
type FrameItem struct {
	Day             int      `json:"day"`
	StartTime       string   `json:"start_time"` // "09:00" clock format
	EndTime         string   `json:"end_time"`
	PlaceCategory   string   `json:"place_category"`
	Purpose         string   `json:"purpose"`
	SearchKeywords  []string `json:"search_keywords"`
	SearchRadiusKm  float64  `json:"search_radius_km"`
	Priority        string   `json:"priority"` // high | medium | low
	DurationMinutes int      `json:"duration_minutes"`
}

// FrameRequest carries everything the frame generator needs for one trip.
type FrameRequest struct {
	RequestText    string   `json:"request_text"`
	City           string   `json:"city"`
	DaysCount      int      `json:"days_count"`
	DailyStartTime string   `json:"daily_start_time"`
	DailyEndTime   string   `json:"daily_end_time"`
	TravelStyle    string   `json:"travel_style"`
	Cuisines       []string `json:"cuisines,omitempty"`
	WeatherHint    string   `json:"weather_hint,omitempty"`
}

// ScheduleItem is the final output unit: one concrete place bound to a
// time slot. Immutable once appended to a schedule.
type ScheduleItem struct {
	Day       int      `json:"day"`
	Time      string   `json:"time"` // "09:00-11:00"
	PlaceName string   `json:"place_name"`
	PlaceType string   `json:"place_type"`
	Purpose   string   `json:"purpose,omitempty"`
	Address   string   `json:"address"`
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lng"`
	Duration  string   `json:"duration,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	Verified  bool     `json:"verified"`
}

// RouteLeg describes the hop between two consecutive schedule items of
// the same day, distance computed over the great circle.
type RouteLeg struct {
	Day        int     `json:"day"`
	FromPlace  string  `json:"from_place"`
	ToPlace    string  `json:"to_place"`
	DistanceKm float64 `json:"distance_km"`
}

// PlanMetadata reports how the assembly went so partial fulfilment is
// observable rather than hidden.
type PlanMetadata struct {
	TotalPlaces     int      `json:"total_places"`
	RequiredPlaces  int      `json:"required_places"`
	DaysCount       int      `json:"days_count"`
	ExpandedRegions []string `json:"expanded_regions"`
	CacheHitCount   int      `json:"cache_hit_count"`
	CacheMissCount  int      `json:"cache_miss_count"`
}

// PlanTripRequest is the caller-facing input of the planning pipeline.
// City may be empty, in which case the destination is extracted from
// the free-text request.
type PlanTripRequest struct {
	RequestText    string `json:"request_text"`
	City           string `json:"city,omitempty"`
	DaysCount      int    `json:"days_count"`
	DailyStartTime string `json:"daily_start_time,omitempty"`
	DailyEndTime   string `json:"daily_end_time,omitempty"`
	TravelStyle    string `json:"travel_style,omitempty"`
}

// PlanTripResponse is the assembled itinerary plus assembly metadata.
type PlanTripResponse struct {
	ItineraryID uuid.UUID      `json:"itinerary_id"`
	City        string         `json:"city"`
	TravelStyle string         `json:"travel_style"`
	DaysCount   int            `json:"days_count"`
	Schedule    []ScheduleItem `json:"schedule"`
	Route       []RouteLeg     `json:"optimized_route"`
	Metadata    PlanMetadata   `json:"metadata"`
}

// Ptr returns a pointer to v. Handy for optional DTO fields in tests
// and provider adapters.
func Ptr[T any](v T) *T { return &v }
