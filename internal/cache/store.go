// Package cache is the place cache gateway: deterministic content-hash
// keys over a TTL key-value store. The engine only depends on the Store
// contract; memory and postgres implementations ship with it.
package cache

import (
	"context"
	"time"
)

// Category selects the time-to-live bucket for an entry. The reference
// durations come straight from the planner's operational profile:
// region and category facts are stable for a month, derived analyses
// for a week.
type Category string

const (
	CategoryNearbyRegions Category = "nearby_regions"
	CategoryPlaceCategory Category = "place_category"
	CategoryLocationInfo  Category = "location_info"
	CategoryTravelStyle   Category = "travel_style"
	CategoryScheduleFrame Category = "schedule_frame"
	CategoryGooglePlaces  Category = "google_places"
	CategoryDefault       Category = "default"
)

var ttlByCategory = map[Category]time.Duration{
	CategoryNearbyRegions: 30 * 24 * time.Hour,
	CategoryPlaceCategory: 30 * 24 * time.Hour,
	CategoryLocationInfo:  30 * 24 * time.Hour,
	CategoryTravelStyle:   7 * 24 * time.Hour,
	CategoryScheduleFrame: 7 * 24 * time.Hour,
	CategoryDefault:       7 * 24 * time.Hour,
}

// TTLFor returns the duration for a category, falling back to the
// default bucket for unknown categories.
func TTLFor(category Category) time.Duration {
	if ttl, ok := ttlByCategory[category]; ok {
		return ttl
	}
	return ttlByCategory[CategoryDefault]
}

// Store is the generic TTL key-value contract the gateway sits on.
// Implementations must tolerate concurrent readers and writers;
// last-write-wins is acceptable. An expired entry and a missing entry
// are both reported as a miss.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// DeletePattern removes every key matching a glob-style pattern
	// ("ai:nearby_regions:*") and reports how many were dropped. It is
	// an operational tool, never called on the request hot path.
	DeletePattern(ctx context.Context, pattern string) (int, error)
}
