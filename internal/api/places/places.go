// Package places holds the search-provider clients the filler draws
// candidates from. Providers are interchangeable behind the Provider
// interface; a deterministic mock stands in when no API key is
// configured, so the engine stays runnable offline.
package places

import (
	"context"

	"github.com/voyagehq/go-trip-planner/internal/types"
)

// maxResults caps how many candidates one search may return. Keeps the
// downstream filter and selection cost constant per slot.
const maxResults = 5

// Provider searches for places matching a text query near a location.
// A failed or timed-out call yields an error the caller treats as zero
// results for that attempt.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, lat, lng, radiusKm float64) ([]types.PlaceCandidate, error)
}

// Geocoder resolves free-form address text to a coordinate. Used as the
// fallback when the AI-supplied coordinate is missing or out of bounds.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*GeocodeResult, error)
}

// GeocodeResult is the slim geocoding answer the location resolver
// consumes.
type GeocodeResult struct {
	Latitude         float64 `json:"lat"`
	Longitude        float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address"`
}
