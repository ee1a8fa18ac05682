package places

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/voyagehq/go-trip-planner/internal/types"
)

var _ Provider = (*MockProvider)(nil)
var _ Geocoder = (*MockProvider)(nil)

// MockProvider is the offline stand-in used when no provider API key is
// configured. Results are a pure function of the query and center so
// repeated runs produce identical itineraries.
type MockProvider struct {
	logger *slog.Logger
}

func NewMockProvider(logger *slog.Logger) *MockProvider {
	return &MockProvider{logger: logger}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Search(ctx context.Context, query string, lat, lng, radiusKm float64) ([]types.PlaceCandidate, error) {
	m.logger.DebugContext(ctx, "Serving mock search results", slog.String("query", query))

	candidates := make([]types.PlaceCandidate, 0, maxResults)
	for i := 0; i < maxResults; i++ {
		// Fan the fake places out around the center, well inside any
		// realistic radius: step i lands ~0.3*(i+1) km away.
		offset := 0.003 * float64(i+1)
		candidateLat := lat + offset
		candidateLng := lng
		if i%2 == 1 {
			candidateLat = lat
			candidateLng = lng + offset
		}
		candidates = append(candidates, types.PlaceCandidate{
			Name:      fmt.Sprintf("%s place %d", query, i+1),
			Address:   fmt.Sprintf("%d %s street", 10+i, query),
			Latitude:  types.Ptr(candidateLat),
			Longitude: types.Ptr(candidateLng),
			Rating:    types.Ptr(4.5 - 0.2*float64(i)),
			Category:  "mock",
		})
	}
	return candidates, nil
}

func (m *MockProvider) Geocode(_ context.Context, address string) (*GeocodeResult, error) {
	// Seoul City Hall, the planner's neutral anchor for offline runs.
	return &GeocodeResult{
		Latitude:         37.5665,
		Longitude:        126.9780,
		FormattedAddress: address,
	}, nil
}
