package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/voyagehq/go-trip-planner/internal/types"
)

const (
	googleTextSearchURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	googleGeocodeURL    = "https://maps.googleapis.com/maps/api/geocode/json"
)

var _ Provider = (*GooglePlacesClient)(nil)
var _ Geocoder = (*GooglePlacesClient)(nil)

// GooglePlacesClient talks to the Places Text Search and Geocoding
// endpoints. Responses are mapped straight into PlaceCandidate; the
// engine never sees the provider's own schema.
type GooglePlacesClient struct {
	apiKey        string
	httpClient    *http.Client
	textSearchURL string
	geocodeURL    string
	logger        *slog.Logger
}

func NewGooglePlacesClient(apiKey string, logger *slog.Logger) *GooglePlacesClient {
	return &GooglePlacesClient{
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		textSearchURL: googleTextSearchURL,
		geocodeURL:    googleGeocodeURL,
		logger:        logger,
	}
}

func (c *GooglePlacesClient) Name() string { return "google_places" }

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googlePlaceResult struct {
	Name             string         `json:"name"`
	FormattedAddress string         `json:"formatted_address"`
	Geometry         googleGeometry `json:"geometry"`
	Rating           *float64       `json:"rating,omitempty"`
	UserRatingsTotal *int           `json:"user_ratings_total,omitempty"`
	Types            []string       `json:"types"`
}

type googleSearchResponse struct {
	Results []googlePlaceResult `json:"results"`
	Status  string              `json:"status"`
}

// Search runs a text search biased to the given center and radius.
func (c *GooglePlacesClient) Search(ctx context.Context, query string, lat, lng, radiusKm float64) ([]types.PlaceCandidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("radius", fmt.Sprintf("%d", int(radiusKm*1000)))
	params.Set("language", "ko")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.textSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build places request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places search returned status %d", resp.StatusCode)
	}

	var body googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}

	switch body.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, fmt.Errorf("places search returned status %q", body.Status)
	}

	candidates := make([]types.PlaceCandidate, 0, len(body.Results))
	for _, r := range body.Results {
		if len(candidates) == maxResults {
			break
		}
		category := ""
		if len(r.Types) > 0 {
			category = r.Types[0]
		}
		candidates = append(candidates, types.PlaceCandidate{
			Name:      r.Name,
			Address:   r.FormattedAddress,
			Latitude:  types.Ptr(r.Geometry.Location.Lat),
			Longitude: types.Ptr(r.Geometry.Location.Lng),
			Rating:    r.Rating,
			Category:  category,
		})
	}

	c.logger.DebugContext(ctx, "Google places search completed",
		slog.String("query", query), slog.Int("results", len(candidates)))
	return candidates, nil
}

type googleGeocodeResponse struct {
	Results []struct {
		FormattedAddress string         `json:"formatted_address"`
		Geometry         googleGeometry `json:"geometry"`
	} `json:"results"`
	Status string `json:"status"`
}

// Geocode resolves address text to its first geocoding hit.
func (c *GooglePlacesClient) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("language", "ko")
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode returned status %d", resp.StatusCode)
	}

	var body googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return nil, fmt.Errorf("no geocoding result for %q", address)
	}

	first := body.Results[0]
	return &GeocodeResult{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}, nil
}
