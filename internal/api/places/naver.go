package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/voyagehq/go-trip-planner/internal/types"
)

const naverLocalSearchURL = "https://openapi.naver.com/v1/search/local.json"

// Naver returns KATECH-scaled WGS84 coordinates: integer strings that
// are the real value multiplied by 1e7.
const naverCoordScale = 1e7

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

var _ Provider = (*NaverLocalClient)(nil)

// NaverLocalClient searches the Naver local index. Titles arrive with
// <b> highlight markup that is stripped before use.
type NaverLocalClient struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	searchURL    string
	logger       *slog.Logger
}

func NewNaverLocalClient(clientID, clientSecret string, logger *slog.Logger) *NaverLocalClient {
	return &NaverLocalClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		searchURL:    naverLocalSearchURL,
		logger:       logger,
	}
}

func (c *NaverLocalClient) Name() string { return "naver_local" }

type naverItem struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	Telephone   string `json:"telephone"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

type naverSearchResponse struct {
	Total int         `json:"total"`
	Items []naverItem `json:"items"`
}

// Search queries the local index near nothing in particular: Naver's
// local API has no location bias parameter, so the caller's distance
// filter does the geographic narrowing.
func (c *NaverLocalClient) Search(ctx context.Context, query string, _ float64, _ float64, _ float64) ([]types.PlaceCandidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(maxResults))
	params.Set("start", "1")
	params.Set("sort", "random")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build naver request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("naver search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver search returned status %d", resp.StatusCode)
	}

	var body naverSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode naver response: %w", err)
	}

	candidates := make([]types.PlaceCandidate, 0, len(body.Items))
	for _, item := range body.Items {
		candidate := types.PlaceCandidate{
			Name:        htmlTagPattern.ReplaceAllString(item.Title, ""),
			Address:     item.Address,
			RoadAddress: item.RoadAddress,
			Phone:       item.Telephone,
			Category:    item.Category,
		}
		if lat, lng, ok := parseNaverCoords(item.MapY, item.MapX); ok {
			candidate.Latitude = types.Ptr(lat)
			candidate.Longitude = types.Ptr(lng)
		}
		candidates = append(candidates, candidate)
	}

	c.logger.DebugContext(ctx, "Naver local search completed",
		slog.String("query", query), slog.Int("results", len(candidates)))
	return candidates, nil
}

// parseNaverCoords converts the scaled mapy/mapx strings to WGS84
// degrees. Unparsable values leave the candidate without coordinates,
// which the distance filter then drops.
func parseNaverCoords(mapY, mapX string) (lat, lng float64, ok bool) {
	y, errY := strconv.ParseFloat(mapY, 64)
	x, errX := strconv.ParseFloat(mapX, 64)
	if errY != nil || errX != nil {
		return 0, 0, false
	}
	return y / naverCoordScale, x / naverCoordScale, true
}
