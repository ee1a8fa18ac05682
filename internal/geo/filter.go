// Package geo holds the pure numeric utilities of the planner: great
// circle distance, radius and address filters, and weighted reranking.
// Nothing here performs I/O.
package geo

import (
	"math"
	"sort"
	"strings"

	"github.com/voyagehq/go-trip-planner/internal/types"
)

// unknownDistanceKm sorts candidates without a stamped distance behind
// every real measurement.
const unknownDistanceKm = 999

// maxRating is the provider rating ceiling used for normalization.
const maxRating = 5.0

// Bounds is the sane national bounding box. Coordinates outside it are
// treated as missing data, never fed into distance math.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// DefaultBounds covers South Korea, the planner's default market.
var DefaultBounds = Bounds{MinLat: 33, MaxLat: 43, MinLng: 124, MaxLng: 132}

// WorldBounds accepts any valid WGS84 coordinate.
var WorldBounds = Bounds{MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180}

// Contains reports whether (lat, lng) falls inside the box.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Distance calculates the distance between two coordinates using the
// Haversine formula. Returns distance in kilometers.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371 // Earth's radius in kilometers

	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	// Differences
	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}

// FilterByDistance keeps the candidates within radiusKm of the center
// and stamps each survivor with its computed distance. Candidates with
// missing coordinates, or coordinates outside bounds, are dropped.
func FilterByDistance(places []types.PlaceCandidate, centerLat, centerLng, radiusKm float64, bounds Bounds) []types.PlaceCandidate {
	filtered := make([]types.PlaceCandidate, 0, len(places))
	for _, p := range places {
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		if !bounds.Contains(*p.Latitude, *p.Longitude) {
			continue
		}
		d := Distance(centerLat, centerLng, *p.Latitude, *p.Longitude)
		if d > radiusKm {
			continue
		}
		p.DistanceFromCenterKm = types.Ptr(d)
		filtered = append(filtered, p)
	}
	return filtered
}

// FilterByAddress keeps candidates whose address text contains the
// required district and neighborhood substrings. Empty requirements are
// no-ops, so calling with both empty returns the input unchanged.
func FilterByAddress(places []types.PlaceCandidate, district, neighborhood string) []types.PlaceCandidate {
	if district == "" && neighborhood == "" {
		return places
	}
	filtered := make([]types.PlaceCandidate, 0, len(places))
	for _, p := range places {
		addr := p.Address
		if p.RoadAddress != "" {
			addr = addr + " " + p.RoadAddress
		}
		if district != "" && !strings.Contains(addr, district) {
			continue
		}
		if neighborhood != "" && !strings.Contains(addr, neighborhood) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// SortByDistance orders candidates by ascending stamped distance.
// Candidates without a stamped distance go last; ties keep the
// provider's return order.
func SortByDistance(places []types.PlaceCandidate) []types.PlaceCandidate {
	sorted := make([]types.PlaceCandidate, len(places))
	copy(sorted, places)
	sort.SliceStable(sorted, func(i, j int) bool {
		return stampedDistance(sorted[i]) < stampedDistance(sorted[j])
	})
	return sorted
}

func stampedDistance(p types.PlaceCandidate) float64 {
	if p.DistanceFromCenterKm == nil {
		return unknownDistanceKm
	}
	return *p.DistanceFromCenterKm
}

// Rerank orders candidates by a composite of proximity and rating:
// distanceWeight*normalizedInverseDistance + ratingWeight*normalizedRating.
// The weights must not sum to more than 1 (0.4/0.6 is the reference
// split). The sort is stable, so score ties keep discovery order.
func Rerank(places []types.PlaceCandidate, distanceWeight, ratingWeight float64) []types.PlaceCandidate {
	if len(places) == 0 {
		return places
	}

	maxDistance := 0.0
	for _, p := range places {
		if d := stampedDistance(p); d != unknownDistanceKm && d > maxDistance {
			maxDistance = d
		}
	}

	score := func(p types.PlaceCandidate) float64 {
		invDistance := 0.0
		if d := stampedDistance(p); d == unknownDistanceKm {
			invDistance = 0
		} else if maxDistance == 0 {
			invDistance = 1
		} else {
			invDistance = 1 - d/maxDistance
		}

		rating := 0.0
		if p.Rating != nil {
			rating = math.Min(*p.Rating, maxRating) / maxRating
		}
		return distanceWeight*invDistance + ratingWeight*rating
	}

	sorted := make([]types.PlaceCandidate, len(places))
	copy(sorted, places)
	sort.SliceStable(sorted, func(i, j int) bool {
		return score(sorted[i]) > score(sorted[j])
	})
	return sorted
}

// DedupeByName removes candidates whose normalized name repeats,
// keeping the first occurrence.
func DedupeByName(places []types.PlaceCandidate) []types.PlaceCandidate {
	seen := make(map[string]struct{}, len(places))
	deduped := make([]types.PlaceCandidate, 0, len(places))
	for _, p := range places {
		key := NormalizeName(p.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, p)
	}
	return deduped
}

// NormalizeName lowercases a place name and strips spaces, hyphens and
// underscores so cosmetic variants compare equal.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	return name
}

// PlaceKey builds the trip-wide uniqueness key from a place's name and
// address. Two entries with the same key are the same place.
func PlaceKey(name, address string) string {
	return NormalizeName(name) + "|" + NormalizeName(address)
}
