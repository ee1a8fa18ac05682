package types

// PlaceCandidate is one search-provider hit. Candidates are ephemeral:
// they live for a single slot search and are cached raw, before the
// distance filter stamps DistanceFromCenterKm.
type PlaceCandidate struct {
	Name                 string   `json:"name"`
	Address              string   `json:"address"`
	RoadAddress          string   `json:"road_address,omitempty"`
	Latitude             *float64 `json:"lat,omitempty"`
	Longitude            *float64 `json:"lng,omitempty"`
	Rating               *float64 `json:"rating,omitempty"`
	Category             string   `json:"category,omitempty"`
	Phone                string   `json:"phone,omitempty"`
	DistanceFromCenterKm *float64 `json:"distance_from_center_km,omitempty"`
}

// Specificity grades how precisely a destination was resolved.
type Specificity string

const (
	SpecificityLow    Specificity = "low"
	SpecificityMedium Specificity = "medium"
	SpecificityHigh   Specificity = "high"
)

// LocationHierarchy is the resolved destination of a trip. It is
// produced once per trip and read-only afterward; Latitude/Longitude is
// the trip's anchor until slot fills move the reference location.
type LocationHierarchy struct {
	City           string      `json:"city"`
	District       string      `json:"district,omitempty"`
	Neighborhood   string      `json:"neighborhood,omitempty"`
	Latitude       float64     `json:"lat"`
	Longitude      float64     `json:"lng"`
	SearchRadiusKm float64     `json:"search_radius_km"`
	Specificity    Specificity `json:"specificity"`
	LocationText   string      `json:"location_text,omitempty"`
}
