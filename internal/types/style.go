package types

// TravelStyle is the closed set of trip styles the planner understands.
// Free text that matches none of these analyzes to StyleCustom.
type TravelStyle string

const (
	StyleIndoorDate    TravelStyle = "indoor_date"
	StyleOutdoorDate   TravelStyle = "outdoor_date"
	StyleFoodTour      TravelStyle = "food_tour"
	StyleCultureTour   TravelStyle = "culture_tour"
	StyleShoppingTour  TravelStyle = "shopping_tour"
	StyleHealingTour   TravelStyle = "healing_tour"
	StyleAdventureTour TravelStyle = "adventure_tour"
	StyleNightTour     TravelStyle = "night_tour"
	StyleFamilyTour    TravelStyle = "family_tour"
	StyleCustom        TravelStyle = "custom"
)

// IsValid reports whether s is one of the known styles.
func (s TravelStyle) IsValid() bool {
	switch s {
	case StyleIndoorDate, StyleOutdoorDate, StyleFoodTour, StyleCultureTour,
		StyleShoppingTour, StyleHealingTour, StyleAdventureTour,
		StyleNightTour, StyleFamilyTour, StyleCustom:
		return true
	}
	return false
}
