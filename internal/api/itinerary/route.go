package itinerary

import (
	"math"

	"github.com/voyagehq/go-trip-planner/internal/geo"
	"github.com/voyagehq/go-trip-planner/internal/types"
)

// BuildRoute summarizes a finished schedule as day-by-day legs between
// consecutive places. The schedule is already ordered, so a leg is just
// each adjacent pair within one day.
func BuildRoute(schedule []types.ScheduleItem) []types.RouteLeg {
	if len(schedule) < 2 {
		return nil
	}
	legs := make([]types.RouteLeg, 0, len(schedule)-1)
	for i := 1; i < len(schedule); i++ {
		prev, curr := schedule[i-1], schedule[i]
		if prev.Day != curr.Day {
			continue
		}
		distance := geo.Distance(prev.Latitude, prev.Longitude, curr.Latitude, curr.Longitude)
		legs = append(legs, types.RouteLeg{
			Day:        curr.Day,
			FromPlace:  prev.PlaceName,
			ToPlace:    curr.PlaceName,
			DistanceKm: math.Round(distance*100) / 100,
		})
	}
	return legs
}
