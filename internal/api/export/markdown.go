// Package export renders a finished plan into a shareable markdown
// document: one section per day, one entry per schedule item, metadata
// footer. Pure string assembly, no I/O.
package export

import (
	"fmt"
	"strings"

	"github.com/voyagehq/go-trip-planner/internal/types"
)

// Markdown renders the plan response as a markdown document.
func Markdown(plan *types.PlanTripResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s 여행 일정 (%d일)\n\n", plan.City, plan.DaysCount)
	fmt.Fprintf(&b, "- 여행 스타일: %s\n", plan.TravelStyle)
	fmt.Fprintf(&b, "- 일정 ID: %s\n\n", plan.ItineraryID)

	byDay := make(map[int][]types.ScheduleItem)
	maxDay := 0
	for _, item := range plan.Schedule {
		byDay[item.Day] = append(byDay[item.Day], item)
		if item.Day > maxDay {
			maxDay = item.Day
		}
	}

	for day := 1; day <= maxDay; day++ {
		items := byDay[day]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## Day %d\n\n", day)
		for _, item := range items {
			fmt.Fprintf(&b, "### %s %s\n\n", item.Time, item.PlaceName)
			if item.Purpose != "" {
				fmt.Fprintf(&b, "%s\n\n", item.Purpose)
			}
			if item.Address != "" {
				fmt.Fprintf(&b, "- 주소: %s\n", item.Address)
			}
			if item.Duration != "" {
				fmt.Fprintf(&b, "- 소요 시간: %s\n", item.Duration)
			}
			if item.Rating != nil {
				fmt.Fprintf(&b, "- 평점: %.1f\n", *item.Rating)
			}
			b.WriteString("\n")
		}
		if legs := dayLegs(plan.Route, day); len(legs) > 0 {
			b.WriteString("이동 경로: ")
			b.WriteString(legsLine(legs))
			b.WriteString("\n\n")
		}
	}

	fmt.Fprintf(&b, "---\n\n")
	fmt.Fprintf(&b, "총 %d곳 방문 (요청 슬롯 %d개)",
		plan.Metadata.TotalPlaces, plan.Metadata.RequiredPlaces)
	if len(plan.Metadata.ExpandedRegions) > 0 {
		fmt.Fprintf(&b, " · 확장 지역: %s", strings.Join(plan.Metadata.ExpandedRegions, ", "))
	}
	b.WriteString("\n")

	return b.String()
}

func dayLegs(route []types.RouteLeg, day int) []types.RouteLeg {
	var legs []types.RouteLeg
	for _, leg := range route {
		if leg.Day == day {
			legs = append(legs, leg)
		}
	}
	return legs
}

// legsLine renders "A → B (1.2km) → C (0.8km)".
func legsLine(legs []types.RouteLeg) string {
	var b strings.Builder
	b.WriteString(legs[0].FromPlace)
	for _, leg := range legs {
		fmt.Fprintf(&b, " → %s (%.1fkm)", leg.ToPlace, leg.DistanceKm)
	}
	return b.String()
}
