package frame

import "github.com/voyagehq/go-trip-planner/internal/types"

const eveningThresholdMinutes = 20 * 60

// FallbackFrame is the rule-based daily pattern used whenever the model
// cannot produce a usable frame: morning sightseeing, lunch, a café
// break, afternoon sightseeing, dinner, and a bar slot only when the
// day runs into the evening. Deterministic for a given input.
func FallbackFrame(daysCount int, startTime, endTime string) []types.FrameItem {
	if startTime == "" {
		startTime = defaultStartTime
	}
	if endTime == "" {
		endTime = defaultEndTime
	}

	includeEvening := false
	if endMinutes, err := parseClock(endTime); err == nil && endMinutes >= eveningThresholdMinutes {
		includeEvening = true
	}

	slotsPerDay := 5
	if includeEvening {
		slotsPerDay = 6
	}

	frame := make([]types.FrameItem, 0, daysCount*slotsPerDay)
	for day := 1; day <= daysCount; day++ {
		frame = append(frame,
			types.FrameItem{
				Day: day, StartTime: "09:00", EndTime: "11:00",
				PlaceCategory: "tourist_attraction", Purpose: "오전 관광",
				SearchKeywords: []string{"관광지", "명소"},
				SearchRadiusKm: 5.0, Priority: "high", DurationMinutes: 120,
			},
			types.FrameItem{
				Day: day, StartTime: "11:30", EndTime: "13:00",
				PlaceCategory: "restaurant", Purpose: "점심 식사",
				SearchKeywords: []string{"맛집", "식당"},
				SearchRadiusKm: 2.0, Priority: "high", DurationMinutes: 90,
			},
			types.FrameItem{
				Day: day, StartTime: "13:30", EndTime: "15:00",
				PlaceCategory: "cafe", Purpose: "카페 휴식",
				SearchKeywords: []string{"카페", "디저트"},
				SearchRadiusKm: 1.0, Priority: "medium", DurationMinutes: 60,
			},
			types.FrameItem{
				Day: day, StartTime: "15:30", EndTime: "17:30",
				PlaceCategory: "tourist_attraction", Purpose: "오후 관광",
				SearchKeywords: []string{"관광지", "공원"},
				SearchRadiusKm: 3.0, Priority: "high", DurationMinutes: 120,
			},
			types.FrameItem{
				Day: day, StartTime: "18:00", EndTime: "19:30",
				PlaceCategory: "restaurant", Purpose: "저녁 식사",
				SearchKeywords: []string{"맛집", "저녁식사"},
				SearchRadiusKm: 2.0, Priority: "high", DurationMinutes: 90,
			},
		)
		if includeEvening {
			frame = append(frame, types.FrameItem{
				Day: day, StartTime: "20:00", EndTime: "22:00",
				PlaceCategory: "bar", Purpose: "야경/술집",
				SearchKeywords: []string{"바", "펍", "야경명소"},
				SearchRadiusKm: 3.0, Priority: "medium", DurationMinutes: 120,
			})
		}
	}
	return frame
}
