package frame

import (
	"fmt"
	"strings"

	"github.com/voyagehq/go-trip-planner/internal/types"
)

func framePrompt(req types.FrameRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a travel scheduling expert. Build the time-slot frame for a trip, deciding only what TYPE of place fits each slot. Never name real places.

Trip:
- City: %s
- Days: %d
- Daily hours: %s to %s
- Travel style: %s
- Original request: %q
`, req.City, req.DaysCount, req.DailyStartTime, req.DailyEndTime, req.TravelStyle, req.RequestText)

	if len(req.Cuisines) > 0 {
		fmt.Fprintf(&b, "- Local foods worth scheduling: %s\n", strings.Join(req.Cuisines, ", "))
	}
	if req.WeatherHint != "" {
		fmt.Fprintf(&b, "- Weather: %s\n", req.WeatherHint)
	}

	fmt.Fprintf(&b, `
Rules:
- Lunch around 11:00-13:00, a cafe break around 13:30, sightseeing 15:00-17:00, dinner around 18:00, an optional night slot 20:00-22:00.
- Never schedule the same place type in two consecutive slots.
- search_radius_km: 5.0 for sightseeing, 2.0 for meals, 3.0 otherwise.
- Keep search_keywords in Korean, at most three per slot.
- Cover every day from 1 to %d.

Return ONLY a JSON object, no code fences:
{
  "schedule_frame": [
    {"day":1,"time_slot":"09:00-11:00","place_type":"tourist_attraction","purpose":"오전 관광","search_keywords":["관광지","명소"],"search_radius_km":5.0,"priority":"high","expected_duration_minutes":120},
    {"day":1,"time_slot":"11:00-13:00","place_type":"restaurant","purpose":"점심","search_keywords":["맛집"],"search_radius_km":2.0,"priority":"high","expected_duration_minutes":90}
  ]
}`, req.DaysCount)

	return b.String()
}
