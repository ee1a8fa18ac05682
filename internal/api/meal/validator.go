// Package meal enforces the three-meals-a-day rule on assembled
// schedules: one breakfast, one lunch, one dinner per day, each inside
// its time window. Cafés are exempt.
package meal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/voyagehq/go-trip-planner/internal/types"
)

// Meal windows, minutes since midnight, both ends inclusive.
const (
	breakfastStart = 7 * 60
	breakfastEnd   = 10 * 60
	lunchStart     = 11 * 60
	lunchEnd       = 14 * 60
	dinnerStart    = 17 * 60
	dinnerEnd      = 21 * 60
)

// DefaultMealKeywords marks an item as a meal when any of them appears
// in its name, type or purpose.
var DefaultMealKeywords = []string{
	"식당", "맛집", "점심", "저녁", "아침", "식사", "한식", "중식", "일식", "양식", "뷔페", "레스토랑",
	"restaurant", "breakfast", "lunch", "dinner", "buffet",
}

// DefaultCafeKeywords override the meal keywords: a café visit is never
// counted as a meal even when it mentions food.
var DefaultCafeKeywords = []string{
	"카페", "커피", "디저트", "베이커리",
	"cafe", "coffee", "dessert", "bakery",
}

// Validator filters meal items that break the daily meal rules.
type Validator struct {
	mealKeywords []string
	cafeKeywords []string
	logger       *slog.Logger
}

// NewValidator builds a validator with the given vocabularies; nil
// slices fall back to the defaults.
func NewValidator(mealKeywords, cafeKeywords []string, logger *slog.Logger) *Validator {
	if mealKeywords == nil {
		mealKeywords = DefaultMealKeywords
	}
	if cafeKeywords == nil {
		cafeKeywords = DefaultCafeKeywords
	}
	return &Validator{mealKeywords: mealKeywords, cafeKeywords: cafeKeywords, logger: logger}
}

// Validate returns the schedule with invalid meal items removed. Meals
// outside every window are dropped, as is any second meal in the same
// window of the same day. Non-meal items always pass. Relative order is
// preserved.
func (v *Validator) Validate(ctx context.Context, schedule []types.ScheduleItem) []types.ScheduleItem {
	type mealFlags struct {
		breakfast, lunch, dinner bool
	}
	dailyMeals := make(map[int]*mealFlags)

	validated := make([]types.ScheduleItem, 0, len(schedule))
	for _, item := range schedule {
		if !v.isMeal(item) {
			validated = append(validated, item)
			continue
		}

		window, ok := mealWindow(item.Time)
		if !ok {
			v.logger.DebugContext(ctx, "Dropping meal outside every meal window",
				slog.Int("day", item.Day),
				slog.String("place", item.PlaceName),
				slog.String("time", item.Time))
			continue
		}

		flags := dailyMeals[item.Day]
		if flags == nil {
			flags = &mealFlags{}
			dailyMeals[item.Day] = flags
		}

		var taken *bool
		switch window {
		case "breakfast":
			taken = &flags.breakfast
		case "lunch":
			taken = &flags.lunch
		case "dinner":
			taken = &flags.dinner
		}
		if *taken {
			v.logger.DebugContext(ctx, "Dropping duplicate meal in window",
				slog.Int("day", item.Day),
				slog.String("window", window),
				slog.String("place", item.PlaceName))
			continue
		}
		*taken = true
		validated = append(validated, item)
	}
	return validated
}

// isMeal classifies an item by vocabulary. Café words take precedence:
// an item matching both vocabularies is a café, not a meal.
func (v *Validator) isMeal(item types.ScheduleItem) bool {
	text := strings.ToLower(item.PlaceName + " " + item.PlaceType + " " + item.Purpose)
	for _, keyword := range v.cafeKeywords {
		if strings.Contains(text, keyword) {
			return false
		}
	}
	for _, keyword := range v.mealKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// mealWindow maps an item's start time to its meal window.
func mealWindow(timeRange string) (string, bool) {
	start := strings.TrimSpace(strings.SplitN(timeRange, "-", 2)[0])
	minutes, err := parseClock(start)
	if err != nil {
		return "", false
	}
	switch {
	case minutes >= breakfastStart && minutes <= breakfastEnd:
		return "breakfast", true
	case minutes >= lunchStart && minutes <= lunchEnd:
		return "lunch", true
	case minutes >= dinnerStart && minutes <= dinnerEnd:
		return "dinner", true
	}
	return "", false
}

func parseClock(clock string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	return h*60 + m, nil
}
