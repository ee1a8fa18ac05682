package style

import "fmt"

func analysisPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following travel request and pick the single best matching travel style.

Request: %q

Style options:
1. indoor_date: indoor date spots (cafes, museums, malls, cinemas)
2. outdoor_date: outdoor date spots (parks, riversides, walking trails, viewpoints)
3. food_tour: trips centered on restaurants and local food
4. culture_tour: palaces, museums, traditional architecture, history
5. shopping_tour: shopping districts, malls, markets
6. healing_tour: spas, hot springs, quiet walks, rest
7. adventure_tour: theme parks, sports, hands-on activities
8. night_tour: night views, night markets, rooftop bars
9. family_tour: places friendly to children and families
10. custom: no particular style, general sightseeing

Selection hints:
- Mentions of dating or couples lean indoor_date or outdoor_date.
- Mentions of food, restaurants or eating lean food_tour.
- Mentions of family or children lean family_tour.
- Mentions of rain or staying inside lean indoor_date.

Return ONLY a JSON object:
{
  "travel_style": "the chosen style key",
  "confidence": 0.9,
  "reason": "one or two sentences explaining the choice"
}`, text)
}
