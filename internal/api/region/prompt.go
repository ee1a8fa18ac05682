package region

import "fmt"

func suggestionPrompt(city string, daysCount int) string {
	return fmt.Sprintf(`You are an expert on Korean geography and travel routing. Recommend cities near the one below that combine well into a single %d-day trip.

Center city: %s

Conditions:
1. Within roughly one hour by car or public transport.
2. Worth visiting in their own right.
3. At most three cities.
4. Ordered nearest first.
5. Use the Korean name of each city.

Return ONLY a JSON object:
{
  "nearby_cities": ["city1", "city2", "city3"],
  "reason": "one or two sentences explaining the picks"
}`, daysCount, city)
}
