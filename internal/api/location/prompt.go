package location

import "fmt"

func extractionPrompt(text string) string {
	return fmt.Sprintf(`Extract the travel destination from the following request.

Request: %q

Return ONLY a JSON object with this exact structure:
{
    "city": "city name, empty string if none mentioned",
    "district": "district or borough within the city, empty string if not mentioned",
    "neighborhood": "specific neighborhood or landmark area, empty string if not mentioned",
    "country": "country name, empty string if unknown",
    "lat": latitude of the most specific place named, or null,
    "lng": longitude of the most specific place named, or null
}

Rules:
- Use the local name of the city as written in the request.
- Coordinates must be decimal degrees for the most specific place you identified.
- If you are not confident about the coordinates, use null for both.
- Do not include any text outside the JSON object.`, text)
}
