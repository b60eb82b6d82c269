package domain

import "context"

// Fetcher retrieves a raw list body. An empty string means no data for the
// node after all attempts failed; it is not an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string, maxRetries int) string
}

// CityIDValidator checks a weather code against a live weather API.
type CityIDValidator interface {
	// Validate returns whether the code is served by the API and a short
	// reason: "valid", "HTTP error: <status>", "API error: <message>" or
	// "request exception: <detail>".
	Validate(ctx context.Context, weatherCode string) (bool, string)
}
