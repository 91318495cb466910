package driven

import "context"

// WebSearchService queries an external web search provider.
//
// Implementations may include:
//   - Tavily (API key required)
//   - DuckDuckGo lite (keyless)
type WebSearchService interface {
	// Search returns up to limit results for the query.
	Search(ctx context.Context, query string, limit int) ([]WebResult, error)

	// ProviderName returns the provider identifier for logging.
	ProviderName() string

	// Close releases resources.
	Close() error
}

// WebResult is a single web search hit.
type WebResult struct {
	// Title is the page title.
	Title string

	// URL is the page locator.
	URL string

	// Content is the snippet or summary returned by the provider.
	Content string

	// Score is the provider-reported relevance, 0 when not reported.
	Score float64
}
