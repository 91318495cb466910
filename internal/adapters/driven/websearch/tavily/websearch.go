// Package tavily provides a web search adapter using the Tavily
// search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
)

// Ensure WebSearchService implements the interface.
var _ driven.WebSearchService = (*WebSearchService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.tavily.com"
	DefaultDepth   = "basic"
	DefaultTimeout = 30 * time.Second

	// maxBackoff caps the retry delay on 429 responses.
	maxBackoff = 30 * time.Second
)

// Config holds configuration for the Tavily web search service.
type Config struct {
	// APIKey is the Tavily API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.tavily.com).
	BaseURL string

	// Depth controls Tavily's search depth (basic or advanced).
	Depth string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond caps the client-side request rate
	// (default: 1).
	RequestsPerSecond float64
}

// WebSearchService queries the Tavily API. Requests are rate-limited
// client-side and 429 responses are retried with exponential backoff.
type WebSearchService struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
	depth   string
}

// searchRequest is the Tavily /search request format.
type searchRequest struct {
	Query      string `json:"query"`
	APIKey     string `json:"api_key"`
	Depth      string `json:"depth"`
	MaxResults int    `json:"max_results,omitempty"`
}

// searchResponse is the Tavily /search response format.
type searchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// NewWebSearchService creates a new Tavily web search service.
func NewWebSearchService(cfg Config) (*WebSearchService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: tavily: API key is required", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Depth == "" {
		cfg.Depth = DefaultDepth
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 1
	}

	return &WebSearchService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		depth:   cfg.Depth,
	}, nil
}

// Search posts a query to Tavily and returns up to limit results.
func (s *WebSearchService) Search(ctx context.Context, query string, limit int) ([]driven.WebResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidInput, limit)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(searchRequest{
		Query:      query,
		APIKey:     s.apiKey,
		Depth:      s.depth,
		MaxResults: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", domain.ErrWebSearch, err)
	}

	var resp *http.Response
	delay := 1 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: create request: %v", domain.ErrWebSearch, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: send request: %v", domain.ErrWebSearch, err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()

		// Back off and retry on 429, doubling the delay each time.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < maxBackoff {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tavily error (status %d)", domain.ErrWebSearch, resp.StatusCode)
	}

	var response searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrWebSearch, err)
	}

	results := make([]driven.WebResult, 0, len(response.Results))
	for _, r := range response.Results {
		results = append(results, driven.WebResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// ProviderName returns the provider identifier.
func (s *WebSearchService) ProviderName() string {
	return "tavily"
}

// Close releases resources.
func (s *WebSearchService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
