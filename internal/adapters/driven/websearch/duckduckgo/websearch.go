// Package duckduckgo provides a keyless web search adapter scraping
// the DuckDuckGo lite HTML interface.
package duckduckgo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/navigator-cli/internal/core/domain"
	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
)

// Ensure WebSearchService implements the interface.
var _ driven.WebSearchService = (*WebSearchService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://lite.duckduckgo.com/lite/"
	DefaultTimeout = 15 * time.Second

	// maxBackoff caps the retry delay on 429 responses.
	maxBackoff = 30 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds configuration for the DuckDuckGo web search service.
type Config struct {
	// BaseURL is the lite HTML endpoint (default: lite.duckduckgo.com).
	BaseURL string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// WebSearchService scrapes the DuckDuckGo lite page. Queries are
// limited to 1 per second per instance; DuckDuckGo throttles
// aggressively beyond that.
type WebSearchService struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewWebSearchService creates a new DuckDuckGo web search service.
func NewWebSearchService(cfg Config) *WebSearchService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &WebSearchService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		baseURL: cfg.BaseURL,
	}
}

// Search scrapes the DuckDuckGo lite HTML page for results.
func (s *WebSearchService) Search(ctx context.Context, query string, limit int) ([]driven.WebResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidInput, limit)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	formData := url.Values{}
	formData.Set("q", query)

	var resp *http.Response
	delay := 1 * time.Second
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, strings.NewReader(formData.Encode()))
		if err != nil {
			return nil, fmt.Errorf("%w: create request: %v", domain.ErrWebSearch, err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

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
		return nil, fmt.Errorf("%w: duckduckgo error (status %d)", domain.ErrWebSearch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrWebSearch, err)
	}

	return parseHTMLResults(string(body), limit), nil
}

// ProviderName returns the provider identifier.
func (s *WebSearchService) ProviderName() string {
	return "duckduckgo"
}

// Close releases resources.
func (s *WebSearchService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

var (
	// Result links: <a ... class='result-link' ... href="URL">TITLE</a>,
	// with either attribute order.
	linkPattern  = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	linkPattern2 = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)

	// Snippets live in <td class="result-snippet">.
	snippetPattern = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</td>`)

	anyLinkPattern = regexp.MustCompile(`<a[^>]+href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
)

// parseHTMLResults extracts search results from the DuckDuckGo lite
// HTML. The lite page has a simple table structure with result links
// and snippets.
func parseHTMLResults(html string, limit int) []driven.WebResult {
	var results []driven.WebResult

	matches := linkPattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = linkPattern2.FindAllStringSubmatch(html, -1)
	}

	snippetMatches := snippetPattern.FindAllStringSubmatch(html, -1)

	for i, match := range matches {
		if len(match) < 3 {
			continue
		}

		urlStr := strings.TrimSpace(match[1])
		title := cleanHTML(strings.TrimSpace(match[2]))

		snippet := ""
		if i < len(snippetMatches) && len(snippetMatches[i]) > 1 {
			snippet = cleanHTML(snippetMatches[i][1])
		}

		if urlStr == "" || title == "" {
			continue
		}

		results = append(results, driven.WebResult{
			Title:   title,
			URL:     urlStr,
			Content: snippet,
		})

		if len(results) >= limit {
			break
		}
	}

	// Layout changes break the primary pattern; fall back to any
	// external-looking links.
	if len(results) == 0 {
		results = fallbackParse(html, limit)
	}

	return results
}

// fallbackParse extracts any links that look like external results.
func fallbackParse(html string, limit int) []driven.WebResult {
	var results []driven.WebResult

	matches := anyLinkPattern.FindAllStringSubmatch(html, -1)

	seen := make(map[string]bool)
	for _, match := range matches {
		if len(match) < 3 {
			continue
		}

		urlStr := strings.TrimSpace(match[1])
		title := cleanHTML(strings.TrimSpace(match[2]))

		// Skip DuckDuckGo internal links
		if strings.Contains(urlStr, "duckduckgo.com") ||
			strings.HasPrefix(urlStr, "/") ||
			strings.HasPrefix(urlStr, "#") ||
			strings.HasPrefix(urlStr, "javascript:") {
			continue
		}

		// Skip if title is too short or looks like navigation
		if len(title) < 5 {
			continue
		}

		if seen[urlStr] {
			continue
		}
		seen[urlStr] = true

		results = append(results, driven.WebResult{
			Title: title,
			URL:   urlStr,
		})

		if len(results) >= limit {
			break
		}
	}

	return results
}

// cleanHTML removes HTML tags and decodes common entities.
func cleanHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, "")

	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&nbsp;", " ")

	return strings.TrimSpace(s)
}
