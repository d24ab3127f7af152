package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// directQuoteResponse is the JSON body returned by the direct quote API.
type directQuoteResponse struct {
	Price         float64 `json:"price"`
	PreviousPrice float64 `json:"previousPrice"`
}

// DirectSource fetches quotes straight from the upstream quote API.
type DirectSource struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewDirectSource creates a source that queries baseURL directly.
func NewDirectSource(httpClient *http.Client, baseURL string) *DirectSource {
	return &DirectSource{httpClient: httpClient, baseURL: baseURL}
}

// Name returns the source's display name.
func (s *DirectSource) Name() string { return "direct" }

// FetchQuote fetches the current quote for one symbol from the upstream API.
// A 429 response maps to RateLimited with any Retry-After the upstream sent;
// everything else that goes wrong maps to Failed.
func (s *DirectSource) FetchQuote(ctx context.Context, symbol string) Result {
	reqURL := quoteURL(s.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Failed(fmt.Errorf("building request: %w", err))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Failed(fmt.Errorf("http request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return RateLimited(parseRetryAfter(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode != http.StatusOK {
		return Failed(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return decodeQuoteBody(resp, symbol)
}

// quoteURL builds the upstream quote URL for a symbol.
func quoteURL(baseURL, symbol string) string {
	return fmt.Sprintf("%s/price?symbol=%s", baseURL, url.QueryEscape(symbol))
}

// decodeQuoteBody parses the upstream quote body shared by the direct and
// proxy sources. The 24h change is derived from previousPrice when present.
func decodeQuoteBody(resp *http.Response, symbol string) Result {
	var body directQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Failed(fmt.Errorf("decoding response: %w", err))
	}
	if body.Price <= 0 {
		return Failed(fmt.Errorf("non-positive price %v for %s", body.Price, symbol))
	}

	var change float64
	if body.PreviousPrice > 0 {
		change = (body.Price - body.PreviousPrice) / body.PreviousPrice * 100
	}
	return OK(body.Price, change)
}
