package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3/simple/price"

// coinGeckoIDs maps ticker symbols to CoinGecko asset identifiers.
var coinGeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"LTC":   "litecoin",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
	"AVAX":  "avalanche-2",
}

// coinGeckoEntry is the per-asset payload of the simple-price endpoint.
type coinGeckoEntry struct {
	USD          float64 `json:"usd"`
	USDChange24h float64 `json:"usd_24h_change"`
}

// CoinGeckoSource fetches quotes from the CoinGecko simple-price API.
// It only serves symbols present in the coinGeckoIDs table.
type CoinGeckoSource struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewCoinGeckoSource creates a CoinGecko source. An empty baseURL selects
// the public API endpoint.
func NewCoinGeckoSource(httpClient *http.Client, baseURL string) *CoinGeckoSource {
	if baseURL == "" {
		baseURL = coinGeckoBaseURL
	}
	return &CoinGeckoSource{httpClient: httpClient, baseURL: baseURL}
}

// Name returns the source's display name.
func (s *CoinGeckoSource) Name() string { return "coingecko" }

// FetchQuote fetches the current USD quote for one symbol.
func (s *CoinGeckoSource) FetchQuote(ctx context.Context, symbol string) Result {
	id, ok := coinGeckoIDs[normalizeSymbol(symbol)]
	if !ok {
		return Failed(fmt.Errorf("no CoinGecko id for symbol %s", symbol))
	}

	reqURL := fmt.Sprintf("%s?ids=%s&vs_currencies=usd&include_24hr_change=true", s.baseURL, id)

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

	var body map[string]coinGeckoEntry
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Failed(fmt.Errorf("decoding response: %w", err))
	}

	entry, ok := body[id]
	if !ok {
		return Failed(fmt.Errorf("asset %s missing from response", id))
	}
	if entry.USD <= 0 {
		return Failed(fmt.Errorf("non-positive price %v for %s", entry.USD, symbol))
	}
	return OK(entry.USD, entry.USDChange24h)
}
