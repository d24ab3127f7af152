package prices

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ProxySource relays upstream quote requests through a CORS proxy that
// expects the URL-encoded target appended to its base URL and returns the
// upstream body unchanged. Proxies are one-shot fallbacks: they do not
// participate in rate-limit retries.
type ProxySource struct {
	httpClient   *http.Client
	proxyBase    string
	upstreamBase string
	name         string
}

// NewProxySource creates a source that reaches upstreamBase through the
// proxy at proxyBase.
func NewProxySource(httpClient *http.Client, proxyBase, upstreamBase string) *ProxySource {
	name := "proxy"
	if u, err := url.Parse(proxyBase); err == nil && u.Host != "" {
		name = "proxy " + u.Host
	}
	return &ProxySource{
		httpClient:   httpClient,
		proxyBase:    proxyBase,
		upstreamBase: upstreamBase,
		name:         name,
	}
}

// Name returns the source's display name.
func (s *ProxySource) Name() string { return s.name }

// FetchQuote fetches the quote for one symbol through the proxy.
// Any non-200 response, including 429, maps to Failed.
func (s *ProxySource) FetchQuote(ctx context.Context, symbol string) Result {
	target := quoteURL(s.upstreamBase, symbol)
	reqURL := s.proxyBase + url.QueryEscape(target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Failed(fmt.Errorf("building request: %w", err))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Failed(fmt.Errorf("http request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Failed(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return decodeQuoteBody(resp, symbol)
}
