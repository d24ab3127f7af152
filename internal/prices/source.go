// Package prices resolves current cryptocurrency quotes through an ordered
// chain of live sources with caching, retries, and a synthetic generator of
// last resort, so callers always receive a usable quote.
package prices

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Status classifies the outcome of a single fetch attempt.
type Status int

const (
	StatusOK Status = iota
	StatusRateLimited
	StatusFailed
)

// Result is the uniform outcome of one fetch attempt against one source.
// Exactly one of the three constructors below produces it.
type Result struct {
	Status     Status
	Price      float64       // set when Status is StatusOK
	Change24h  float64       // percent over 24h; 0 when the source has no history
	RetryAfter time.Duration // upstream-requested wait; 0 when not supplied
	Err        error         // set when Status is StatusFailed
}

// OK returns a successful result carrying a price and 24h change percent.
func OK(price, change24h float64) Result {
	return Result{Status: StatusOK, Price: price, Change24h: change24h}
}

// RateLimited returns a result for an upstream 429 response.
// retryAfter is 0 when the upstream did not supply a usable Retry-After.
func RateLimited(retryAfter time.Duration) Result {
	return Result{Status: StatusRateLimited, RetryAfter: retryAfter}
}

// Failed returns a result for a transport, status, or decode failure.
func Failed(err error) Result {
	return Result{Status: StatusFailed, Err: err}
}

// Source is a single strategy for obtaining a live quote.
// Implementations report failures through the Result status rather than
// an error return so the fetcher can treat all sources uniformly.
type Source interface {
	// Name returns the source's display name for logging.
	Name() string

	// FetchQuote fetches the current quote for one symbol.
	FetchQuote(ctx context.Context, symbol string) Result
}

// normalizeSymbol canonicalizes a ticker symbol for cache keys and lookups.
func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// parseRetryAfter interprets a Retry-After header value as either a number
// of seconds or an HTTP date. It returns 0 when the value is absent,
// malformed, or in the past.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}
