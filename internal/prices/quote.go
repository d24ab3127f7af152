package prices

import "time"

// QuoteSource tags where a quote came from so consumers can surface
// degraded data honestly.
type QuoteSource string

const (
	// SourceLive marks a quote fetched from a live source during this call.
	SourceLive QuoteSource = "live"
	// SourceCached marks a live quote served from the cache.
	SourceCached QuoteSource = "cached"
	// SourceSynthetic marks a generated quote used when every live source failed.
	// Synthetic quotes keep this tag even when served from the cache.
	SourceSynthetic QuoteSource = "synthetic"
)

// Quote is a point-in-time price for one symbol. The JSON field names are
// part of the public API contract and must not change.
type Quote struct {
	Symbol    string      `json:"symbol"`
	Price     float64     `json:"price"`
	Change24h float64     `json:"change24hPercent"`
	AsOf      time.Time   `json:"asOf"`
	Source    QuoteSource `json:"source"`
}
