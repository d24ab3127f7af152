// Package wallet folds the transaction ledger into per-asset holdings and
// a portfolio summary decorated with current prices. Everything here is
// derived state, recomputed on demand; the ledger is the source of truth.
package wallet

import "sort"

// TradeKind distinguishes buys from sells in the ledger.
type TradeKind string

const (
	Buy  TradeKind = "buy"
	Sell TradeKind = "sell"
)

// Entry is one ledger row as seen by the aggregator.
type Entry struct {
	Symbol     string
	Kind       TradeKind
	Quantity   float64
	TotalPrice float64
}

// Holding is the derived position for one asset. The JSON field names are
// part of the public API contract and must not change.
type Holding struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AvgBuyPrice   float64 `json:"avgBuyPrice"`
	TotalInvested float64 `json:"totalInvested"`
	CurrentPrice  float64 `json:"currentPrice"`
	MarketValue   float64 `json:"marketValue"`
	ProfitLoss    float64 `json:"profitLoss"`
	ROIPercent    float64 `json:"roiPercent"`
	Change24h     float64 `json:"change24hPercent"`
	PriceSource   string  `json:"priceSource"`
}

// Summary is the derived portfolio roll-up. The JSON field names are part
// of the public API contract and must not change.
type Summary struct {
	TotalValue      float64 `json:"totalValue"`
	TotalInvested   float64 `json:"totalInvested"`
	TotalProfitLoss float64 `json:"totalProfitLoss"`
	PortfolioROI    float64 `json:"portfolioROI"`
	Change24h       float64 `json:"portfolio24hChange"`
}

// SortByValue orders holdings by market value, largest first.
func SortByValue(holdings []Holding) {
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].MarketValue > holdings[j].MarketValue
	})
}
