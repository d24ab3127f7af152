package wallet

import (
	"context"
	"strings"

	"cryptofolio/internal/logger"
	"cryptofolio/internal/prices"
)

// PriceGetter supplies current quotes for decorating holdings.
// *prices.Fetcher satisfies it.
type PriceGetter interface {
	GetPrice(ctx context.Context, symbol string) prices.Quote
	GetPrices(ctx context.Context, symbols []string) map[string]prices.Quote
}

// Aggregator computes holdings and portfolio summaries from ledger entries.
type Aggregator struct {
	prices PriceGetter
}

// NewAggregator creates an aggregator backed by the given price getter.
func NewAggregator(prices PriceGetter) *Aggregator {
	return &Aggregator{prices: prices}
}

// position is the running fold state for one symbol.
type position struct {
	symbol   string
	quantity float64
	invested float64
}

// Aggregate folds the entries and batch-fetches a quote for every surviving
// symbol. Output order follows first appearance in the ledger.
func (a *Aggregator) Aggregate(ctx context.Context, entries []Entry) ([]Holding, Summary) {
	positions := fold(entries)

	symbols := make([]string, len(positions))
	for i, pos := range positions {
		symbols[i] = pos.symbol
	}
	quotes := a.prices.GetPrices(ctx, symbols)

	return a.decorate(ctx, positions, quotes)
}

// AggregateWith folds the entries against a pre-fetched quote map. Symbols
// missing from the map are pulled individually, so a partial map degrades
// to extra lookups rather than wrong output.
func (a *Aggregator) AggregateWith(ctx context.Context, entries []Entry, quotes map[string]prices.Quote) ([]Holding, Summary) {
	return a.decorate(ctx, fold(entries), quotes)
}

// fold groups entries by symbol in first-appearance order and accumulates
// quantity and invested amounts. Buys add both; sells subtract the recorded
// totalPrice verbatim, matching how the ledger attributes cost basis.
// Positions left with quantity <= 0 are dropped entirely.
func fold(entries []Entry) []position {
	log := logger.Get()

	index := make(map[string]int)
	var positions []position

	for _, e := range entries {
		symbol := strings.ToUpper(strings.TrimSpace(e.Symbol))
		if symbol == "" {
			log.Warnw("skipping ledger entry without symbol", "kind", e.Kind)
			continue
		}
		// Malformed rows still fold with whatever values they carry so the
		// totals stay computable, but they are never silent.
		if e.Quantity <= 0 {
			log.Warnw("ledger entry has non-positive quantity", "symbol", symbol, "quantity", e.Quantity)
		}
		if e.Kind == Buy && e.TotalPrice <= 0 {
			log.Warnw("buy entry has non-positive total price", "symbol", symbol, "total_price", e.TotalPrice)
		}

		i, ok := index[symbol]
		if !ok {
			i = len(positions)
			index[symbol] = i
			positions = append(positions, position{symbol: symbol})
		}

		switch e.Kind {
		case Buy:
			positions[i].quantity += e.Quantity
			positions[i].invested += e.TotalPrice
		case Sell:
			positions[i].quantity -= e.Quantity
			positions[i].invested -= e.TotalPrice
		default:
			log.Warnw("skipping ledger entry with unknown kind", "symbol", symbol, "kind", e.Kind)
		}
	}

	kept := positions[:0]
	for _, pos := range positions {
		if pos.quantity > 0 {
			kept = append(kept, pos)
		}
	}
	return kept
}

// decorate turns positions into holdings with current prices and rolls up
// the portfolio summary. Every division is guarded so the output never
// carries NaN or Infinity.
func (a *Aggregator) decorate(ctx context.Context, positions []position, quotes map[string]prices.Quote) ([]Holding, Summary) {
	holdings := make([]Holding, 0, len(positions))
	var summary Summary
	var weighted float64

	for _, pos := range positions {
		quote, ok := quotes[pos.symbol]
		if !ok {
			quote = a.prices.GetPrice(ctx, pos.symbol)
		}

		h := makeHolding(pos, quote)
		holdings = append(holdings, h)

		summary.TotalValue += h.MarketValue
		summary.TotalInvested += pos.invested
		weighted += h.Change24h * h.MarketValue
	}

	summary.TotalProfitLoss = summary.TotalValue - summary.TotalInvested
	if summary.TotalInvested != 0 {
		summary.PortfolioROI = summary.TotalProfitLoss / summary.TotalInvested * 100
	}
	if summary.TotalValue > 0 {
		summary.Change24h = weighted / summary.TotalValue
	}

	return holdings, summary
}

func makeHolding(pos position, quote prices.Quote) Holding {
	h := Holding{
		Symbol:        pos.symbol,
		Quantity:      pos.quantity,
		TotalInvested: pos.invested,
		CurrentPrice:  quote.Price,
		Change24h:     quote.Change24h,
		PriceSource:   string(quote.Source),
	}

	if pos.quantity != 0 {
		h.AvgBuyPrice = pos.invested / pos.quantity
	}
	h.MarketValue = pos.quantity * quote.Price
	h.ProfitLoss = h.MarketValue - pos.invested
	if h.AvgBuyPrice != 0 {
		h.ROIPercent = (quote.Price - h.AvgBuyPrice) / h.AvgBuyPrice * 100
	}

	return h
}
