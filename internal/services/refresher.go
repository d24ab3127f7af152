package services

import (
	"context"

	"cryptofolio/internal/logger"
	"cryptofolio/internal/prices"
	"cryptofolio/internal/wallet"
)

// PriceRefresher is a background job that batch-fetches quotes for every
// cataloged coin so the dashboard mostly hits a warm cache.
type PriceRefresher struct {
	coins   CoinServicer
	fetcher wallet.PriceGetter
}

// NewPriceRefresher creates the cache-warming job.
func NewPriceRefresher(coins CoinServicer, fetcher wallet.PriceGetter) *PriceRefresher {
	return &PriceRefresher{coins: coins, fetcher: fetcher}
}

// Name identifies the job in scheduler logs.
func (r *PriceRefresher) Name() string { return "price-refresh" }

// Run fetches a quote for every catalog symbol. Individual fetch failures
// degrade inside the fetcher; only a catalog read error fails the job.
func (r *PriceRefresher) Run() error {
	symbols, err := r.coins.Symbols()
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		return nil
	}

	quotes := r.fetcher.GetPrices(context.Background(), symbols)

	synthetic := 0
	for _, q := range quotes {
		if q.Source == prices.SourceSynthetic {
			synthetic++
		}
	}
	if synthetic > 0 {
		logger.Get().Warnw("price refresh served degraded quotes", "total", len(quotes), "synthetic", synthetic)
	}
	return nil
}
