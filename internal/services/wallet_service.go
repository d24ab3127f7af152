package services

import (
	"context"
	"time"

	"cryptofolio/internal/wallet"
)

// walletService computes the per-user wallet view: ledger rows folded into
// holdings and decorated with current prices.
type walletService struct {
	ledger     LedgerServicer
	aggregator *wallet.Aggregator
	fetcher    wallet.PriceGetter
}

// NewWalletService creates a new WalletServicer.
func NewWalletService(ledger LedgerServicer, fetcher wallet.PriceGetter) WalletServicer {
	return &walletService{
		ledger:     ledger,
		aggregator: wallet.NewAggregator(fetcher),
		fetcher:    fetcher,
	}
}

// Snapshot loads the user's ledger and aggregates it into holdings plus a
// portfolio summary. Price failures never surface here: the fetcher always
// returns some quote, so a snapshot is always produced.
func (s *walletService) Snapshot(ctx context.Context, userID string, sortByValue bool) (*WalletSnapshot, error) {
	txs, err := s.ledger.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	entries := make([]wallet.Entry, len(txs))
	for i := range txs {
		entries[i] = txs[i].LedgerEntry()
	}

	holdings, summary := s.aggregator.Aggregate(ctx, entries)
	if sortByValue {
		wallet.SortByValue(holdings)
	}

	return &WalletSnapshot{
		Holdings: holdings,
		Summary:  summary,
		AsOf:     time.Now(),
	}, nil
}
