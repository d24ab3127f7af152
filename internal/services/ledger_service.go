package services

import (
	"context"
	"time"

	"github.com/gocarina/gocsv"
	"gorm.io/gorm"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
	"cryptofolio/internal/pagination"
	"cryptofolio/internal/wallet"
)

// ledgerService records market orders as append-only ledger rows and reads
// them back for the aggregator and the UI.
type ledgerService struct {
	db      *gorm.DB
	coins   CoinServicer
	fetcher wallet.PriceGetter
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB, coins CoinServicer, fetcher wallet.PriceGetter) LedgerServicer {
	return &ledgerService{db: db, coins: coins, fetcher: fetcher}
}

// RecordBuy prices a market buy at the current quote and appends it to the
// ledger. The fetcher never fails, so an order can always be priced; a
// degraded quote still produces a valid row.
func (s *ledgerService) RecordBuy(ctx context.Context, userID, symbol string, quantity float64) (*models.Transaction, error) {
	coin, err := s.validateOrder(symbol, quantity)
	if err != nil {
		return nil, err
	}

	quote := s.fetcher.GetPrice(ctx, coin.Symbol)
	return s.append(userID, coin.Symbol, wallet.Buy, quantity, quote.Price)
}

// RecordSell prices a market sell at the current quote and appends it to
// the ledger. Selling more than currently held is rejected here so the
// aggregator downstream only ever sees non-negative positions.
func (s *ledgerService) RecordSell(ctx context.Context, userID, symbol string, quantity float64) (*models.Transaction, error) {
	coin, err := s.validateOrder(symbol, quantity)
	if err != nil {
		return nil, err
	}

	held, err := s.heldQuantity(userID, coin.Symbol)
	if err != nil {
		return nil, err
	}
	if quantity > held {
		return nil, apperrors.ErrInsufficientHoldings
	}

	quote := s.fetcher.GetPrice(ctx, coin.Symbol)
	return s.append(userID, coin.Symbol, wallet.Sell, quantity, quote.Price)
}

// ListForUser returns the user's full ledger in execution order. This is the
// read-only feed the wallet aggregator folds.
func (s *ledgerService) ListForUser(userID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := s.db.Where("user_id = ?", userID).
		Order("executed_at ASC, created_at ASC").
		Find(&txs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txs, nil
}

// ListPage returns a page of the user's ledger, newest first, optionally
// filtered to one trade kind.
func (s *ledgerService) ListPage(userID, kind string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if kind != "" {
			db = db.Where("kind = ?", kind)
		}
		return db
	}

	var total int64
	if err := s.db.Model(&models.Transaction{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var txs []models.Transaction
	if err := s.db.Scopes(filter).
		Order("executed_at DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&txs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(txs, page.Page, page.PageSize, total)
	return &resp, nil
}

// ledgerCSVRow is the CSV export shape for one ledger entry.
type ledgerCSVRow struct {
	ID         string  `csv:"id"`
	Symbol     string  `csv:"symbol"`
	Kind       string  `csv:"kind"`
	Quantity   float64 `csv:"quantity"`
	UnitPrice  float64 `csv:"unit_price"`
	TotalPrice float64 `csv:"total_price"`
	ExecutedAt string  `csv:"executed_at"`
}

// ExportCSV renders the user's full ledger as CSV, oldest first.
func (s *ledgerService) ExportCSV(userID string) ([]byte, error) {
	txs, err := s.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	rows := make([]ledgerCSVRow, len(txs))
	for i, tx := range txs {
		rows[i] = ledgerCSVRow{
			ID:         tx.ID,
			Symbol:     tx.Symbol,
			Kind:       string(tx.Kind),
			Quantity:   tx.Quantity,
			UnitPrice:  tx.UnitPrice,
			TotalPrice: tx.TotalPrice,
			ExecutedAt: tx.ExecutedAt.UTC().Format(time.RFC3339),
		}
	}

	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return []byte(out), nil
}

// validateOrder checks the order parameters and resolves the coin from the
// catalog. Only cataloged coins are tradable.
func (s *ledgerService) validateOrder(symbol string, quantity float64) (*models.Coin, error) {
	if quantity <= 0 {
		return nil, apperrors.ErrInvalidOrder
	}
	return s.coins.GetBySymbol(symbol)
}

// heldQuantity sums the user's signed quantity for one symbol.
func (s *ledgerService) heldQuantity(userID, symbol string) (float64, error) {
	type row struct {
		Held float64
	}
	var r row
	if err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN kind = ? THEN quantity ELSE -quantity END), 0) AS held", wallet.Buy).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Scan(&r).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return r.Held, nil
}

// append writes one ledger row.
func (s *ledgerService) append(userID, symbol string, kind wallet.TradeKind, quantity, unitPrice float64) (*models.Transaction, error) {
	tx := &models.Transaction{
		UserID:     userID,
		Symbol:     symbol,
		Kind:       kind,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: quantity * unitPrice,
		ExecutedAt: time.Now(),
	}
	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}
