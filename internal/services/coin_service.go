package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
	"cryptofolio/internal/pagination"
	"cryptofolio/internal/wallet"
)

// coinService handles the tradable-coin catalog.
type coinService struct {
	db      *gorm.DB
	fetcher wallet.PriceGetter
}

// NewCoinService creates a new CoinServicer.
func NewCoinService(db *gorm.DB, fetcher wallet.PriceGetter) CoinServicer {
	return &coinService{db: db, fetcher: fetcher}
}

// CreateCoin adds a coin to the catalog. Symbols are stored uppercase.
func (s *coinService) CreateCoin(symbol, name string) (*models.Coin, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol and name are required")
	}

	var count int64
	s.db.Model(&models.Coin{}).Where("symbol = ?", symbol).Count(&count)
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Coin already exists")
	}

	coin := &models.Coin{Symbol: symbol, Name: name}
	if err := s.db.Create(coin).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return coin, nil
}

// ListCoins returns a page of catalog entries ordered by symbol.
func (s *coinService) ListCoins(page pagination.PageRequest) (*pagination.PageResponse[models.Coin], error) {
	page.Defaults()

	var total int64
	if err := s.db.Model(&models.Coin{}).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var coins []models.Coin
	if err := s.db.Order("symbol ASC").
		Scopes(pagination.Paginate(page)).
		Find(&coins).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(coins, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetBySymbol retrieves a catalog entry by its ticker symbol.
func (s *coinService) GetBySymbol(symbol string) (*models.Coin, error) {
	var coin models.Coin
	if err := s.db.Where("symbol = ?", strings.ToUpper(strings.TrimSpace(symbol))).First(&coin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCoinNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &coin, nil
}

// Symbols returns all catalog symbols in alphabetical order.
func (s *coinService) Symbols() ([]string, error) {
	var symbols []string
	if err := s.db.Model(&models.Coin{}).Order("symbol ASC").Pluck("symbol", &symbols).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return symbols, nil
}

// Market returns the whole catalog decorated with current quotes for the
// dashboard's market table. Quotes are batch-fetched; the fetcher never
// fails, so the table is always complete even during upstream outages.
func (s *coinService) Market(ctx context.Context) ([]MarketCoin, error) {
	var coins []models.Coin
	if err := s.db.Order("symbol ASC").Find(&coins).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	symbols := make([]string, len(coins))
	for i, coin := range coins {
		symbols[i] = coin.Symbol
	}
	quotes := s.fetcher.GetPrices(ctx, symbols)

	market := make([]MarketCoin, len(coins))
	for i, coin := range coins {
		market[i] = MarketCoin{
			Symbol: coin.Symbol,
			Name:   coin.Name,
			Quote:  quotes[coin.Symbol],
		}
	}
	return market, nil
}
