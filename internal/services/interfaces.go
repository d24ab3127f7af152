package services

import (
	"context"
	"time"

	"cryptofolio/internal/models"
	"cryptofolio/internal/pagination"
	"cryptofolio/internal/prices"
	"cryptofolio/internal/wallet"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	ListUsers(role string, page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	DeleteUser(id string) error
}

// MarketCoin is a catalog entry decorated with its latest quote.
type MarketCoin struct {
	Symbol string       `json:"symbol"`
	Name   string       `json:"name"`
	Quote  prices.Quote `json:"quote"`
}

// CoinServicer defines the contract for the tradable-coin catalog.
type CoinServicer interface {
	CreateCoin(symbol, name string) (*models.Coin, error)
	ListCoins(page pagination.PageRequest) (*pagination.PageResponse[models.Coin], error)
	GetBySymbol(symbol string) (*models.Coin, error)
	Symbols() ([]string, error)
	Market(ctx context.Context) ([]MarketCoin, error)
}

// LedgerServicer defines the contract for the buy/sell transaction ledger.
type LedgerServicer interface {
	RecordBuy(ctx context.Context, userID, symbol string, quantity float64) (*models.Transaction, error)
	RecordSell(ctx context.Context, userID, symbol string, quantity float64) (*models.Transaction, error)
	ListForUser(userID string) ([]models.Transaction, error)
	ListPage(userID, kind string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	ExportCSV(userID string) ([]byte, error)
}

// WalletSnapshot is the full wallet view returned to clients: per-asset
// holdings plus the portfolio-level summary.
type WalletSnapshot struct {
	Holdings []wallet.Holding `json:"holdings"`
	wallet.Summary
	AsOf time.Time `json:"asOf"`
}

// WalletServicer defines the contract for portfolio aggregation.
type WalletServicer interface {
	Snapshot(ctx context.Context, userID string, sortByValue bool) (*WalletSnapshot, error)
}
