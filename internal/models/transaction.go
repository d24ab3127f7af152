package models

import (
	"time"

	"cryptofolio/internal/wallet"
)

// Transaction is one executed trade in the append-only ledger. Rows are
// never updated; they are deleted only when an admin deletes the account.
type Transaction struct {
	Base
	UserID     string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Symbol     string           `gorm:"not null;index" json:"symbol"`
	Kind       wallet.TradeKind `gorm:"not null" json:"kind"`
	Quantity   float64          `gorm:"not null" json:"quantity"`
	UnitPrice  float64          `gorm:"not null" json:"unit_price"`
	TotalPrice float64          `gorm:"not null" json:"total_price"`
	ExecutedAt time.Time        `gorm:"not null;index" json:"executed_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// LedgerEntry converts the row to the aggregator's input shape.
func (t *Transaction) LedgerEntry() wallet.Entry {
	return wallet.Entry{
		Symbol:     t.Symbol,
		Kind:       t.Kind,
		Quantity:   t.Quantity,
		TotalPrice: t.TotalPrice,
	}
}
