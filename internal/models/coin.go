package models

// Coin is a catalog entry for a tradeable cryptocurrency.
// The catalog is seeded at deploy time and read by the market table.
type Coin struct {
	Base
	Symbol string `gorm:"uniqueIndex;not null" json:"symbol"`
	Name   string `gorm:"not null" json:"name"`
}
